package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	require.Equal(t, KindPermissionDenied, KindOf(PermissionDenied("no")))
	require.Equal(t, KindValidation, KindOf(Validation("bad")))
	require.Equal(t, KindInfra, KindOf(Infra(errors.New("conn refused"))))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create reservation: %w", Validation("not enough balance"))
	require.Equal(t, KindValidation, KindOf(err))
}

func TestKindOf_Unclassified(t *testing.T) {
	require.Equal(t, KindInfra, KindOf(errors.New("something else")))
}

func TestInfra_NilPassesThrough(t *testing.T) {
	require.NoError(t, Infra(nil))
}

func TestErrorMessage(t *testing.T) {
	require.EqualError(t, Validation("quantity must be positive"), "quantity must be positive")

	cause := errors.New("dial tcp: timeout")
	err := Infra(cause)
	require.EqualError(t, err, "dial tcp: timeout")
	require.ErrorIs(t, err, cause)
}
