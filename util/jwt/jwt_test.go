package jwt

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/honguyenminh/is216-library-manager/model"
)

func TestIssueAndParse(t *testing.T) {
	raw, err := Issue("s3cret", "u-17", model.RoleLibrarian, 1)
	require.NoError(t, err)

	tok, err := ParseAuth("Bearer "+raw, "s3cret")
	require.NoError(t, err)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "u-17", claims["sub"])
	require.Equal(t, string(model.RoleLibrarian), claims["role"])
}

func TestParse_BareToken(t *testing.T) {
	raw, err := Issue("s3cret", "u-17", model.RoleUser, 1)
	require.NoError(t, err)

	// the jwt middleware strips the Bearer prefix before calling us
	tok, err := ParseAuth(raw, "s3cret")
	require.NoError(t, err)
	require.True(t, tok.Valid)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := Issue("s3cret", "u-17", model.RoleUser, 1)
	require.NoError(t, err)

	_, err = ParseAuth(raw, "other")
	require.Error(t, err)
}

func TestParse_MissingToken(t *testing.T) {
	_, err := ParseAuth("  ", "s3cret")
	require.Error(t, err)

	_, err = ParseAuth("Bearer ", "s3cret")
	require.Error(t, err)
}
