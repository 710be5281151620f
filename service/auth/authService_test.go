// service/auth/auth_service_test.go
package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/honguyenminh/is216-library-manager/model"
	authrepo "github.com/honguyenminh/is216-library-manager/repository/auth"
	"github.com/honguyenminh/is216-library-manager/util/hash"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ authrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = "u-42"
			return nil
		},
	}
	svc := New(m, "test-secret")

	req := model.RegisterReq{
		Name:     "Halim Iskandar",
		Email:    "USER@Example.COM",
		Password: "supersecret",
	}

	u, tok, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, "u-42", u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.Zero(t, u.Balance)
	require.NotEqual(t, "supersecret", u.PasswordHash)
}

func TestRegister_EmptyFields(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{Email: "  "})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_email_key",
				Message:        `duplicate key value violates unique constraint "users_email_key"`,
			}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Name:     "Dup",
		Email:    "dup@example.com",
		Password: "pw123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed := mustHash(t, "correct horse")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "reader@example.com", email)
			return &model.User{ID: "u1", Email: email, Role: model.RoleUser, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{
		Email:    " Reader@Example.com ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.NotEmpty(t, tok)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "right")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "ghost@b.c", Password: "pw"})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}
