package echoServer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	authctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/auth"
	bookcopyctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/bookcopy"
	depositctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/deposit"
	reservationctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/reservation"
	"github.com/honguyenminh/is216-library-manager/model"
	rs "github.com/honguyenminh/is216-library-manager/service/reservation"
	jwtutil "github.com/honguyenminh/is216-library-manager/util/jwt"
)

type reservationSvcStub struct {
	lastCaller string
}

func (s *reservationSvcStub) Get(ctx context.Context, id, callerID string) (*rs.View, error) {
	return &rs.View{}, nil
}

func (s *reservationSvcStub) ListAll(ctx context.Context) ([]rs.View, error) { return nil, nil }

func (s *reservationSvcStub) ListByUser(ctx context.Context, userID string) ([]rs.View, error) {
	s.lastCaller = userID
	return []rs.View{}, nil
}

func (s *reservationSvcStub) Create(ctx context.Context, userID, bookTitleID string) (*rs.View, error) {
	return &rs.View{}, nil
}

func (s *reservationSvcStub) Update(ctx context.Context, id, callerID string, f rs.UpdateFields) (*rs.View, error) {
	return &rs.View{}, nil
}

func (s *reservationSvcStub) Delete(ctx context.Context, id, callerID string) error { return nil }

func (s *reservationSvcStub) AssignBookCopy(ctx context.Context, id string) (*rs.View, error) {
	return &rs.View{}, nil
}

func (s *reservationSvcStub) CleanupExpired(ctx context.Context, id string) error { return nil }

const testSecret = "test-secret"

func newTestServer(svc rs.Service) *echo.Echo {
	e := echo.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()

	Register(e, C{
		Auth:        &authctrl.Controller{V: v, Log: log},
		Reservation: &reservationctrl.Controller{Svc: svc, V: v, Log: log},
		BookCopy:    &bookcopyctrl.Controller{V: v, Log: log},
		Deposit:     &depositctrl.Controller{V: v, Log: log},

		JWTSecret: testSecret,
	})
	return e
}

func do(e *echo.Echo, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// A token issued by our own login path, sent the standard way, must reach the
// handler with the caller identity intact.
func TestAuthRoutes_BearerTokenAccepted(t *testing.T) {
	svc := &reservationSvcStub{}
	e := newTestServer(svc)

	tok, err := jwtutil.Issue(testSecret, "u1", model.RoleUser, 1)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/v1/reservations/my", "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	require.Equal(t, "u1", svc.lastCaller)
}

func TestAuthRoutes_InvalidTokenRejected(t *testing.T) {
	e := newTestServer(&reservationSvcStub{})

	rec := do(e, http.MethodGet, "/v1/reservations/my", "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRoutes_MissingTokenRejected(t *testing.T) {
	e := newTestServer(&reservationSvcStub{})

	rec := do(e, http.MethodGet, "/v1/reservations/my", "")
	require.NotEqual(t, http.StatusOK, rec.Code)
}

func TestAuthRoutes_StaffGate(t *testing.T) {
	svc := &reservationSvcStub{}
	e := newTestServer(svc)

	userTok, err := jwtutil.Issue(testSecret, "u1", model.RoleUser, 1)
	require.NoError(t, err)
	rec := do(e, http.MethodGet, "/v1/reservations", "Bearer "+userTok)
	require.Equal(t, http.StatusForbidden, rec.Code)

	staffTok, err := jwtutil.Issue(testSecret, "lib1", model.RoleLibrarian, 1)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/reservations", "Bearer "+staffTok)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
}
