package echoServer

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/auth"
	bookcopyctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/bookcopy"
	depositctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/deposit"
	reservationctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/reservation"
	"github.com/honguyenminh/is216-library-manager/model"
	jwtutil "github.com/honguyenminh/is216-library-manager/util/jwt"
)

type C struct {
	Auth        *authctrl.Controller
	Reservation *reservationctrl.Controller
	BookCopy    *bookcopyctrl.Controller
	Deposit     *depositctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	staff := RequireRoles(model.RoleAdmin, model.RoleLibrarian)

	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		// The default lookup strips the "Bearer " prefix before handing the
		// value over; ParseAuth tolerates either form.
		ParseTokenFunc: func(ec echo.Context, token string) (interface{}, error) {
			return jwtutil.ParseAuth(token, c.JWTSecret)
		},
	}))
	auth.Use(Identity())

	// Reservations
	auth.GET("/reservations", c.Reservation.ListAll, staff)
	auth.GET("/reservations/my", c.Reservation.My)
	auth.GET("/reservations/user/:userId", c.Reservation.ByUser, staff)
	auth.GET("/reservations/:id", c.Reservation.Get)
	auth.POST("/reservations", c.Reservation.Create, RequireRoles(model.RoleUser))
	auth.PUT("/reservations/:id", c.Reservation.Update)
	auth.DELETE("/reservations/:id", c.Reservation.Delete)
	auth.POST("/reservations/:id/assign-copy", c.Reservation.AssignCopy, staff)

	// Book copies
	auth.GET("/book-copies", c.BookCopy.ListAll)
	auth.GET("/book-copies/:id", c.BookCopy.Get)
	auth.POST("/book-copies", c.BookCopy.Create, staff)
	auth.PUT("/book-copies/:id", c.BookCopy.Update, staff)
	auth.DELETE("/book-copies/:id", c.BookCopy.Delete, RequireRoles(model.RoleAdmin))

	// Deposits
	auth.GET("/deposits/ledger", c.Deposit.Ledger)
	auth.POST("/deposits/credit", c.Deposit.Credit, staff)
}
