// Package main library reservation API.
//
// @title           Library Manager API
// @version         1.0
// @description     Book reservations, copy inventory, deposits.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/honguyenminh/is216-library-manager/app/echoServer"
	authctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/auth"
	bookcopyctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/bookcopy"
	depositctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/deposit"
	reservationctrl "github.com/honguyenminh/is216-library-manager/app/echoServer/controller/reservation"
	"github.com/honguyenminh/is216-library-manager/app/echoServer/validation"
	"github.com/honguyenminh/is216-library-manager/config"
	authrepo "github.com/honguyenminh/is216-library-manager/repository/auth"
	bookcopyrepo "github.com/honguyenminh/is216-library-manager/repository/bookcopy"
	booktitlerepo "github.com/honguyenminh/is216-library-manager/repository/booktitle"
	expiryjobrepo "github.com/honguyenminh/is216-library-manager/repository/expiryjob"
	reservationrepo "github.com/honguyenminh/is216-library-manager/repository/reservation"
	transactionrepo "github.com/honguyenminh/is216-library-manager/repository/transaction"
	userrepo "github.com/honguyenminh/is216-library-manager/repository/user"
	authsvc "github.com/honguyenminh/is216-library-manager/service/auth"
	bookcopysvc "github.com/honguyenminh/is216-library-manager/service/bookcopy"
	depositsvc "github.com/honguyenminh/is216-library-manager/service/deposit"
	reservationsvc "github.com/honguyenminh/is216-library-manager/service/reservation"
	"github.com/honguyenminh/is216-library-manager/service/scheduler"
	"github.com/honguyenminh/is216-library-manager/util/database"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	tm := database.NewTxManager(db)

	// repos
	ar := authrepo.New(db)
	ur := userrepo.New(db)
	tr := booktitlerepo.New(db)
	cr := bookcopyrepo.New(db)
	rr := reservationrepo.New(db)
	xr := transactionrepo.New(db)
	jr := expiryjobrepo.New(db)

	// services
	sched := scheduler.New(jr)
	as := authsvc.New(ar, cfg.JWTSecret)
	rs := reservationsvc.New(tm, rr, ur, tr, cr, sched)
	bs := bookcopysvc.New(tm, cr, xr, ur, tr)
	ds := depositsvc.New(tm, ur)

	// expiry worker
	worker := scheduler.NewWorker(jr, rs.CleanupExpired, cfg.ExpiryPollInterval, cfg.ExpiryMaxAttempts, log)
	go worker.Run(ctx)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rs, V: v, Log: log}
	bookCopyC := &bookcopyctrl.Controller{Svc: bs, V: v, Log: log}
	depositC := &depositctrl.Controller{Svc: ds, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Reservation: reservationC,
		BookCopy:    bookCopyC,
		Deposit:     depositC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	if err := e.Start(":" + port); err != nil {
		log.Error("server stopped", "err", err)
	}
}
