package deposit

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/honguyenminh/is216-library-manager/app/echoServer/jwtx"
	ds "github.com/honguyenminh/is216-library-manager/service/deposit"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
)

type Controller struct {
	Svc ds.Service
	V   *validator.Validate
	Log *slog.Logger
}

type CreditReq struct {
	UserID string `json:"user_id" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// GET /v1/deposits/ledger
func (h *Controller) Ledger(c echo.Context) error {
	rows, err := h.Svc.Ledger(c.Request().Context(), jwtx.CallerID(c))
	if err != nil {
		h.Log.Error("deposit ledger", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/deposits/credit (staff)
func (h *Controller) Credit(c echo.Context) error {
	var req CreditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	if err := h.Svc.Credit(c.Request().Context(), jwtx.CallerID(c), req.UserID, req.Amount); err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
		case apperr.KindPermissionDenied:
			return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
		case apperr.KindValidation:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		default:
			h.Log.Error("deposit credit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "balance credited"})
}
