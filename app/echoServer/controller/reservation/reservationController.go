package reservation

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/honguyenminh/is216-library-manager/app/echoServer/jwtx"
	rs "github.com/honguyenminh/is216-library-manager/service/reservation"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case apperr.KindPermissionDenied:
		return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
	case apperr.KindValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	default:
		h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// GET /v1/reservations
// @Summary List every reservation (staff)
// @Success 200 {object} map[string]any
func (h *Controller) ListAll(c echo.Context) error {
	views, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return h.fail(c, "reservation list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// GET /v1/reservations/:id
func (h *Controller) Get(c echo.Context) error {
	view, err := h.Svc.Get(c.Request().Context(), c.Param("id"), jwtx.CallerID(c))
	if err != nil {
		return h.fail(c, "reservation get", err)
	}
	return c.JSON(http.StatusOK, view)
}

// GET /v1/reservations/my
func (h *Controller) My(c echo.Context) error {
	views, err := h.Svc.ListByUser(c.Request().Context(), jwtx.CallerID(c))
	if err != nil {
		return h.fail(c, "reservation my", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// GET /v1/reservations/user/:userId (staff)
func (h *Controller) ByUser(c echo.Context) error {
	views, err := h.Svc.ListByUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return h.fail(c, "reservation by user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// POST /v1/reservations
// @Summary Reserve a book title, debiting a 10% deposit
// @Param payload body CreateReservationReq true "Reservation payload"
// @Success 201 {object} map[string]any
func (h *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	view, err := h.Svc.Create(c.Request().Context(), jwtx.CallerID(c), req.BookTitleID)
	if err != nil {
		return h.fail(c, "reservation create", err)
	}
	return c.JSON(http.StatusCreated, view)
}

// PUT /v1/reservations/:id
func (h *Controller) Update(c echo.Context) error {
	var req UpdateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	view, err := h.Svc.Update(c.Request().Context(), c.Param("id"), jwtx.CallerID(c), rs.UpdateFields{
		BookTitleID: req.BookTitleID,
		BookCopyID:  req.BookCopyID,
	})
	if err != nil {
		return h.fail(c, "reservation update", err)
	}
	return c.JSON(http.StatusOK, view)
}

// DELETE /v1/reservations/:id
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("id"), jwtx.CallerID(c)); err != nil {
		return h.fail(c, "reservation delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation deleted"})
}

// POST /v1/reservations/:id/assign-copy (staff)
func (h *Controller) AssignCopy(c echo.Context) error {
	view, err := h.Svc.AssignBookCopy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "reservation assign copy", err)
	}
	return c.JSON(http.StatusOK, view)
}
