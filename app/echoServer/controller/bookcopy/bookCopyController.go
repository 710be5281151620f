package bookcopy

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/honguyenminh/is216-library-manager/app/echoServer/jwtx"
	"github.com/honguyenminh/is216-library-manager/model"
	bcs "github.com/honguyenminh/is216-library-manager/service/bookcopy"
	"github.com/honguyenminh/is216-library-manager/util/apperr"
)

type Controller struct {
	Svc bcs.Service
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

// GET /v1/book-copies
func (h *Controller) ListAll(c echo.Context) error {
	views, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return h.fail(c, "book copy list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// GET /v1/book-copies/:id
func (h *Controller) Get(c echo.Context) error {
	view, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, "book copy get", err)
	}
	return c.JSON(http.StatusOK, view)
}

// POST /v1/book-copies (staff)
// @Summary Add a batch of physical copies for a title
// @Param payload body CreateBookCopiesReq true "Batch payload"
// @Success 201 {object} map[string]any
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookCopiesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	var cond *model.BookCopyCondition
	if req.Condition != nil {
		cc := model.BookCopyCondition(*req.Condition)
		cond = &cc
	}

	views, err := h.Svc.CreateCopies(c.Request().Context(), req.BookTitleID, req.Quantity, cond)
	if err != nil {
		return h.fail(c, "book copy create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": views})
}

// PUT /v1/book-copies/:id (staff)
func (h *Controller) Update(c echo.Context) error {
	var req UpdateBookCopyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	var cond *model.BookCopyCondition
	if req.Condition != nil {
		cc := model.BookCopyCondition(*req.Condition)
		cond = &cc
	}

	view, err := h.Svc.UpdateStatus(c.Request().Context(), c.Param("id"), jwtx.CallerID(c),
		model.BookCopyStatus(req.Status), cond)
	if err != nil {
		return h.fail(c, "book copy update", err)
	}
	return c.JSON(http.StatusOK, view)
}

// DELETE /v1/book-copies/:id (admin)
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, "book copy delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book copy deleted"})
}
