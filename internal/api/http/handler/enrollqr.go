package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/service/enrollqr"
)

type EnrollQRHandler struct {
	svc enrollqr.Service
}

func NewEnrollQRHandler(svc enrollqr.Service) *EnrollQRHandler {
	return &EnrollQRHandler{svc: svc}
}

// GET /api/v1/staff/enroll-qr.png?size=256
func (h *EnrollQRHandler) PNG(c fiber.Ctx) error {
	var q struct {
		Size int `query:"size"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "size must be a number")
	}

	png, err := h.svc.PNG(c.Context(), q.Size)
	if err != nil {
		if errors.Is(err, enrollqr.ErrInvalidSize) {
			return badRequest(c, err.Error())
		}
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(png)
}
