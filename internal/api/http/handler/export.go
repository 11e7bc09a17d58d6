package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/service/export"
)

type ExportHandler struct {
	svc   export.Service
	clock clock.Clock
}

func NewExportHandler(svc export.Service, clk clock.Clock) *ExportHandler {
	return &ExportHandler{svc: svc, clock: clk}
}

// GET /api/v1/staff/export.xlsx
func (h *ExportHandler) Workbook(c fiber.Ctx) error {
	b, n, err := h.svc.Workbook(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName(h.clock.Now())+`"`)
	c.Set("X-Export-Rows", strconv.Itoa(n))
	return c.Send(b)
}

// POST /api/v1/staff/export
func (h *ExportHandler) Publish(c fiber.Ctx) error {
	pub, err := h.svc.Publish(c.Context())
	if err != nil {
		switch {
		case errors.Is(err, export.ErrObjectStoreUnavailable):
			return fail(c, fiber.StatusServiceUnavailable, err.Error())
		case errors.Is(err, export.ErrUploadFailed):
			return fail(c, fiber.StatusBadGateway, "failed to upload export")
		}
		return internalError(c, err)
	}
	return created(c, pub)
}
