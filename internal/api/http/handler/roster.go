package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/service/roster"
)

type RosterHandler struct {
	svc roster.Service
}

func NewRosterHandler(svc roster.Service) *RosterHandler {
	return &RosterHandler{svc: svc}
}

// GET /api/v1/staff/roster
func (h *RosterHandler) Today(c fiber.Ctx) error {
	rows, err := h.svc.Today(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, rows)
}
