package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	dtriage "github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/service/session"
)

type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func recordResult(r *session.RecordResult) fiber.Map {
	return fiber.Map{
		"status":   r.Status,
		"visit":    visitOf(r.Visit),
		"warnings": r.Warnings,
	}
}

// GET /api/v1/staff/patients/:id/plan
func (h *SessionHandler) Plan(c fiber.Ctx) error {
	plan, err := h.svc.Plan(c.Context(), c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, plan)
}

// POST /api/v1/staff/patients/:id/session
func (h *SessionHandler) Record(c fiber.Ctx) error {
	var body struct {
		Loads []float64 `json:"loads"`
		RPE   *int      `json:"rpe"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.Loads) != prescription.ExercisesPerSession {
		return badRequest(c, "loads must have one value per exercise")
	}
	if body.RPE == nil {
		return badRequest(c, "rpe is required")
	}

	var loads [prescription.ExercisesPerSession]float64
	copy(loads[:], body.Loads)

	res, err := h.svc.Record(c.Context(), c.Params("id"), loads, *body.RPE)
	if err != nil {
		return mapSessionError(c, err)
	}
	return created(c, recordResult(res))
}

// POST /api/v1/staff/patients/:id/control-review
func (h *SessionHandler) ReviewControl(c fiber.Ctx) error {
	res, err := h.svc.ReviewControl(c.Context(), c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return created(c, recordResult(res))
}

// POST /api/v1/staff/patients/:id/vagal
func (h *SessionHandler) RecordVagal(c fiber.Ctx) error {
	res, err := h.svc.RecordVagal(c.Context(), c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return created(c, recordResult(res))
}

func mapSessionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, dtriage.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, session.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, session.ErrTriagePending),
		errors.Is(err, session.ErrWrongArm),
		errors.Is(err, session.ErrNotTrainingDay),
		errors.Is(err, session.ErrNotEnrolled),
		errors.Is(err, session.ErrRedDay),
		errors.Is(err, session.ErrNotRedDay):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}
