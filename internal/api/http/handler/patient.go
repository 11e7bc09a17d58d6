package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/service/patient"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrPatientAlreadyExists):
		return conflict(c, err.Error())
	case errors.Is(err, patient.ErrInvalidPatient):
		return badRequest(c, err.Error())
	case errors.Is(err, patient.ErrInvalidPhone):
		return badRequest(c, err.Error())
	case errors.Is(err, patient.ErrInsufficientHistory):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrPhoneStorageUnavailable):
		return fail(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		return internalError(c, err)
	}
}

// GET /api/v1/staff/patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	list, err := h.svc.List(c.Context())
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, list)
}

// POST /api/v1/staff/patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	var body struct {
		ID     string `json:"id"`
		Cohort string `json:"cohort"`
		Arm    string `json:"arm"`
		PIN    string `json:"pin"`
		Phone  string `json:"contact_phone"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Create(c.Context(), patient.CreatePatientRequest{
		ID:     body.ID,
		Cohort: body.Cohort,
		Arm:    body.Arm,
		PIN:    body.PIN,
		Phone:  body.Phone,
	})
	if err != nil {
		return mapPatientError(c, err)
	}

	return created(c, fiber.Map{"patient": res.Patient, "pin": res.PIN})
}

// GET /api/v1/staff/patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	v, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, v)
}

// POST /api/v1/staff/patients/:id/enroll
func (h *PatientHandler) Enroll(c fiber.Ctx) error {
	e, err := h.svc.Enroll(c.Context(), c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, fiber.Map{"enrollment": e, "phase": e.Label()})
}

// GET /api/v1/staff/patients/:id/enrollment
func (h *PatientHandler) Enrollment(c fiber.Ctx) error {
	e, err := h.svc.Enrollment(c.Context(), c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, fiber.Map{"enrollment": e, "phase": e.Label()})
}

// GET /api/v1/staff/patients/:id/history
func (h *PatientHandler) History(c fiber.Ctx) error {
	points, err := h.svc.History(c.Context(), c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, historyOf(points))
}

// POST /api/v1/staff/patients/:id/pin
func (h *PatientHandler) ResetPIN(c fiber.Ctx) error {
	var body struct {
		PIN string `json:"pin"`
	}
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	pin, err := h.svc.ResetPIN(c.Context(), c.Params("id"), body.PIN)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, fiber.Map{"pin": pin})
}
