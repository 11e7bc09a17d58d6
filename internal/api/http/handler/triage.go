package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/api/http/middleware"
	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	dtriage "github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/service/triage"
)

type TriageHandler struct {
	svc triage.Service
}

func NewTriageHandler(svc triage.Service) *TriageHandler {
	return &TriageHandler{svc: svc}
}

type painBody struct {
	Zone      dtriage.PainZone `json:"zone"`
	Intensity int              `json:"intensity"`
}

type reportBody struct {
	Bedtime        string     `json:"bedtime"`
	WakeTime       string     `json:"wake_time"`
	LatencyMinutes int        `json:"latency_minutes"`
	AwakeMinutes   int        `json:"awake_minutes"`
	Fatigue        int        `json:"fatigue"`
	Stress         int        `json:"stress"`
	Pain           []painBody `json:"pain"`
}

func (b reportBody) report() (dtriage.DailyReport, error) {
	bed, err := dtriage.ParseTimeOfDay(b.Bedtime)
	if err != nil {
		return dtriage.DailyReport{}, err
	}
	wake, err := dtriage.ParseTimeOfDay(b.WakeTime)
	if err != nil {
		return dtriage.DailyReport{}, err
	}
	r := dtriage.DailyReport{
		Bedtime:        bed,
		WakeTime:       wake,
		LatencyMinutes: b.LatencyMinutes,
		AwakeMinutes:   b.AwakeMinutes,
		Fatigue:        b.Fatigue,
		Stress:         b.Stress,
	}
	for _, p := range b.Pain {
		r.PainZones = append(r.PainZones, dtriage.PainReport{Zone: p.Zone, Intensity: p.Intensity})
	}
	return r, nil
}

// POST /api/v1/triage
func (h *TriageHandler) Submit(c fiber.Ctx) error {
	p, valid := middleware.PrincipalFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	var body reportBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	report, err := body.report()
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.svc.Submit(c.Context(), p, report)
	if err != nil {
		return mapTriageError(c, err)
	}

	return created(c, fiber.Map{
		"record_id":   res.RecordID,
		"report_date": res.ReportDate.Format(clock.DateLayout),
		"alert":       res.Assessment.Alert,
		"sleep":       sleepOf(res.Assessment.Sleep),
		"max_pain":    res.Assessment.MaxPain,
		"pain_zones":  res.PainZones,
		"followup":    res.Followup,
		"message":     res.Followup.Message(),
	})
}

// GET /api/v1/triage/today
func (h *TriageHandler) Today(c fiber.Ctx) error {
	p, valid := middleware.PrincipalFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	rec, err := h.svc.Today(c.Context(), p)
	if err != nil {
		return mapTriageError(c, err)
	}
	return ok(c, recordOf(rec))
}

func mapTriageError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, dtriage.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, triage.ErrPatientOnly):
		return forbidden(c)
	case errors.Is(err, triage.ErrNoReportToday):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}
