package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/service/patient"
	"github.com/udelar-dtx/dtx_backend/internal/service/roster"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/observability"
	"github.com/udelar-dtx/dtx_backend/pkg/util/codes"
)

// Session statuses stored on the daily record.
const (
	StatusCompleted       = "COMPLETED"
	StatusReviewedControl = "REVIEWED_CONTROL"
	StatusVagalCompleted  = "VAGAL_COMPLETED"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Plan is everything the trainer sees before a session.
type Plan struct {
	PatientID     string                          `json:"patient_id"`
	Cohort        prescription.Cohort             `json:"cohort"`
	Arm           prescription.TrialArm           `json:"arm"`
	Date          time.Time                       `json:"date"`
	Enrollment    patient.Enrollment              `json:"enrollment"`
	Phase         string                          `json:"phase"`
	Alert         triage.AlertLevel               `json:"alert"`
	StaffAlerts   []roster.StaffAlert             `json:"staff_alerts"`
	Outcome       prescription.Outcome            `json:"outcome"`
	Guidelines    *prescription.SessionGuidelines `json:"guidelines,omitempty"`
	Recovery      string                          `json:"recovery,omitempty"`
	SessionStatus string                          `json:"session_status,omitempty"`
}

type RecordResult struct {
	Status   string                 `json:"status"`
	Visit    prescription.Visit     `json:"visit"`
	Warnings []prescription.Warning `json:"warnings"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Plan(ctx context.Context, patientID string) (*Plan, error)
	Record(ctx context.Context, patientID string, loads [prescription.ExercisesPerSession]float64, rpe int) (*RecordResult, error)
	ReviewControl(ctx context.Context, patientID string) (*RecordResult, error)
	RecordVagal(ctx context.Context, patientID string) (*RecordResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type sessionService struct {
	patients store.Patients
	records  store.Records
	catalog  *prescription.Catalog
	clock    clock.Clock
	metrics  *observability.TrialMetrics
}

func New(
	patients store.Patients,
	records store.Records,
	catalog *prescription.Catalog,
	clk clock.Clock,
	metrics *observability.TrialMetrics,
) Service {
	return &sessionService{
		patients: patients,
		records:  records,
		catalog:  catalog,
		clock:    clk,
		metrics:  metrics,
	}
}

// day is the state shared by every operation: the patient and today's
// record.
type day struct {
	patient    *store.Patient
	record     *store.DailyRecord
	date       time.Time
	weekday    prescription.Weekday
	enrollment patient.Enrollment
}

func (s *sessionService) load(ctx context.Context, patientID string) (*day, error) {
	id, err := codes.NormalizePatientID(patientID)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	p, err := s.patients.GetPatient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}

	today := clock.Today(s.clock)
	rec, err := s.records.GetRecord(ctx, p.ID, today)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTriagePending
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if rec.Triage.Status == "" || !rec.Triage.Alert.Valid() {
		return nil, ErrTriagePending
	}

	return &day{
		patient:    p,
		record:     rec,
		date:       today,
		weekday:    clock.Weekday(s.clock),
		enrollment: patient.EnrollmentOn(p.EnrollmentStart, today),
	}, nil
}

func (s *sessionService) outcome(d *day) prescription.Outcome {
	return s.catalog.Select(prescription.SelectInput{
		Cohort:              d.patient.Cohort,
		Weekday:             d.weekday,
		Arm:                 d.patient.Arm,
		Alert:               d.record.Triage.Alert,
		DaysSinceEnrollment: d.enrollment.DaysSince,
	})
}

// requirePlan maps every outcome other than a training plan to the error
// that explains why no session can be recorded today.
func requirePlan(o prescription.Outcome) (*prescription.PrescriptionPlan, error) {
	switch o.Kind {
	case prescription.OutcomePlan:
		return o.Plan, nil
	case prescription.OutcomeMonitoringOnly:
		return nil, ErrWrongArm
	case prescription.OutcomeNotEnrolled:
		return nil, ErrNotEnrolled
	case prescription.OutcomeRecoveryDay:
		return nil, ErrNotTrainingDay
	default:
		return nil, ErrTriagePending
	}
}

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

func (s *sessionService) Plan(ctx context.Context, patientID string) (*Plan, error) {
	d, err := s.load(ctx, patientID)
	if err != nil {
		return nil, err
	}

	outcome := s.outcome(d)

	plan := &Plan{
		PatientID:   d.patient.ID,
		Cohort:      d.patient.Cohort,
		Arm:         d.patient.Arm,
		Date:        d.date,
		Enrollment:  d.enrollment,
		Phase:       d.enrollment.Label(),
		Alert:       d.record.Triage.Alert,
		StaffAlerts: roster.StaffAlertsFor(d.record.Triage),
		Outcome:     outcome,
	}
	switch outcome.Kind {
	case prescription.OutcomePlan:
		g := prescription.DefaultSessionGuidelines()
		plan.Guidelines = &g
	case prescription.OutcomeRecoveryDay:
		plan.Recovery = prescription.RecoveryGuidance
	}
	if d.record.Session != nil {
		plan.SessionStatus = d.record.Session.Status
	}
	return plan, nil
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func (s *sessionService) Record(ctx context.Context, patientID string, loads [prescription.ExercisesPerSession]float64, rpe int) (*RecordResult, error) {
	if rpe < 0 || rpe > prescription.MaxRPE {
		return nil, fmt.Errorf("%w: rpe must be between 0 and %d", triage.ErrInvalidInput, prescription.MaxRPE)
	}
	for i, l := range loads {
		if l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, fmt.Errorf("%w: load %d must be a non-negative number", triage.ErrInvalidInput, i+1)
		}
	}

	d, err := s.load(ctx, patientID)
	if err != nil {
		return nil, err
	}
	plan, err := requirePlan(s.outcome(d))
	if err != nil {
		return nil, err
	}
	if plan.Dose == prescription.DoseBlocked {
		return nil, ErrRedDay
	}

	routine, ok := s.catalog.Routine(d.patient.Cohort, d.weekday)
	if !ok {
		return nil, fmt.Errorf("no routine for %s on %s", d.patient.Cohort, d.weekday)
	}

	visit := prescription.TrainingVisit(routine, loads, rpe)
	warnings := prescription.CheckLymphedema(d.patient.Cohort, routine[:], loads[:])

	if err := s.save(ctx, d, StatusCompleted, visit); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		slog.Warn("session: safety warning", "patient_id", d.patient.ID, "code", w.Code, "exercise", w.Exercise, "load_kg", w.LoadKg)
		if s.metrics != nil {
			s.metrics.SafetyWarning(ctx, w.Code)
		}
	}
	if warnings == nil {
		warnings = []prescription.Warning{}
	}

	return &RecordResult{Status: StatusCompleted, Visit: visit, Warnings: warnings}, nil
}

func (s *sessionService) ReviewControl(ctx context.Context, patientID string) (*RecordResult, error) {
	d, err := s.load(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if d.patient.Arm != prescription.ArmControl {
		return nil, ErrWrongArm
	}

	visit := prescription.MonitoringVisit()
	if err := s.save(ctx, d, StatusReviewedControl, visit); err != nil {
		return nil, err
	}
	return &RecordResult{Status: StatusReviewedControl, Visit: visit, Warnings: []prescription.Warning{}}, nil
}

func (s *sessionService) RecordVagal(ctx context.Context, patientID string) (*RecordResult, error) {
	d, err := s.load(ctx, patientID)
	if err != nil {
		return nil, err
	}
	plan, err := requirePlan(s.outcome(d))
	if err != nil {
		return nil, err
	}
	if plan.Dose != prescription.DoseBlocked {
		return nil, ErrNotRedDay
	}

	visit := prescription.VagalVisit()
	if err := s.save(ctx, d, StatusVagalCompleted, visit); err != nil {
		return nil, err
	}
	return &RecordResult{Status: StatusVagalCompleted, Visit: visit, Warnings: []prescription.Warning{}}, nil
}

func (s *sessionService) save(ctx context.Context, d *day, status string, v prescription.Visit) error {
	err := s.records.UpdateSession(ctx, d.patient.ID, d.date, store.Session{Status: status, Visit: v})
	if errors.Is(err, store.ErrNotFound) {
		return ErrTriagePending
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SessionRecorded(ctx, status)
	}
	return nil
}
