package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/principal"
	dtriage "github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/constants"
	"github.com/udelar-dtx/dtx_backend/pkg/observability"
)

// StatusCompleted marks a submitted morning report.
const StatusCompleted = "COMPLETED"

// SubjectRedAlerts matches every RED alert event.
const SubjectRedAlerts = constants.SubjectTriageRedPrefix + "*"

// SubjectRedAlert is the NATS subject of a RED report by patientID.
func SubjectRedAlert(patientID string) string { return constants.SubjectTriageRedPrefix + patientID }

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Followup tells the patient what happens next.
type Followup string

const (
	FollowupControlDiary  Followup = "CONTROL_DIARY"
	FollowupTrainingToday Followup = "TRAINING_TODAY"
	FollowupRecoveryDay   Followup = "RECOVERY_DAY"
)

var followupMessages = map[Followup]string{
	FollowupControlDiary:  "¡Registro guardado! Muchas gracias por tu compromiso.",
	FollowupTrainingToday: "¡Reporte guardado! Te esperamos hoy para tu sesión de entrenamiento.",
	FollowupRecoveryDay:   "¡Reporte guardado! Excelente trabajo monitoreando tu recuperación de hoy.",
}

// Message is the confirmation shown to the patient.
func (f Followup) Message() string { return followupMessages[f] }

type SubmitResult struct {
	RecordID   int
	ReportDate time.Time
	Assessment dtriage.Assessment
	PainZones  string
	Followup   Followup
}

// RedAlertEvent is published for every RED report.
type RedAlertEvent struct {
	PatientID       string                `json:"patient_id"`
	Cohort          prescription.Cohort   `json:"cohort"`
	Arm             prescription.TrialArm `json:"arm"`
	ReportDate      string                `json:"report_date"`
	Fatigue         int                   `json:"fatigue"`
	MaxPain         int                   `json:"max_pain"`
	PainZones       string                `json:"pain_zones"`
	SleepEfficiency float64               `json:"sleep_efficiency"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Submit(ctx context.Context, p principal.AuthenticatedContext, report dtriage.DailyReport) (*SubmitResult, error)
	// Today returns the caller's record for the current trial day.
	Today(ctx context.Context, p principal.AuthenticatedContext) (*store.DailyRecord, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type triageService struct {
	records store.Records
	clock   clock.Clock
	pub     Publisher
	metrics *observability.TrialMetrics
}

// New builds the service. pub may be nil, in which case RED events are only
// logged.
func New(records store.Records, clk clock.Clock, pub Publisher, metrics *observability.TrialMetrics) Service {
	return &triageService{records: records, clock: clk, pub: pub, metrics: metrics}
}

func (s *triageService) Submit(ctx context.Context, p principal.AuthenticatedContext, report dtriage.DailyReport) (*SubmitResult, error) {
	if !p.IsPatient() {
		return nil, ErrPatientOnly
	}

	a, err := dtriage.Evaluate(report)
	if err != nil {
		return nil, fmt.Errorf("submit triage: %w", err)
	}

	today := clock.Today(s.clock)
	zones := report.ZonesLabel()

	id, err := s.records.UpsertTriage(ctx, p.PatientID(), today, store.Triage{
		Status:    StatusCompleted,
		Alert:     a.Alert,
		Sleep:     a.Sleep,
		Latency:   report.LatencyMinutes,
		Awake:     report.AwakeMinutes,
		Fatigue:   report.Fatigue,
		Stress:    report.Stress,
		MaxPain:   a.MaxPain,
		PainZones: zones,
	})
	if err != nil {
		return nil, fmt.Errorf("save triage: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TriageReported(ctx, a.Alert.String(), string(p.Cohort()))
	}

	if a.Alert == dtriage.AlertRed {
		s.publishRed(p, today, report, a, zones)
	}

	return &SubmitResult{
		RecordID:   id,
		ReportDate: today,
		Assessment: a,
		PainZones:  zones,
		Followup:   followupFor(p.Arm(), clock.Weekday(s.clock)),
	}, nil
}

func (s *triageService) Today(ctx context.Context, p principal.AuthenticatedContext) (*store.DailyRecord, error) {
	if !p.IsPatient() {
		return nil, ErrPatientOnly
	}

	rec, err := s.records.GetRecord(ctx, p.PatientID(), clock.Today(s.clock))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoReportToday
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func followupFor(arm prescription.TrialArm, day prescription.Weekday) Followup {
	switch {
	case arm == prescription.ArmControl:
		return FollowupControlDiary
	case day.IsTrainingDay():
		return FollowupTrainingToday
	default:
		return FollowupRecoveryDay
	}
}

// publishRed is fire-and-forget; the report is already saved.
func (s *triageService) publishRed(p principal.AuthenticatedContext, date time.Time, r dtriage.DailyReport, a dtriage.Assessment, zones string) {
	slog.Warn("triage: RED alert", "patient_id", p.PatientID(), "fatigue", r.Fatigue, "max_pain", a.MaxPain)
	if s.pub == nil {
		return
	}

	payload, err := json.Marshal(RedAlertEvent{
		PatientID:       p.PatientID(),
		Cohort:          p.Cohort(),
		Arm:             p.Arm(),
		ReportDate:      date.Format(clock.DateLayout),
		Fatigue:         r.Fatigue,
		MaxPain:         a.MaxPain,
		PainZones:       zones,
		SleepEfficiency: a.Sleep.EfficiencyPct,
	})
	if err != nil {
		slog.Error("triage: encode RED event", "error", err)
		return
	}
	if err := s.pub.Publish(SubjectRedAlert(p.PatientID()), payload); err != nil {
		slog.Error("triage: publish RED event", "patient_id", p.PatientID(), "error", err)
	}
}
