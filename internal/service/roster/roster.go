package roster

import (
	"context"
	"fmt"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
)

// StatusPending is shown for patients who have not reported today.
const StatusPending = "PENDING"

// Staff alert codes.
const (
	AlertSleepEfficiency = "SLEEP_EFFICIENCY_LOW"
	AlertPainFocus       = "PAIN_FOCUS"
)

// StaffAlert flags a detail of the morning report the trainer should look at
// before the session.
type StaffAlert struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StaffAlertsFor lists the alerts raised by a submitted report.
func StaffAlertsFor(t store.Triage) []StaffAlert {
	var out []StaffAlert
	if t.Sleep.EfficiencyPct < triage.YellowEfficiencyBelow {
		out = append(out, StaffAlert{
			Code:    AlertSleepEfficiency,
			Message: fmt.Sprintf("Alerta Neural: Eficiencia del sueño en %.1f%%.", t.Sleep.EfficiencyPct),
		})
	}
	if t.MaxPain > 0 {
		out = append(out, StaffAlert{
			Code:    AlertPainFocus,
			Message: fmt.Sprintf("Alerta Biomecánica: Foco de dolor en %s.", t.PainZones),
		})
	}
	return out
}

// Row is one patient on today's board.
type Row struct {
	PatientID     string                `json:"patient_id"`
	Cohort        prescription.Cohort   `json:"cohort"`
	Arm           prescription.TrialArm `json:"arm"`
	TriageStatus  string                `json:"triage_status"`
	Alert         triage.AlertLevel     `json:"alert"`
	Efficiency    float64               `json:"sleep_efficiency"`
	Fatigue       int                   `json:"fatigue"`
	MaxPain       int                   `json:"max_pain"`
	PainZones     string                `json:"pain_zones,omitempty"`
	SessionStatus string                `json:"session_status,omitempty"`
	StaffAlerts   []StaffAlert          `json:"staff_alerts"`
}

type Service interface {
	Today(ctx context.Context) ([]Row, error)
}

type rosterService struct {
	records store.Records
	clock   clock.Clock
}

func New(records store.Records, clk clock.Clock) Service {
	return &rosterService{records: records, clock: clk}
}

func (s *rosterService) Today(ctx context.Context) ([]Row, error) {
	rows, err := s.records.Roster(ctx, clock.Today(s.clock))
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowOf(r))
	}
	return out, nil
}

func rowOf(r store.RosterRow) Row {
	row := Row{
		PatientID:    r.Patient.ID,
		Cohort:       r.Patient.Cohort,
		Arm:          r.Patient.Arm,
		TriageStatus: StatusPending,
		Alert:        triage.AlertNone,
		StaffAlerts:  []StaffAlert{},
	}
	if row.Arm == "" {
		row.Arm = prescription.ArmExperimental
	}

	rec := r.Record
	if rec == nil || rec.Triage.Status == "" {
		return row
	}

	row.TriageStatus = rec.Triage.Status
	row.Alert = rec.Triage.Alert
	row.Efficiency = rec.Triage.Sleep.EfficiencyPct
	row.Fatigue = rec.Triage.Fatigue
	row.MaxPain = rec.Triage.MaxPain
	row.PainZones = rec.Triage.PainZones
	row.StaffAlerts = append(row.StaffAlerts, StaffAlertsFor(rec.Triage)...)
	if rec.Session != nil {
		row.SessionStatus = rec.Session.Status
	}
	return row
}
