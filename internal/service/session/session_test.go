package session

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/service/patient"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/internal/store/storetest"
)

var (
	seq       int
	wednesday = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	thursday  = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc Service
	db  *storetest.Memory
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	db := storetest.NewMemory()
	return &fixture{
		svc: New(db, db, prescription.DefaultCatalog(), clock.Fixed(today.Add(10*time.Hour)), nil),
		db:  db,
	}
}

// addPatient registers a patient enrolled startOffset days before today
// (negative means in the future) and files today's report with alert.
func (f *fixture) addPatient(t *testing.T, today time.Time, cohort prescription.Cohort, arm prescription.TrialArm, startOffset *int, alert triage.AlertLevel) string {
	t.Helper()
	ctx := context.Background()
	seq++
	id := fmt.Sprintf("P-%03d", seq)

	p := &store.Patient{ID: id, Cohort: cohort, Arm: arm}
	if startOffset != nil {
		start := today.AddDate(0, 0, -*startOffset)
		p.EnrollmentStart = &start
	}
	require.NoError(t, f.db.CreatePatient(ctx, p))

	if alert != triage.AlertNone {
		_, err := f.db.UpsertTriage(ctx, id, today, store.Triage{
			Status:    "COMPLETED",
			Alert:     alert,
			Sleep:     triage.SleepMetrics{EfficiencyPct: 80},
			MaxPain:   3,
			PainZones: "Lumbar",
		})
		require.NoError(t, err)
	}
	return id
}

func days(n int) *int { return &n }

func TestPlanTrainingDay(t *testing.T) {
	f := newFixture(t, wednesday)
	id := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmExperimental, days(9), triage.AlertYellow)

	plan, err := f.svc.Plan(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Semana 2", plan.Phase)
	assert.Equal(t, patient.PhaseActive, plan.Enrollment.Phase)
	assert.Len(t, plan.StaffAlerts, 2)
	require.Equal(t, prescription.OutcomePlan, plan.Outcome.Kind)
	assert.Equal(t, prescription.DoseReduced, plan.Outcome.Plan.Dose)
	assert.Equal(t, -1, plan.Outcome.Plan.Guidance.SetDelta)
	assert.Len(t, plan.Outcome.Plan.Exercises, prescription.ExercisesPerSession)
	require.NotNil(t, plan.Guidelines)
	assert.Empty(t, plan.Recovery)
}

func TestPlanOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		arm   prescription.TrialArm
		start *int
		alert triage.AlertLevel
		want  prescription.OutcomeKind
	}{
		{"control on red day", wednesday, prescription.ArmControl, days(3), triage.AlertRed, prescription.OutcomeMonitoringOnly},
		{"not enrolled", wednesday, prescription.ArmExperimental, nil, triage.AlertGreen, prescription.OutcomeNotEnrolled},
		{"starts in future", wednesday, prescription.ArmExperimental, days(-2), triage.AlertGreen, prescription.OutcomeNotEnrolled},
		{"rest day", thursday, prescription.ArmExperimental, days(3), triage.AlertGreen, prescription.OutcomeRecoveryDay},
		{"red blocks load", wednesday, prescription.ArmExperimental, days(3), triage.AlertRed, prescription.OutcomePlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.today)
			id := f.addPatient(t, tt.today, prescription.CohortProstate, tt.arm, tt.start, tt.alert)

			plan, err := f.svc.Plan(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Outcome.Kind)
			if tt.want == prescription.OutcomeRecoveryDay {
				assert.Equal(t, prescription.RecoveryGuidance, plan.Recovery)
			}
		})
	}
}

func TestPlanRequiresTriage(t *testing.T) {
	f := newFixture(t, wednesday)
	id := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmExperimental, days(0), triage.AlertNone)

	_, err := f.svc.Plan(context.Background(), id)
	assert.ErrorIs(t, err, ErrTriagePending)

	_, err = f.svc.Plan(context.Background(), "P-UNKNOWN")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestRecordSavesRoutineAndWarns(t *testing.T) {
	f := newFixture(t, wednesday)
	ctx := context.Background()
	id := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmExperimental, days(2), triage.AlertGreen)

	res, err := f.svc.Record(ctx, id, [4]float64{60, 27.5, 40, 10}, 6)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, prescription.WarningLymphedema, res.Warnings[0].Code)
	assert.Equal(t, 2, res.Warnings[0].Slot)

	rec, err := f.db.GetRecord(ctx, id, wednesday)
	require.NoError(t, err)
	require.NotNil(t, rec.Session)
	assert.Equal(t, StatusCompleted, rec.Session.Status)
	assert.Equal(t, "Floor Press (Seguro)", rec.Session.Visit.Exercises[1])
	assert.Equal(t, 27.5, rec.Session.Visit.Loads[1])
	assert.Equal(t, 6, rec.Session.Visit.RPE)
	assert.False(t, rec.Session.Visit.Vagal)
}

func TestRecordAtLimitHasNoWarning(t *testing.T) {
	f := newFixture(t, wednesday)
	id := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmExperimental, days(2), triage.AlertGreen)

	res, err := f.svc.Record(context.Background(), id, [4]float64{60, prescription.LymphedemaLoadLimitKg, 40, 10}, 5)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}

func TestRecordRejects(t *testing.T) {
	tests := []struct {
		name    string
		today   time.Time
		arm     prescription.TrialArm
		start   *int
		alert   triage.AlertLevel
		loads   [4]float64
		rpe     int
		wantErr error
	}{
		{"control arm", wednesday, prescription.ArmControl, days(2), triage.AlertGreen, [4]float64{}, 5, ErrWrongArm},
		{"rest day", thursday, prescription.ArmExperimental, days(2), triage.AlertGreen, [4]float64{}, 5, ErrNotTrainingDay},
		{"not enrolled", wednesday, prescription.ArmExperimental, nil, triage.AlertGreen, [4]float64{}, 5, ErrNotEnrolled},
		{"future start", wednesday, prescription.ArmExperimental, days(-1), triage.AlertGreen, [4]float64{}, 5, ErrNotEnrolled},
		{"not enrolled on rest day", thursday, prescription.ArmExperimental, nil, triage.AlertGreen, [4]float64{}, 5, ErrNotEnrolled},
		{"control on red day", wednesday, prescription.ArmControl, days(2), triage.AlertRed, [4]float64{}, 5, ErrWrongArm},
		{"red day", wednesday, prescription.ArmExperimental, days(2), triage.AlertRed, [4]float64{}, 5, ErrRedDay},
		{"no report", wednesday, prescription.ArmExperimental, days(2), triage.AlertNone, [4]float64{}, 5, ErrTriagePending},
		{"rpe above scale", wednesday, prescription.ArmExperimental, days(2), triage.AlertGreen, [4]float64{}, 11, triage.ErrInvalidInput},
		{"negative rpe", wednesday, prescription.ArmExperimental, days(2), triage.AlertGreen, [4]float64{}, -1, triage.ErrInvalidInput},
		{"negative load", wednesday, prescription.ArmExperimental, days(2), triage.AlertGreen, [4]float64{0, -2.5, 0, 0}, 5, triage.ErrInvalidInput},
		{"nan load", wednesday, prescription.ArmExperimental, days(2), triage.AlertGreen, [4]float64{math.NaN(), 0, 0, 0}, 5, triage.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.today)
			id := f.addPatient(t, tt.today, prescription.CohortBreast, tt.arm, tt.start, tt.alert)
			_, err := f.svc.Record(context.Background(), id, tt.loads, tt.rpe)
			assert.ErrorIs(t, err, tt.wantErr)

			if tt.alert != triage.AlertNone {
				rec, err := f.db.GetRecord(context.Background(), id, tt.today)
				require.NoError(t, err)
				assert.Nil(t, rec.Session)
			}
		})
	}
}

func TestReviewControl(t *testing.T) {
	f := newFixture(t, thursday)
	ctx := context.Background()
	id := f.addPatient(t, thursday, prescription.CohortProstate, prescription.ArmControl, nil, triage.AlertRed)

	res, err := f.svc.ReviewControl(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusReviewedControl, res.Status)

	rec, err := f.db.GetRecord(ctx, id, thursday)
	require.NoError(t, err)
	assert.Equal(t, prescription.MonitoringVisit(), rec.Session.Visit)

	exp := f.addPatient(t, thursday, prescription.CohortProstate, prescription.ArmExperimental, days(1), triage.AlertGreen)
	_, err = f.svc.ReviewControl(ctx, exp)
	assert.ErrorIs(t, err, ErrWrongArm)
}

func TestRecordVagal(t *testing.T) {
	f := newFixture(t, wednesday)
	ctx := context.Background()
	red := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmExperimental, days(4), triage.AlertRed)

	res, err := f.svc.RecordVagal(ctx, red)
	require.NoError(t, err)
	assert.Equal(t, StatusVagalCompleted, res.Status)

	rec, err := f.db.GetRecord(ctx, red, wednesday)
	require.NoError(t, err)
	v := rec.Session.Visit
	assert.True(t, v.Vagal)
	assert.Equal(t, prescription.VagalSlotName, v.Exercises[0])
	assert.Equal(t, prescription.NoExercise, v.Exercises[3])
	assert.Zero(t, v.RPE)
	assert.Equal(t, [4]float64{}, v.Loads)

	yellow := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmExperimental, days(4), triage.AlertYellow)
	_, err = f.svc.RecordVagal(ctx, yellow)
	assert.ErrorIs(t, err, ErrNotRedDay)
}

func TestRecordVagalFollowsSelector(t *testing.T) {
	tests := []struct {
		name    string
		today   time.Time
		arm     prescription.TrialArm
		start   *int
		wantErr error
	}{
		{"control arm", wednesday, prescription.ArmControl, days(4), ErrWrongArm},
		{"control arm not enrolled", thursday, prescription.ArmControl, nil, ErrWrongArm},
		{"rest day", thursday, prescription.ArmExperimental, days(4), ErrNotTrainingDay},
		{"not enrolled", wednesday, prescription.ArmExperimental, nil, ErrNotEnrolled},
		{"not enrolled on rest day", thursday, prescription.ArmExperimental, days(-3), ErrNotEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.today)
			ctx := context.Background()
			id := f.addPatient(t, tt.today, prescription.CohortProstate, tt.arm, tt.start, triage.AlertRed)

			_, err := f.svc.RecordVagal(ctx, id)
			assert.ErrorIs(t, err, tt.wantErr)

			rec, err := f.db.GetRecord(ctx, id, tt.today)
			require.NoError(t, err)
			assert.Nil(t, rec.Session)
		})
	}
}

func TestControlOnRedDayIsReviewedOnly(t *testing.T) {
	f := newFixture(t, wednesday)
	ctx := context.Background()
	id := f.addPatient(t, wednesday, prescription.CohortBreast, prescription.ArmControl, days(4), triage.AlertRed)

	plan, err := f.svc.Plan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, prescription.OutcomeMonitoringOnly, plan.Outcome.Kind)
	assert.Nil(t, plan.Guidelines)

	_, err = f.svc.RecordVagal(ctx, id)
	assert.ErrorIs(t, err, ErrWrongArm)

	res, err := f.svc.ReviewControl(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusReviewedControl, res.Status)
	assert.False(t, res.Visit.Vagal)
}
