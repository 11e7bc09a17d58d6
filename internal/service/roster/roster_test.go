package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/internal/store/storetest"
)

var today = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func TestStaffAlertsFor(t *testing.T) {
	tests := []struct {
		name  string
		in    store.Triage
		codes []string
	}{
		{"quiet night", store.Triage{Sleep: triage.SleepMetrics{EfficiencyPct: 92}}, nil},
		{"exactly 85 is fine", store.Triage{Sleep: triage.SleepMetrics{EfficiencyPct: 85}}, nil},
		{"poor sleep", store.Triage{Sleep: triage.SleepMetrics{EfficiencyPct: 80.34}}, []string{AlertSleepEfficiency}},
		{"pain", store.Triage{Sleep: triage.SleepMetrics{EfficiencyPct: 90}, MaxPain: 2, PainZones: "Rodillas"}, []string{AlertPainFocus}},
		{"both", store.Triage{Sleep: triage.SleepMetrics{EfficiencyPct: 70}, MaxPain: 5, PainZones: "Lumbar"}, []string{AlertSleepEfficiency, AlertPainFocus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range StaffAlertsFor(tt.in) {
				got = append(got, a.Code)
			}
			assert.Equal(t, tt.codes, got)
		})
	}

	msgs := StaffAlertsFor(store.Triage{Sleep: triage.SleepMetrics{EfficiencyPct: 80.34}, MaxPain: 3, PainZones: "Lumbar"})
	assert.Equal(t, "Alerta Neural: Eficiencia del sueño en 80.3%.", msgs[0].Message)
	assert.Equal(t, "Alerta Biomecánica: Foco de dolor en Lumbar.", msgs[1].Message)
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewMemory()
	for _, p := range []*store.Patient{
		{ID: "P-1", Cohort: prescription.CohortBreast, Arm: prescription.ArmExperimental},
		{ID: "P-2", Cohort: prescription.CohortProstate, Arm: prescription.ArmControl},
		{ID: "P-3", Cohort: prescription.CohortProstate},
	} {
		require.NoError(t, db.CreatePatient(ctx, p))
	}

	_, err := db.UpsertTriage(ctx, "P-1", today, store.Triage{
		Status:    "COMPLETED",
		Alert:     triage.AlertYellow,
		Sleep:     triage.SleepMetrics{EfficiencyPct: 78},
		Fatigue:   5,
		MaxPain:   2,
		PainZones: "Rodillas",
	})
	require.NoError(t, err)
	require.NoError(t, db.UpdateSession(ctx, "P-1", today, store.Session{Status: "COMPLETED"}))

	// Yesterday's report does not show up.
	_, err = db.UpsertTriage(ctx, "P-2", today.AddDate(0, 0, -1), store.Triage{Status: "COMPLETED", Alert: triage.AlertRed})
	require.NoError(t, err)

	rows, err := New(db, clock.Fixed(today.Add(8*time.Hour))).Today(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "P-1", rows[0].PatientID)
	assert.Equal(t, "COMPLETED", rows[0].TriageStatus)
	assert.Equal(t, triage.AlertYellow, rows[0].Alert)
	assert.Equal(t, "COMPLETED", rows[0].SessionStatus)
	assert.Len(t, rows[0].StaffAlerts, 2)

	assert.Equal(t, StatusPending, rows[1].TriageStatus)
	assert.Equal(t, triage.AlertNone, rows[1].Alert)
	assert.Equal(t, prescription.ArmControl, rows[1].Arm)
	assert.Empty(t, rows[1].StaffAlerts)

	assert.Equal(t, prescription.ArmExperimental, rows[2].Arm, "missing arm defaults to experimental")
	assert.Zero(t, rows[2].Efficiency)
}

func TestTodayStoreError(t *testing.T) {
	db := storetest.NewMemory()
	db.Err = errors.New("connection refused")
	_, err := New(db, clock.Fixed(today)).Today(context.Background())
	assert.Error(t, err)
}
