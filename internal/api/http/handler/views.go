package handler

import (
	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
)

type sleepView struct {
	TimeInBedMinutes  int     `json:"time_in_bed_minutes"`
	TimeAsleepMinutes int     `json:"time_asleep_minutes"`
	EfficiencyPct     float64 `json:"efficiency_pct"`
}

func sleepOf(s triage.SleepMetrics) sleepView {
	return sleepView{
		TimeInBedMinutes:  s.TimeInBedMinutes,
		TimeAsleepMinutes: s.TimeAsleepMinutes,
		EfficiencyPct:     s.EfficiencyPct,
	}
}

type visitView struct {
	Exercises [prescription.ExercisesPerSession]string  `json:"exercises"`
	Loads     [prescription.ExercisesPerSession]float64 `json:"loads"`
	RPE       int                                       `json:"rpe"`
	Vagal     bool                                      `json:"vagal_protocol"`
}

func visitOf(v prescription.Visit) visitView {
	return visitView{Exercises: v.Exercises, Loads: v.Loads, RPE: v.RPE, Vagal: v.Vagal}
}

type recordView struct {
	ID            int               `json:"id"`
	PatientID     string            `json:"patient_id"`
	Date          string            `json:"date"`
	TriageStatus  string            `json:"triage_status"`
	Alert         triage.AlertLevel `json:"alert"`
	Sleep         sleepView         `json:"sleep"`
	Latency       int               `json:"latency_minutes"`
	Awake         int               `json:"awake_minutes"`
	Fatigue       int               `json:"fatigue"`
	Stress        int               `json:"stress"`
	MaxPain       int               `json:"max_pain"`
	PainZones     string            `json:"pain_zones"`
	SessionStatus string            `json:"session_status,omitempty"`
	Session       *visitView        `json:"session,omitempty"`
}

func recordOf(r *store.DailyRecord) recordView {
	v := recordView{
		ID:           r.ID,
		PatientID:    r.PatientID,
		Date:         r.Date.Format(clock.DateLayout),
		TriageStatus: r.Triage.Status,
		Alert:        r.Triage.Alert,
		Sleep:        sleepOf(r.Triage.Sleep),
		Latency:      r.Triage.Latency,
		Awake:        r.Triage.Awake,
		Fatigue:      r.Triage.Fatigue,
		Stress:       r.Triage.Stress,
		MaxPain:      r.Triage.MaxPain,
		PainZones:    r.Triage.PainZones,
	}
	if r.Session != nil {
		v.SessionStatus = r.Session.Status
		sv := visitOf(r.Session.Visit)
		v.Session = &sv
	}
	return v
}

type historyView struct {
	Date       string  `json:"date"`
	Fatigue    int     `json:"fatigue"`
	MaxPain    int     `json:"max_pain"`
	Efficiency float64 `json:"efficiency"`
	Load1      float64 `json:"load_1"`
	SessionRPE int     `json:"session_rpe"`
}

func historyOf(points []store.HistoryPoint) []historyView {
	out := make([]historyView, 0, len(points))
	for _, p := range points {
		out = append(out, historyView{
			Date:       p.Date.Format(clock.DateLayout),
			Fatigue:    p.Fatigue,
			MaxPain:    p.MaxPain,
			Efficiency: p.Efficiency,
			Load1:      p.Load1,
			SessionRPE: p.SessionRPE,
		})
	}
	return out
}
