package triage

import (
	"fmt"
	"strings"
)

// PainZone is a body region a patient can report pain in.
type PainZone string

const (
	ZoneLeftShoulder  PainZone = "LEFT_SHOULDER"
	ZoneRightShoulder PainZone = "RIGHT_SHOULDER"
	ZoneLowerBack     PainZone = "LOWER_BACK"
	ZoneKnees         PainZone = "KNEES"
	ZoneNeuropathy    PainZone = "NEUROPATHY"
)

// ZoneLabels are the display names used on the patient form and in exports.
var ZoneLabels = map[PainZone]string{
	ZoneLeftShoulder:  "Hombro Izq",
	ZoneRightShoulder: "Hombro Der",
	ZoneLowerBack:     "Lumbar",
	ZoneKnees:         "Rodillas",
	ZoneNeuropathy:    "Neuropatía",
}

// NoPainZones is stored when the patient reports no pain.
const NoPainZones = "Ninguna"

// Score bounds shared by fatigue, stress and pain.
const (
	ScoreMin = 0
	ScoreMax = 10

	ZoneIntensityMin = 1
)

type PainReport struct {
	Zone      PainZone
	Intensity int
}

// DailyReport is the raw morning self-report.
type DailyReport struct {
	Bedtime        TimeOfDay
	WakeTime       TimeOfDay
	LatencyMinutes int
	AwakeMinutes   int
	Fatigue        int
	Stress         int
	PainZones      []PainReport
}

// MaxPain is the highest zone intensity, or 0 when no zone was reported.
func (r DailyReport) MaxPain() int {
	max := 0
	for _, p := range r.PainZones {
		if p.Intensity > max {
			max = p.Intensity
		}
	}
	return max
}

// ZonesLabel joins the reported zones for storage, e.g. "Lumbar, Rodillas".
func (r DailyReport) ZonesLabel() string {
	if len(r.PainZones) == 0 {
		return NoPainZones
	}
	labels := make([]string, 0, len(r.PainZones))
	for _, p := range r.PainZones {
		labels = append(labels, ZoneLabels[p.Zone])
	}
	return strings.Join(labels, ", ")
}

// Validate rejects malformed reports instead of clamping them.
func (r DailyReport) Validate() error {
	if !r.Bedtime.valid() || !r.WakeTime.valid() {
		return fmt.Errorf("%w: bedtime and wake time must be valid clock times", ErrInvalidInput)
	}
	if r.LatencyMinutes < 0 {
		return fmt.Errorf("%w: latency_minutes must not be negative", ErrInvalidInput)
	}
	if r.AwakeMinutes < 0 {
		return fmt.Errorf("%w: awake_minutes must not be negative", ErrInvalidInput)
	}
	if r.Fatigue < ScoreMin || r.Fatigue > ScoreMax {
		return fmt.Errorf("%w: fatigue must be between %d and %d", ErrInvalidInput, ScoreMin, ScoreMax)
	}
	if r.Stress < ScoreMin || r.Stress > ScoreMax {
		return fmt.Errorf("%w: stress must be between %d and %d", ErrInvalidInput, ScoreMin, ScoreMax)
	}

	seen := make(map[PainZone]struct{}, len(r.PainZones))
	for _, p := range r.PainZones {
		if _, ok := ZoneLabels[p.Zone]; !ok {
			return fmt.Errorf("%w: unknown pain zone %q", ErrInvalidInput, p.Zone)
		}
		if _, dup := seen[p.Zone]; dup {
			return fmt.Errorf("%w: pain zone %q reported twice", ErrInvalidInput, p.Zone)
		}
		seen[p.Zone] = struct{}{}
		if p.Intensity < ZoneIntensityMin || p.Intensity > ScoreMax {
			return fmt.Errorf("%w: pain intensity for %s must be between %d and %d",
				ErrInvalidInput, p.Zone, ZoneIntensityMin, ScoreMax)
		}
	}
	return nil
}

// Assessment is the outcome of evaluating one report.
type Assessment struct {
	Sleep   SleepMetrics
	MaxPain int
	Alert   AlertLevel
}

// Evaluate validates a report and classifies it.
func Evaluate(r DailyReport) (Assessment, error) {
	if err := r.Validate(); err != nil {
		return Assessment{}, err
	}

	sleep := ComputeSleep(r.Bedtime, r.WakeTime, r.LatencyMinutes, r.AwakeMinutes)
	maxPain := r.MaxPain()

	return Assessment{
		Sleep:   sleep,
		MaxPain: maxPain,
		Alert:   Classify(sleep.EfficiencyPct, r.LatencyMinutes, r.Fatigue, r.Stress, maxPain),
	}, nil
}
