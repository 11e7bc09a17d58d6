package triage

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:MM" in 24h format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q must be HH:MM", ErrInvalidInput, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// SleepMetrics is derived from one night of sleep timing.
type SleepMetrics struct {
	TimeInBedMinutes  int
	TimeAsleepMinutes int
	EfficiencyPct     float64
}

// ComputeSleep derives time in bed, time asleep and sleep efficiency.
// A wake time at or before bedtime is taken to be on the following day.
func ComputeSleep(bed, wake TimeOfDay, latency, awake int) SleepMetrics {
	wakeMin := wake.minutes()
	if wakeMin <= bed.minutes() {
		wakeMin += minutesPerDay
	}
	inBed := wakeMin - bed.minutes()

	asleep := inBed - latency - awake
	if asleep < 0 {
		asleep = 0
	}

	var eff float64
	if inBed > 0 {
		eff = 100 * float64(asleep) / float64(inBed)
	}

	return SleepMetrics{
		TimeInBedMinutes:  inBed,
		TimeAsleepMinutes: asleep,
		EfficiencyPct:     eff,
	}
}

// HoursAsleep is the net sleep in hours, as shown back to the patient.
func (m SleepMetrics) HoursAsleep() float64 {
	return float64(m.TimeAsleepMinutes) / 60
}
