package triage

import (
	"errors"
	"testing"
)

func tod(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) error = %v", s, err)
	}
	return v
}

func TestComputeSleep(t *testing.T) {
	tests := []struct {
		name       string
		bed, wake  string
		latency    int
		awake      int
		wantInBed  int
		wantAsleep int
		wantEff    float64
	}{
		{"midnight rollover", "23:00", "06:00", 0, 0, 420, 420, 100},
		{"same day", "01:30", "09:30", 20, 40, 480, 420, 87.5},
		{"default form values", "23:00", "07:00", 15, 10, 480, 455, 100 * 455.0 / 480.0},
		{"equal times span a full day", "22:00", "22:00", 0, 0, 1440, 1440, 100},
		{"latency and waking exceed time in bed", "02:00", "03:00", 50, 30, 60, 0, 0},
		{"one minute in bed", "05:59", "06:00", 0, 0, 1, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSleep(tod(t, tt.bed), tod(t, tt.wake), tt.latency, tt.awake)
			if got.TimeInBedMinutes != tt.wantInBed {
				t.Errorf("TimeInBedMinutes = %d, want %d", got.TimeInBedMinutes, tt.wantInBed)
			}
			if got.TimeAsleepMinutes != tt.wantAsleep {
				t.Errorf("TimeAsleepMinutes = %d, want %d", got.TimeAsleepMinutes, tt.wantAsleep)
			}
			if got.EfficiencyPct != tt.wantEff {
				t.Errorf("EfficiencyPct = %v, want %v", got.EfficiencyPct, tt.wantEff)
			}
		})
	}
}

func TestComputeSleepNeverNegative(t *testing.T) {
	for h := 0; h < 24; h++ {
		bed := TimeOfDay{Hour: h}
		wake := TimeOfDay{Hour: (h + 3) % 24, Minute: 15}
		got := ComputeSleep(bed, wake, 500, 500)
		if got.TimeInBedMinutes <= 0 {
			t.Fatalf("bed %s wake %s: TimeInBedMinutes = %d", bed, wake, got.TimeInBedMinutes)
		}
		if got.TimeAsleepMinutes != 0 || got.EfficiencyPct != 0 {
			t.Fatalf("bed %s wake %s: got %+v, want zero sleep", bed, wake, got)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"23:00", TimeOfDay{23, 0}, false},
		{"06:45", TimeOfDay{6, 45}, false},
		{"00:00", TimeOfDay{0, 0}, false},
		{"24:00", TimeOfDay{}, true},
		{"7pm", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not wrap ErrInvalidInput", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
