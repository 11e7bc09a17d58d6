package prescription

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testCatalogYAML = `
intensity:
  MONDAY: "60%"
  WEDNESDAY: "70%"
  FRIDAY: "50%"
cohorts:
  MAMA:
    MONDAY: [{name: A1}, {name: A2}, {name: A3}, {name: A4}]
    WEDNESDAY: [{name: B1}, {name: B2, upper_body_press: true}, {name: B3}, {name: B4}]
    FRIDAY: [{name: C1}, {name: C2}, {name: C3}, {name: C4}]
  PROSTATE:
    MONDAY: [{name: D1}, {name: D2}, {name: D3}, {name: D4}]
    WEDNESDAY: [{name: E1}, {name: E2}, {name: E3}, {name: E4}]
    FRIDAY: [{name: F1}, {name: F2}, {name: F3}, {name: F4}]
`

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalogYAML), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	r, ok := cat.Routine(CohortBreast, Wednesday)
	if !ok {
		t.Fatal("breast wednesday missing")
	}
	if r[1].Name != "B2" || !r[1].UpperBodyPress {
		t.Errorf("slot 2 = %+v", r[1])
	}
	if cat.Intensity(Friday) != "50%" {
		t.Errorf("Intensity(Friday) = %q", cat.Intensity(Friday))
	}
	if cat.Intensity(Sunday) != PassiveMonitoring {
		t.Errorf("Intensity(Sunday) = %q", cat.Intensity(Sunday))
	}
}

func TestParseCatalogRejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
	}{
		{"three exercises", func(s string) string {
			return strings.Replace(s, "[{name: F1}, {name: F2}, {name: F3}, {name: F4}]", "[{name: F1}, {name: F2}, {name: F3}]", 1)
		}},
		{"missing training day", func(s string) string {
			return strings.Replace(s, "    FRIDAY: [{name: F1}, {name: F2}, {name: F3}, {name: F4}]\n", "", 1)
		}},
		{"non-training day", func(s string) string {
			return strings.Replace(s, "    MONDAY: [{name: D1}", "    TUESDAY: [{name: X}, {name: X}, {name: X}, {name: X}]\n    MONDAY: [{name: D1}", 1)
		}},
		{"unknown cohort", func(s string) string {
			return strings.Replace(s, "  PROSTATE:", "  LUNG:", 1)
		}},
		{"missing intensity", func(s string) string {
			return strings.Replace(s, "  FRIDAY: \"50%\"\n", "", 1)
		}},
		{"empty name", func(s string) string {
			return strings.Replace(s, "{name: A3}", "{name: \"\"}", 1)
		}},
		{"not yaml", func(string) string { return "cohorts: [" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.edit(testCatalogYAML)))
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("ParseCatalog() error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestDefaultCatalogIsComplete(t *testing.T) {
	cat := DefaultCatalog()
	if err := cat.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	presses := 0
	for _, cohort := range []Cohort{CohortBreast, CohortProstate} {
		for _, day := range TrainingDays {
			r, _ := cat.Routine(cohort, day)
			for _, e := range r {
				if e.UpperBodyPress {
					presses++
					if cohort != CohortBreast || day != Wednesday || e.Name != "Floor Press (Seguro)" {
						t.Errorf("unexpected upper body press %s/%s %q", cohort, day, e.Name)
					}
				}
			}
		}
	}
	if presses != 1 {
		t.Errorf("found %d flagged exercises, want 1", presses)
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		in   time.Weekday
		want Weekday
	}{
		{time.Sunday, Sunday},
		{time.Monday, Monday},
		{time.Wednesday, Wednesday},
		{time.Saturday, Saturday},
	}
	for _, tt := range tests {
		if got := WeekdayOf(tt.in); got != tt.want {
			t.Errorf("WeekdayOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCohortAndArm(t *testing.T) {
	if c, err := ParseCohort(" mama "); err != nil || c != CohortBreast {
		t.Errorf("ParseCohort(mama) = %v, %v", c, err)
	}
	if c, err := ParseCohort("PROSTATA"); err != nil || c != CohortProstate {
		t.Errorf("ParseCohort(PROSTATA) = %v, %v", c, err)
	}
	if _, err := ParseCohort("LUNG"); !errors.Is(err, ErrUnknownValue) {
		t.Errorf("ParseCohort(LUNG) error = %v", err)
	}
	if a, err := ParseArm(""); err != nil || a != ArmExperimental {
		t.Errorf("ParseArm(\"\") = %v, %v", a, err)
	}
	if a, err := ParseArm("control"); err != nil || a != ArmControl {
		t.Errorf("ParseArm(control) = %v, %v", a, err)
	}
	if _, err := ParseArm("PLACEBO"); !errors.Is(err, ErrUnknownValue) {
		t.Errorf("ParseArm(PLACEBO) error = %v", err)
	}
}

func TestExampleCatalogMatchesDefault(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join("..", "..", "..", "config", "catalog.example.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	def := DefaultCatalog()
	for _, cohort := range []Cohort{CohortBreast, CohortProstate} {
		for _, day := range TrainingDays {
			got, _ := cat.Routine(cohort, day)
			want, _ := def.Routine(cohort, day)
			if got != want {
				t.Errorf("%s/%s = %v, want %v", cohort, day, got, want)
			}
		}
	}
	for _, day := range TrainingDays {
		if cat.Intensity(day) != def.Intensity(day) {
			t.Errorf("Intensity(%s) = %q, want %q", day, cat.Intensity(day), def.Intensity(day))
		}
	}
}
