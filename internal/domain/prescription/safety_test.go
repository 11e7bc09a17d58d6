package prescription

import "testing"

func TestCheckLymphedema(t *testing.T) {
	cat := DefaultCatalog()
	breastWed, _ := cat.Routine(CohortBreast, Wednesday)
	breastMon, _ := cat.Routine(CohortBreast, Monday)
	prostateMon, _ := cat.Routine(CohortProstate, Monday)

	tests := []struct {
		name      string
		cohort    Cohort
		routine   Routine
		loads     []float64
		wantWarns int
	}{
		{"breast press over limit", CohortBreast, breastWed, []float64{40, 27.5, 30, 0}, 1},
		{"breast press at limit", CohortBreast, breastWed, []float64{40, 25, 30, 0}, 0},
		{"breast day without press", CohortBreast, breastMon, []float64{50, 50, 50, 50}, 0},
		{"prostate press ignored", CohortProstate, prostateMon, []float64{80, 60, 50, 0}, 0},
		{"short load list", CohortBreast, breastWed, []float64{10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckLymphedema(tt.cohort, tt.routine[:], tt.loads)
			if len(got) != tt.wantWarns {
				t.Fatalf("got %d warnings, want %d: %+v", len(got), tt.wantWarns, got)
			}
			if tt.wantWarns > 0 {
				w := got[0]
				if w.Slot != 2 || w.Code != WarningLymphedema || w.LoadKg != 27.5 {
					t.Errorf("warning = %+v", w)
				}
			}
		})
	}
}

func TestVisits(t *testing.T) {
	m := MonitoringVisit()
	for i, e := range m.Exercises {
		if e != NoExercise || m.Loads[i] != 0 {
			t.Errorf("monitoring slot %d = %q/%v", i+1, e, m.Loads[i])
		}
	}
	if m.Vagal || m.RPE != 0 {
		t.Errorf("monitoring visit = %+v", m)
	}

	v := VagalVisit()
	if v.Exercises[0] != VagalSlotName || v.Exercises[1] != NoExercise || !v.Vagal {
		t.Errorf("vagal visit = %+v", v)
	}

	r, _ := DefaultCatalog().Routine(CohortProstate, Friday)
	tv := TrainingVisit(r, [ExercisesPerSession]float64{20, 0, 15, 0}, 6)
	if tv.Exercises[0] != "Sentadilla Búlgara" || tv.Loads[2] != 15 || tv.RPE != 6 {
		t.Errorf("training visit = %+v", tv)
	}
}

func TestDoseGuidance(t *testing.T) {
	if g := DoseBlocked.Guidance(); g.LoadAllowed || g.TargetRIR != "" {
		t.Errorf("blocked guidance = %+v", g)
	}
	if _, ok := DoseFor(0); ok {
		t.Error("DoseFor(AlertNone) returned a dose")
	}
}
