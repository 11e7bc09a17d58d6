package prescription

import "fmt"

// LymphedemaLoadLimitKg is the upper-body press load above which breast
// cohort sessions are flagged for review.
const LymphedemaLoadLimitKg = 25.0

// Warning is a clinical advisory attached to a recorded session. It never
// blocks saving.
type Warning struct {
	Code     string  `json:"code"`
	Slot     int     `json:"slot"`
	Exercise string  `json:"exercise"`
	LoadKg   float64 `json:"load_kg"`
	Message  string  `json:"message"`
}

const WarningLymphedema = "LYMPHEDEMA_RISK"

// CheckLymphedema flags upper-body press loads above the limit for the
// breast cohort. exercises and loads are matched by slot.
func CheckLymphedema(cohort Cohort, exercises []Exercise, loads []float64) []Warning {
	if cohort != CohortBreast {
		return nil
	}

	var out []Warning
	for i, e := range exercises {
		if i >= len(loads) {
			break
		}
		if e.UpperBodyPress && loads[i] > LymphedemaLoadLimitKg {
			out = append(out, Warning{
				Code:     WarningLymphedema,
				Slot:     i + 1,
				Exercise: e.Name,
				LoadKg:   loads[i],
				Message: fmt.Sprintf("La carga en tren superior (%.1f kg en %s) podría presentar riesgo de linfedema. Verifique.",
					loads[i], e.Name),
			})
		}
	}
	return out
}
