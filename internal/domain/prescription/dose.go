package prescription

import (
	"fmt"

	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
)

// DosePolicy is how much of the prescribed session may be run today.
type DosePolicy int

const (
	DoseFull DosePolicy = iota + 1
	DoseReduced
	DoseBlocked
)

var doseNames = map[DosePolicy]string{
	DoseFull:    "FULL",
	DoseReduced: "REDUCED",
	DoseBlocked: "BLOCKED",
}

func (d DosePolicy) String() string {
	if s, ok := doseNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DosePolicy(%d)", int(d))
}

func (d DosePolicy) MarshalText() ([]byte, error) {
	if _, ok := doseNames[d]; !ok {
		return nil, fmt.Errorf("%w: dose policy %d", ErrUnknownValue, int(d))
	}
	return []byte(d.String()), nil
}

// DoseFor maps a triage alert to a dose policy. A report that was never
// classified gets no dose at all.
func DoseFor(a triage.AlertLevel) (DosePolicy, bool) {
	switch a {
	case triage.AlertGreen:
		return DoseFull, true
	case triage.AlertYellow:
		return DoseReduced, true
	case triage.AlertRed:
		return DoseBlocked, true
	}
	return 0, false
}

// Guidance is the instruction set the supervising trainer applies.
type Guidance struct {
	SetDelta    int      `json:"set_delta"`
	TargetRIR   string   `json:"target_rir,omitempty"`
	LoadAllowed bool     `json:"load_allowed"`
	Title       string   `json:"title"`
	Notes       []string `json:"notes"`
}

// Guidance returns the trainer instructions of d.
func (d DosePolicy) Guidance() Guidance {
	switch d {
	case DoseFull:
		return Guidance{
			SetDelta:    0,
			TargetRIR:   "2-3",
			LoadAllowed: true,
			Title:       "Zona verde (homeostasis)",
			Notes: []string{
				"Dosis completa: realizar todas las series por ejercicio.",
				"Exigencia RIR 2-3: dejar 2 a 3 repeticiones en recámara.",
			},
		}
	case DoseReduced:
		return Guidance{
			SetDelta:    -1,
			TargetRIR:   "4",
			LoadAllowed: true,
			Title:       "Zona amarilla (down-regulation)",
			Notes: []string{
				"Reducir volumen: -1 serie por ejercicio.",
				"Mayor margen de seguridad: RIR 4, terminar lejos del fallo muscular.",
			},
		}
	case DoseBlocked:
		return Guidance{
			LoadAllowed: false,
			Title:       "Zona roja (toxicidad aguda): carga bloqueada",
			Notes:       []string{"Aplicar el protocolo vagal en lugar de la sesión de fuerza."},
		}
	}
	return Guidance{}
}
