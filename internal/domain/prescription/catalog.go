package prescription

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExercisesPerSession is the fixed number of exercise slots in one session.
const ExercisesPerSession = 4

var ErrInvalidCatalog = errors.New("invalid catalog")

// Exercise is one catalog entry. UpperBodyPress marks pressing movements that
// load the arm on the surgical side and are watched for lymphedema risk.
type Exercise struct {
	Name           string `json:"name" yaml:"name"`
	UpperBodyPress bool   `json:"upper_body_press,omitempty" yaml:"upper_body_press"`
}

// Routine is the ordered exercise list of one session.
type Routine [ExercisesPerSession]Exercise

// Names returns the exercise names in slot order.
func (r Routine) Names() [ExercisesPerSession]string {
	var out [ExercisesPerSession]string
	for i, e := range r {
		out[i] = e.Name
	}
	return out
}

// Catalog is the read-only exercise table keyed by (cohort, weekday), plus
// the intensity label of each training day. Build it once at startup and
// share it; it is never mutated after construction.
type Catalog struct {
	routines  map[Cohort]map[Weekday]Routine
	intensity map[Weekday]string
}

// PassiveMonitoring is the intensity label of non-training days.
const PassiveMonitoring = "Monitoreo Pasivo"

// Routine returns the exercises for cohort on day.
func (c *Catalog) Routine(cohort Cohort, day Weekday) (Routine, bool) {
	r, ok := c.routines[cohort][day]
	return r, ok
}

// Intensity returns the periodisation label for day.
func (c *Catalog) Intensity(day Weekday) string {
	if s, ok := c.intensity[day]; ok {
		return s
	}
	return PassiveMonitoring
}

func ex(name string) Exercise { return Exercise{Name: name} }

// DefaultCatalog returns the built-in three-day periodised program.
func DefaultCatalog() *Catalog {
	return &Catalog{
		routines: map[Cohort]map[Weekday]Routine{
			CohortBreast: {
				Monday:    {ex("Sentadilla Copa (Goblet)"), ex("Remo c/ Mancuerna"), ex("Puente de Glúteos"), ex("Plancha Frontal")},
				Wednesday: {ex("Prensa Piernas 45°"), {Name: "Floor Press (Seguro)", UpperBodyPress: true}, ex("Peso Muerto Rumano"), ex("Pallof Press")},
				Friday:    {ex("Estocadas (Lunges)"), ex("Jalón al Pecho (Polea)"), ex("Extensión Cuádriceps"), ex("Bird-Dog")},
			},
			CohortProstate: {
				Monday:    {ex("Prensa Piernas 45°"), ex("Press Pecho (Máquina)"), ex("Remo Sentado"), ex("Elevación Talones")},
				Wednesday: {ex("Peso Muerto Hexagonal / RDL"), ex("Press Militar Sentado"), ex("Jalón al Pecho"), ex("Caminata de Granjero")},
				Friday:    {ex("Sentadilla Búlgara"), ex("Flexiones / Inclinado"), ex("Remo en TRX / 1 Brazo"), ex("Suelo Pélvico (Kegel)")},
			},
		},
		intensity: map[Weekday]string{
			Monday:    "65% (LUNES - Carga Base)",
			Wednesday: "75% (MIÉRCOLES - Día Pesado)",
			Friday:    "55% (VIERNES - Día Regenerativo)",
		},
	}
}

// ---------------------------------------------------------------------------
// File loading
// ---------------------------------------------------------------------------

type catalogFile struct {
	Intensity map[string]string                `yaml:"intensity"`
	Cohorts   map[string]map[string][]Exercise `yaml:"cohorts"`
}

// LoadCatalog reads a catalog from a YAML file. Every cohort must define every
// training day with exactly four named exercises.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates YAML catalog content.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		routines:  make(map[Cohort]map[Weekday]Routine),
		intensity: make(map[Weekday]string),
	}

	for dayName, label := range f.Intensity {
		day, err := ParseWeekday(dayName)
		if err != nil {
			return nil, fmt.Errorf("%w: intensity: %v", ErrInvalidCatalog, err)
		}
		if !day.IsTrainingDay() {
			return nil, fmt.Errorf("%w: intensity defined for non-training day %s", ErrInvalidCatalog, day)
		}
		c.intensity[day] = label
	}

	for cohortName, days := range f.Cohorts {
		cohort, err := ParseCohort(cohortName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		c.routines[cohort] = make(map[Weekday]Routine, len(days))

		for dayName, list := range days {
			day, err := ParseWeekday(dayName)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, cohort, err)
			}
			if !day.IsTrainingDay() {
				return nil, fmt.Errorf("%w: %s: %s is not a training day", ErrInvalidCatalog, cohort, day)
			}
			if len(list) != ExercisesPerSession {
				return nil, fmt.Errorf("%w: %s/%s has %d exercises, want %d",
					ErrInvalidCatalog, cohort, day, len(list), ExercisesPerSession)
			}
			var r Routine
			for i, e := range list {
				if e.Name == "" {
					return nil, fmt.Errorf("%w: %s/%s slot %d has no name", ErrInvalidCatalog, cohort, day, i+1)
				}
				r[i] = e
			}
			c.routines[cohort][day] = r
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for _, cohort := range []Cohort{CohortBreast, CohortProstate} {
		for _, day := range TrainingDays {
			if _, ok := c.routines[cohort][day]; !ok {
				return fmt.Errorf("%w: missing %s/%s", ErrInvalidCatalog, cohort, day)
			}
		}
	}
	for _, day := range TrainingDays {
		if c.intensity[day] == "" {
			return fmt.Errorf("%w: missing intensity for %s", ErrInvalidCatalog, day)
		}
	}
	return nil
}
