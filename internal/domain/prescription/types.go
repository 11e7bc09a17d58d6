package prescription

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownValue = errors.New("unknown value")

// ---------------------------------------------------------------------------
// Cohort
// ---------------------------------------------------------------------------

// Cohort is the cancer-type group a patient is enrolled in.
type Cohort string

const (
	CohortBreast   Cohort = "BREAST"
	CohortProstate Cohort = "PROSTATE"
)

// ParseCohort accepts the canonical names and the Spanish labels used on
// paper case report forms.
func ParseCohort(s string) (Cohort, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BREAST", "MAMA":
		return CohortBreast, nil
	case "PROSTATE", "PROSTATA", "PRÓSTATA":
		return CohortProstate, nil
	}
	return "", fmt.Errorf("%w: cohort %q", ErrUnknownValue, s)
}

func (c Cohort) Valid() bool {
	return c == CohortBreast || c == CohortProstate
}

// ---------------------------------------------------------------------------
// Trial arm
// ---------------------------------------------------------------------------

type TrialArm string

const (
	ArmControl      TrialArm = "CONTROL"
	ArmExperimental TrialArm = "EXPERIMENTAL"
)

// ParseArm treats an empty value as EXPERIMENTAL, the arm assumed for
// patients registered before randomisation was recorded.
func ParseArm(s string) (TrialArm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EXPERIMENTAL":
		return ArmExperimental, nil
	case "CONTROL":
		return ArmControl, nil
	}
	return "", fmt.Errorf("%w: arm %q", ErrUnknownValue, s)
}

func (a TrialArm) Valid() bool {
	return a == ArmControl || a == ArmExperimental
}

// ---------------------------------------------------------------------------
// Weekday
// ---------------------------------------------------------------------------

// Weekday is a day of the week starting on Monday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

var weekdayLabels = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// TrainingDays are the supervised session days.
var TrainingDays = []Weekday{Monday, Wednesday, Friday}

// WeekdayOf converts a time.Weekday, which starts on Sunday.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

func ParseWeekday(s string) (Weekday, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range weekdayNames {
		if n == up {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: weekday %q", ErrUnknownValue, s)
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Label is the Spanish display name.
func (w Weekday) Label() string {
	if !w.Valid() {
		return ""
	}
	return weekdayLabels[w]
}

func (w Weekday) IsTrainingDay() bool {
	return w == Monday || w == Wednesday || w == Friday
}

func (w Weekday) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: weekday %d", ErrUnknownValue, int(w))
	}
	return []byte(w.String()), nil
}

func (w *Weekday) UnmarshalText(b []byte) error {
	v, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
