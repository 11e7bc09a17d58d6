package triage

import "fmt"

// AlertLevel is the three-level risk category of a morning report.
// The zero value means no report has been classified yet.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertGreen
	AlertYellow
	AlertRed
)

var alertNames = map[AlertLevel]string{
	AlertGreen:  "GREEN",
	AlertYellow: "YELLOW",
	AlertRed:    "RED",
}

func (a AlertLevel) String() string {
	if s, ok := alertNames[a]; ok {
		return s
	}
	return "NONE"
}

// Valid reports whether a is one of the three classified levels.
func (a AlertLevel) Valid() bool {
	_, ok := alertNames[a]
	return ok
}

// ParseAlert converts the stored text form back into an AlertLevel.
// An empty string maps to AlertNone.
func ParseAlert(s string) (AlertLevel, error) {
	switch s {
	case "":
		return AlertNone, nil
	case "GREEN":
		return AlertGreen, nil
	case "YELLOW":
		return AlertYellow, nil
	case "RED":
		return AlertRed, nil
	}
	return AlertNone, fmt.Errorf("%w: unknown alert level %q", ErrInvalidInput, s)
}

func (a AlertLevel) MarshalText() ([]byte, error) {
	if a == AlertNone {
		return []byte(""), nil
	}
	return []byte(a.String()), nil
}

func (a *AlertLevel) UnmarshalText(b []byte) error {
	v, err := ParseAlert(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
