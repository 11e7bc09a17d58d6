// Package clock provides the trial's calendar. All "today" decisions use the
// trial site's time zone, not the server's.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
)

const DefaultTimezone = "America/Montevideo"

// DateLayout is the stored and wire form of a civil date.
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type zoneClock struct {
	loc *time.Location
}

func (c zoneClock) Now() time.Time { return time.Now().In(c.loc) }

// New returns a clock in the named IANA time zone. An empty name selects
// DefaultTimezone.
func New(tz string) (Clock, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return zoneClock{loc: loc}, nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// Fixed always returns t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

// Today is midnight of the current civil date, in the clock's zone.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func Weekday(c Clock) prescription.Weekday {
	return prescription.WeekdayOf(c.Now().Weekday())
}

// DaysBetween counts calendar days from start to today. It is negative when
// start lies in the future. Only the civil dates are compared.
func DaysBetween(start, today time.Time) int {
	sy, sm, sd := start.Date()
	ty, tm, td := today.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(s).Hours() / 24)
}

// ParseDate reads a DateLayout string as a UTC civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
