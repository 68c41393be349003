package schedule

import (
	"errors"
	"strings"
	"time"
)

type Unit string

const (
	Day   Unit = "day"
	Week  Unit = "week"
	Month Unit = "month"
	Year  Unit = "year"
)

var ErrInvalidUnit = errors.New("unit must be one of day, week, month, year")

// ParseUnit normalizes and validates a cadence unit coming from a request.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case Day, Week, Month, Year:
		return u, nil
	default:
		return "", ErrInvalidUnit
	}
}

func (u Unit) Valid() bool {
	_, err := ParseUnit(string(u))
	return err == nil
}

// Next advances base by everyN units. Month and year steps clamp to the last
// day of the target month instead of rolling into the following month, so
// Jan 31 + 1 month is the last day of February.
//
// everyN and unit are expected to be validated by the caller.
func Next(base time.Time, everyN int, unit Unit) time.Time {
	switch unit {
	case Day:
		return base.AddDate(0, 0, everyN)
	case Week:
		return base.AddDate(0, 0, everyN*7)
	case Month:
		return addMonthsClamped(base, everyN)
	case Year:
		return addMonthsClamped(base, everyN*12)
	}
	return base
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	// day 1 never overflows, so this lands in the right month
	first := time.Date(y, m+time.Month(months), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
