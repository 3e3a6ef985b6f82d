package domain

import "time"

// DateLayout is the canonical calendar-date format used throughout the
// engine. Items operate at whole-day granularity; all dates are stored
// as UTC midnight.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// MustDate parses a YYYY-MM-DD string and panics on failure. Intended
// for tests and seed data only.
func MustDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DateOnly truncates t to UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar day after t.
func NextDay(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, 1)
}

// PrevDay returns the calendar day before t.
func PrevDay(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, -1)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DaysBetween returns the inclusive day count from start to end.
// Returns 0 when end is before start.
func DaysBetween(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}
