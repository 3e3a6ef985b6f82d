package domain

import (
	"fmt"
	"time"
)

// ValiditySegment is an inclusive calendar-date range during which an
// order item's schedule is active. Segment sets attached to an item are
// kept pairwise non-overlapping and sorted ascending by Start.
type ValiditySegment struct {
	Start time.Time
	End   time.Time
}

// NewSegment builds a segment from two UTC-midnight dates.
func NewSegment(start, end time.Time) ValiditySegment {
	return ValiditySegment{Start: DateOnly(start), End: DateOnly(end)}
}

// Valid reports whether the segment covers at least one day.
func (s ValiditySegment) Valid() bool {
	return !s.End.Before(s.Start)
}

// Days returns the inclusive day count of the segment.
func (s ValiditySegment) Days() int {
	return DaysBetween(s.Start, s.End)
}

// ContainsDate reports whether d falls inside the segment.
func (s ValiditySegment) ContainsDate(d time.Time) bool {
	d = DateOnly(d)
	return !d.Before(s.Start) && !d.After(s.End)
}

// String renders the segment as "2025-01-01..2025-01-31". Single-day
// segments render as the bare date.
func (s ValiditySegment) String() string {
	if SameDay(s.Start, s.End) {
		return s.Start.Format(DateLayout)
	}
	return fmt.Sprintf("%s..%s", s.Start.Format(DateLayout), s.End.Format(DateLayout))
}

// CloneSegments returns a deep copy of a segment list, preserving the
// nil / empty distinction (nil means "derive validity elsewhere").
func CloneSegments(segs []ValiditySegment) []ValiditySegment {
	if segs == nil {
		return nil
	}
	out := make([]ValiditySegment, len(segs))
	copy(out, segs)
	return out
}
