// Package validity implements the pure segment algebra underlying
// order-item splitting: normalization, subtraction, range extraction
// and coverage checks over inclusive calendar-date ranges.
//
// All functions are total and stateless. Inputs are never mutated;
// results are freshly allocated, sorted ascending by start date and
// pairwise non-overlapping.
package validity

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
)

// MaxExpandDays caps date-list materialization. Three timetable years
// is more than any legal item validity; anything larger is treated as
// malformed input rather than expanded.
const MaxExpandDays = 1096

// Normalize merges touching and overlapping ranges, drops empty ones
// and sorts the result ascending. Idempotent.
func Normalize(segs []domain.ValiditySegment) []domain.ValiditySegment {
	var work []domain.ValiditySegment
	for _, s := range segs {
		s = domain.NewSegment(s.Start, s.End)
		if s.Valid() {
			work = append(work, s)
		}
	}
	if len(work) == 0 {
		return []domain.ValiditySegment{}
	}
	sort.Slice(work, func(i, j int) bool { return work[i].Start.Before(work[j].Start) })

	out := []domain.ValiditySegment{work[0]}
	for _, s := range work[1:] {
		last := &out[len(out)-1]
		// Merge when overlapping or directly adjacent.
		if !s.Start.After(domain.NextDay(last.End)) {
			if s.End.After(last.End) {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Overlaps reports whether two segments share at least one day.
func Overlaps(a, b domain.ValiditySegment) bool {
	return !(a.End.Before(b.Start) || a.Start.After(b.End))
}

// Intersect returns the days covered by both base and other, normalized.
func Intersect(base, other []domain.ValiditySegment) []domain.ValiditySegment {
	var out []domain.ValiditySegment
	for _, b := range Normalize(base) {
		for _, o := range Normalize(other) {
			if !Overlaps(b, o) {
				continue
			}
			start := b.Start
			if o.Start.After(start) {
				start = o.Start
			}
			end := b.End
			if o.End.Before(end) {
				end = o.End
			}
			out = append(out, domain.ValiditySegment{Start: start, End: end})
		}
	}
	return Normalize(out)
}

// Subtract removes toRemove from base. A partially covered base segment
// is split into up to two remainder segments.
func Subtract(base, toRemove []domain.ValiditySegment) []domain.ValiditySegment {
	result := Normalize(base)
	for _, r := range Normalize(toRemove) {
		var next []domain.ValiditySegment
		for _, b := range result {
			if !Overlaps(b, r) {
				next = append(next, b)
				continue
			}
			if r.Start.After(b.Start) {
				next = append(next, domain.ValiditySegment{Start: b.Start, End: domain.PrevDay(r.Start)})
			}
			if r.End.Before(b.End) {
				next = append(next, domain.ValiditySegment{Start: domain.NextDay(r.End), End: b.End})
			}
		}
		result = next
	}
	return Normalize(result)
}

// SplitAtRange clips [rangeStart, rangeEnd] against base. extracted is
// the intersection; retained is base minus extracted. An empty
// extracted means the requested range does not touch base at all —
// callers must treat that as a no-overlap condition, not as a valid
// empty result.
func SplitAtRange(base []domain.ValiditySegment, rangeStart, rangeEnd time.Time) (retained, extracted []domain.ValiditySegment) {
	window := []domain.ValiditySegment{domain.NewSegment(rangeStart, rangeEnd)}
	extracted = Intersect(base, window)
	retained = Subtract(base, extracted)
	return retained, extracted
}

// Covers reports whether every day of candidate is covered by segs.
// An empty candidate is trivially covered.
func Covers(segs, candidate []domain.ValiditySegment) bool {
	return len(Subtract(candidate, segs)) == 0
}

// ContainsDate reports whether d falls inside any segment.
func ContainsDate(segs []domain.ValiditySegment, d time.Time) bool {
	for _, s := range segs {
		if s.ContainsDate(d) {
			return true
		}
	}
	return false
}

// TotalDays returns the day count of the normalized union of segs.
func TotalDays(segs []domain.ValiditySegment) int {
	total := 0
	for _, s := range Normalize(segs) {
		total += s.Days()
	}
	return total
}

// Span returns the hull from the earliest start to the latest end.
// ok is false for an empty set.
func Span(segs []domain.ValiditySegment) (domain.ValiditySegment, bool) {
	norm := Normalize(segs)
	if len(norm) == 0 {
		return domain.ValiditySegment{}, false
	}
	return domain.ValiditySegment{Start: norm[0].Start, End: norm[len(norm)-1].End}, true
}

// ExpandToDates materializes every calendar day in the union of segs,
// sorted ascending. Fails when the union exceeds MaxExpandDays to avoid
// unbounded allocation on malformed multi-year ranges.
func ExpandToDates(segs []domain.ValiditySegment) ([]time.Time, error) {
	norm := Normalize(segs)
	if n := TotalDays(norm); n > MaxExpandDays {
		return nil, &ExpansionError{Days: n, Limit: MaxExpandDays}
	}
	var out []time.Time
	for _, s := range norm {
		for d := s.Start; !d.After(s.End); d = domain.NextDay(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// FromDates collapses a set of individual dates into normalized
// segments, merging consecutive days.
func FromDates(dates []time.Time) []domain.ValiditySegment {
	segs := make([]domain.ValiditySegment, 0, len(dates))
	for _, d := range dates {
		day := domain.DateOnly(d)
		segs = append(segs, domain.ValiditySegment{Start: day, End: day})
	}
	return Normalize(segs)
}

// ExpansionError reports a date expansion that exceeded the safety cap.
type ExpansionError struct {
	Days  int
	Limit int
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("validity expansion of %d days exceeds limit of %d", e.Days, e.Limit)
}
