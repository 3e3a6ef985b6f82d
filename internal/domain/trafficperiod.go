package domain

import (
	"sort"
	"time"
)

// TrafficPeriod is the external calendar definition an order item may be
// backed by. Rules contribute operating days; exclusions remove days
// that were carved out of the item's validity (e.g. by a split). The
// item's segment data is the source of truth — the traffic period is a
// downstream projection kept consistent one-way.
type TrafficPeriod struct {
	ID                 string
	Name               string
	TimetableYearLabel string
	Rules              []TrafficPeriodRule
	ExcludedDates      []time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TrafficPeriodRule is one calendar rule: a validity anchor date plus
// the concrete operating days it contributes.
type TrafficPeriodRule struct {
	ValidityStart time.Time
	IncludedDates []time.Time
}

// OperatingDates returns the sorted union of rule dates minus
// exclusions.
func (p *TrafficPeriod) OperatingDates() []time.Time {
	excluded := make(map[time.Time]bool, len(p.ExcludedDates))
	for _, d := range p.ExcludedDates {
		excluded[DateOnly(d)] = true
	}
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, r := range p.Rules {
		for _, d := range r.IncludedDates {
			day := DateOnly(d)
			if excluded[day] || seen[day] {
				continue
			}
			seen[day] = true
			out = append(out, day)
		}
	}
	sortDates(out)
	return out
}

// Span returns the representative date range of the period: first to
// last operating day. ok is false when the period has no dates left.
func (p *TrafficPeriod) Span() (ValiditySegment, bool) {
	dates := p.OperatingDates()
	if len(dates) == 0 {
		return ValiditySegment{}, false
	}
	return ValiditySegment{Start: dates[0], End: dates[len(dates)-1]}, true
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
