package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/validity"
)

// validityResolver materializes the effective validity of an item,
// walking the fallback chain: explicit segments, traffic-period
// calendar, scalar start/end window, timetable-year bounds of the
// owning order. The first source that yields a result wins.
type validityResolver struct {
	periods repository.TrafficPeriodRepo
	years   repository.TimetableYearRepo
}

func newValidityResolver(periods repository.TrafficPeriodRepo, years repository.TimetableYearRepo) *validityResolver {
	return &validityResolver{periods: periods, years: years}
}

// Resolve returns the item's effective validity segments, normalized.
// A non-nil empty slice (zero operating days) is returned as-is: it is
// an explicit statement, not a missing value.
func (r *validityResolver) Resolve(ctx context.Context, order *domain.Order, item *domain.OrderItem) ([]domain.ValiditySegment, error) {
	if item.Validity != nil {
		return validity.Normalize(item.Validity), nil
	}

	if item.TrafficPeriodID != nil {
		period, err := r.periods.GetByID(ctx, *item.TrafficPeriodID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("resolving traffic period: %w", err)
			}
			// Dangling calendar link: fall through to the next source.
		} else if dates := period.OperatingDates(); len(dates) > 0 {
			return validity.FromDates(dates), nil
		}
	}

	if item.Start != nil && item.End != nil {
		seg := domain.NewSegment(*item.Start, *item.End)
		if seg.Valid() {
			return []domain.ValiditySegment{seg}, nil
		}
	}

	if order != nil && order.TimetableYearLabel != "" {
		year, err := r.years.GetByLabel(ctx, order.TimetableYearLabel)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("resolving timetable year: %w", err)
			}
		} else {
			return []domain.ValiditySegment{year.Bounds()}, nil
		}
	}

	return []domain.ValiditySegment{}, nil
}

// YearBounds resolves the timetable-year window an item's calendar
// belongs to, used to widen a split target's working validity when an
// explicit segment falls outside its materialized days. Resolution
// order: the traffic period's year label, the order's year label, then
// the year containing the item's effective span.
func (r *validityResolver) YearBounds(ctx context.Context, order *domain.Order, item *domain.OrderItem, effective []domain.ValiditySegment) (domain.ValiditySegment, bool) {
	if item.TrafficPeriodID != nil {
		if period, err := r.periods.GetByID(ctx, *item.TrafficPeriodID); err == nil && period.TimetableYearLabel != "" {
			if year, err := r.years.GetByLabel(ctx, period.TimetableYearLabel); err == nil {
				return year.Bounds(), true
			}
		}
	}
	if order != nil && order.TimetableYearLabel != "" {
		if year, err := r.years.GetByLabel(ctx, order.TimetableYearLabel); err == nil {
			return year.Bounds(), true
		}
	}
	if span, ok := validity.Span(effective); ok {
		if year, err := r.years.GetByDate(ctx, span.Start); err == nil {
			return year.Bounds(), true
		}
	}
	return domain.ValiditySegment{}, false
}
