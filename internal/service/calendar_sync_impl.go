package service

import (
	"context"
	"time"

	"github.com/alexanderramin/railorder/internal/contract"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/validity"
)

type calendarSyncService struct {
	periods  repository.TrafficPeriodRepo
	observer UseCaseObserver
}

// NewCalendarSyncService creates the one-way exclusion push adapter.
func NewCalendarSyncService(periods repository.TrafficPeriodRepo, observers ...UseCaseObserver) CalendarSyncService {
	return &calendarSyncService{
		periods:  periods,
		observer: useCaseObserverOrNoop(observers),
	}
}

// PushExclusions reports removed validity days to the traffic period as
// exclusion dates. Never reads calendar state back into segments, and
// never returns a fatal error: the caller's mutation is already
// committed, so the failure is wrapped for surfacing and reconciliation.
func (s *calendarSyncService) PushExclusions(ctx context.Context, trafficPeriodID string, removed []domain.ValiditySegment) *contract.CollaboratorError {
	started := time.Now()
	err := s.push(ctx, trafficPeriodID, removed)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "calendar_push_exclusions",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		StartedAt: started,
		Fields: map[string]any{
			"traffic_period_id": trafficPeriodID,
			"segments":          len(removed),
		},
	})
	if err != nil {
		return &contract.CollaboratorError{System: "traffic-period", Op: "add-exclusion-dates", Err: err}
	}
	return nil
}

func (s *calendarSyncService) push(ctx context.Context, trafficPeriodID string, removed []domain.ValiditySegment) error {
	dates, err := validity.ExpandToDates(removed)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		return nil
	}
	return s.periods.AddExclusionDates(ctx, trafficPeriodID, dates)
}
