package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/railorder/internal/contract"
	"github.com/alexanderramin/railorder/internal/db"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/validity"
	"github.com/alexanderramin/railorder/internal/version"
)

type splitService struct {
	orders   repository.OrderRepo
	items    repository.OrderItemRepo
	plans    repository.TrainPlanRepo
	resolver *validityResolver
	sync     CalendarSyncService
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewSplitService(
	orders repository.OrderRepo,
	items repository.OrderItemRepo,
	periods repository.TrafficPeriodRepo,
	years repository.TimetableYearRepo,
	plans repository.TrainPlanRepo,
	sync CalendarSyncService,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) SplitService {
	return &splitService{
		orders:   orders,
		items:    items,
		plans:    plans,
		resolver: newValidityResolver(periods, years),
		sync:     sync,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Split carves a date range (or explicit segment set) out of an item's
// validity into a new child item. The whole item collection of the
// order is renormalized and replaced in one transaction; the calendar
// exclusion push happens after commit and its failure is surfaced on
// the result instead of rolling back.
func (s *splitService) Split(ctx context.Context, req contract.SplitRequest) (*contract.SplitResult, error) {
	started := time.Now()
	result, err := s.split(ctx, req)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "split_order_item",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		StartedAt: started,
		Fields: map[string]any{
			"order_id": req.OrderID,
			"item_id":  req.ItemID,
		},
	})
	return result, err
}

func (s *splitService) split(ctx context.Context, req contract.SplitRequest) (*contract.SplitResult, error) {
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &contract.SplitError{Code: contract.SplitErrNotFound,
				Message: fmt.Sprintf("order %s does not exist", req.OrderID)}
		}
		return nil, err
	}

	items, err := s.items.ListByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	target := findItem(items, req.ItemID)
	if target == nil {
		return nil, &contract.SplitError{Code: contract.SplitErrNotFound,
			Message: fmt.Sprintf("item %s does not exist in order %s", req.ItemID, req.OrderID)}
	}

	effective, err := s.resolver.Resolve(ctx, order, target)
	if err != nil {
		return nil, err
	}

	retained, extracted, err := s.carve(ctx, req, order, target, effective)
	if err != nil {
		// Days missing from the parent's validity may have already moved
		// to one of its children. That is a conflict, not a miss: report
		// which version owns the requested days.
		var splitErr *contract.SplitError
		if errors.As(err, &splitErr) && splitErr.Code == contract.SplitErrNoOverlap {
			if conflict := s.checkSiblingConflict(ctx, order, items, target, requestedSegments(req)); conflict != nil {
				return nil, conflict
			}
		}
		return nil, err
	}

	// A day may only belong to one version at a time: the extracted
	// range must not touch any existing child of the target.
	if err := s.checkSiblingConflict(ctx, order, items, target, extracted); err != nil {
		return nil, err
	}

	child, err := s.buildChild(ctx, target, extracted, req.Patch)
	if err != nil {
		return nil, err
	}

	// Shrink the original. Its validity becomes explicit even when it
	// was previously calendar-derived: the split result is authoritative.
	updated := target.Clone()
	updated.Validity = retained
	updated.ChildItemIDs = append(updated.ChildItemIDs, child.ID)
	updated.UpdatedAt = time.Now().UTC()

	next := make([]*domain.OrderItem, 0, len(items)+1)
	for _, item := range items {
		if item.ID == target.ID {
			next = append(next, updated)
			continue
		}
		next = append(next, item)
	}
	next = append(next, child)
	next = version.NormalizeItems(next)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteOrderItemRepo(tx)
		return txItems.ReplaceForOrder(ctx, req.OrderID, next)
	})
	if err != nil {
		return nil, fmt.Errorf("replacing item collection: %w", err)
	}

	result := &contract.SplitResult{
		Created:  findItem(next, child.ID),
		Original: findItem(next, target.ID),
	}

	// Post-commit calendar push: the parent's calendar must no longer
	// claim the days that moved to the child. Failure is non-fatal.
	if target.TrafficPeriodID != nil {
		result.SyncFailure = s.sync.PushExclusions(ctx, *target.TrafficPeriodID, extracted)
	}
	return result, nil
}

// carve computes the retained/extracted pair for the request, applying
// the year-widening retry for explicit segment sets.
func (s *splitService) carve(ctx context.Context, req contract.SplitRequest, order *domain.Order, target *domain.OrderItem, effective []domain.ValiditySegment) (retained, extracted []domain.ValiditySegment, err error) {
	if len(req.Segments) > 0 {
		wanted := validity.Normalize(req.Segments)
		if len(wanted) == 0 {
			return nil, nil, &contract.SplitError{Code: contract.SplitErrInvalidRange,
				Message: "explicit segments are empty or malformed"}
		}
		if !validity.Covers(effective, wanted) {
			// The requested days are outside the item's materialized
			// validity. Retry against the managed timetable year:
			// splitting into a nominally inactive part of the planning
			// year is legal. The widening only relaxes the coverage
			// check; the parent still retains its original days minus
			// the extracted ones.
			bounds, ok := s.resolver.YearBounds(ctx, order, target, effective)
			if !ok || !validity.Covers([]domain.ValiditySegment{bounds}, wanted) {
				span, _ := validity.Span(wanted)
				return nil, nil, &contract.SplitError{Code: contract.SplitErrNoOverlap,
					Message: fmt.Sprintf("requested segment %s lies outside the item's validity and its timetable year", span)}
			}
		}
		return validity.Subtract(effective, wanted), wanted, nil
	}

	if req.RangeStart == nil || req.RangeEnd == nil {
		return nil, nil, &contract.SplitError{Code: contract.SplitErrInvalidRange,
			Message: "a date range or explicit segments must be given"}
	}
	start, end := domain.DateOnly(*req.RangeStart), domain.DateOnly(*req.RangeEnd)
	if start.After(end) {
		return nil, nil, &contract.SplitError{Code: contract.SplitErrInvalidRange,
			Message: fmt.Sprintf("range start %s is after range end %s",
				start.Format(domain.DateLayout), end.Format(domain.DateLayout))}
	}

	retained, extracted = validity.SplitAtRange(effective, start, end)
	if len(extracted) == 0 {
		return nil, nil, &contract.SplitError{Code: contract.SplitErrNoOverlap,
			Message: fmt.Sprintf("selected days %s..%s do not intersect this item",
				start.Format(domain.DateLayout), end.Format(domain.DateLayout))}
	}
	return retained, extracted, nil
}

// requestedSegments rebuilds the raw segment set the caller asked for,
// independent of the target's own validity. carve has already rejected
// malformed requests by the time this runs.
func requestedSegments(req contract.SplitRequest) []domain.ValiditySegment {
	if len(req.Segments) > 0 {
		return validity.Normalize(req.Segments)
	}
	if req.RangeStart == nil || req.RangeEnd == nil {
		return nil
	}
	return []domain.ValiditySegment{{
		Start: domain.DateOnly(*req.RangeStart),
		End:   domain.DateOnly(*req.RangeEnd),
	}}
}

// checkSiblingConflict verifies the extracted range against the
// resolved validity of every existing child of the target.
func (s *splitService) checkSiblingConflict(ctx context.Context, order *domain.Order, items []*domain.OrderItem, target *domain.OrderItem, extracted []domain.ValiditySegment) error {
	for _, item := range items {
		if item.ParentItemID == nil || *item.ParentItemID != target.ID {
			continue
		}
		sibling, err := s.resolver.Resolve(ctx, order, item)
		if err != nil {
			return err
		}
		overlap := validity.Intersect(sibling, extracted)
		if len(overlap) > 0 {
			span, _ := validity.Span(overlap)
			return &contract.SplitError{Code: contract.SplitErrSiblingConflict,
				Message: fmt.Sprintf("days %s already belong to version %s", span, item.VersionLabel())}
		}
	}
	return nil
}

// buildChild clones the target into the new child item, applies the
// caller's patch and strips fields that must not be inherited verbatim:
// the train-plan link (a plan is exclusively owned by one item), the
// business-process links, and the calendar link unless the patch
// supplies one.
func (s *splitService) buildChild(ctx context.Context, target *domain.OrderItem, extracted []domain.ValiditySegment, patch *contract.ItemPatch) (*domain.OrderItem, error) {
	now := time.Now().UTC()
	child := target.Clone()
	child.ID = uuid.New().String()
	child.Validity = extracted
	parentID := target.ID
	child.ParentItemID = &parentID
	child.ChildItemIDs = []string{}
	child.VersionPath = nil
	child.TrainPlanID = nil
	child.TrafficPeriodID = nil
	child.ProcessLinkIDs = nil
	child.GeneratedRefID = nil
	child.MergeStatus = domain.MergeNone
	child.MergeTargetID = nil
	child.CreatedAt = now
	child.UpdatedAt = now

	patch.Apply(child)

	// A relinked plan dictates the child's scalar window.
	if patch != nil && patch.TrainPlanID != nil {
		plan, err := s.plans.GetByID(ctx, *patch.TrainPlanID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &contract.SplitError{Code: contract.SplitErrNotFound,
					Message: fmt.Sprintf("train plan %s does not exist", *patch.TrainPlanID)}
			}
			return nil, err
		}
		child.Start = plan.FirstRunDate
		child.End = plan.LastRunDate
	}
	return child, nil
}

func findItem(items []*domain.OrderItem, id string) *domain.OrderItem {
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	return nil
}
