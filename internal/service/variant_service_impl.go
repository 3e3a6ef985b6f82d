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
	"github.com/alexanderramin/railorder/internal/version"
)

type variantService struct {
	orders   repository.OrderRepo
	items    repository.OrderItemRepo
	plans    repository.TrainPlanRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewVariantService(
	orders repository.OrderRepo,
	items repository.OrderItemRepo,
	plans repository.TrainPlanRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) VariantService {
	return &variantService{
		orders:   orders,
		items:    items,
		plans:    plans,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Branch clones a productive item into a new open simulation variant.
// The simulation gets its own clone of the base's train plan so edits
// never leak into the productive timetable.
func (s *variantService) Branch(ctx context.Context, orderID, itemID string) (*contract.BranchResult, error) {
	started := time.Now()
	result, err := s.branch(ctx, orderID, itemID)
	s.observe(ctx, "variant_branch", started, err, orderID, itemID)
	return result, err
}

func (s *variantService) branch(ctx context.Context, orderID, itemID string) (*contract.BranchResult, error) {
	items, base, err := s.load(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if base.IsSimulation() {
		return nil, &contract.VariantError{Code: contract.VariantErrIllegalTransition,
			Message: fmt.Sprintf("item %s is already a simulation; nested branching is not allowed", itemID)}
	}

	now := time.Now().UTC()
	sim := base.Clone()
	sim.ID = uuid.New().String()
	sim.VariantType = domain.VariantSimulation
	baseID := base.ID
	sim.VariantOfItemID = &baseID
	group := base.EffectiveGroupID()
	sim.VariantGroupID = &group
	sim.MergeStatus = domain.MergeOpen
	sim.MergeTargetID = nil
	sim.ChildItemIDs = []string{}
	sim.VersionPath = nil
	sim.CreatedAt = now
	sim.UpdatedAt = now

	// Clone the plan before touching the item collection so a plan
	// failure aborts the branch cleanly.
	if base.TrainPlanID != nil {
		plan, err := s.plans.CreateVariant(ctx, *base.TrainPlanID,
			domain.VariantSimulation, fmt.Sprintf("%s (simulation)", base.Title))
		if err != nil {
			return nil, &contract.CollaboratorError{System: "train-plan", Op: "create-variant", Err: err}
		}
		sim.TrainPlanID = &plan.ID
	}

	updatedBase := base.Clone()
	if updatedBase.VariantGroupID == nil {
		updatedBase.VariantGroupID = &group
	}
	updatedBase.UpdatedAt = now

	next := replaceItem(items, updatedBase)
	next = append(next, sim)
	next = version.NormalizeItems(next)

	if err := s.replace(ctx, orderID, next); err != nil {
		return nil, err
	}
	return &contract.BranchResult{
		Simulation: findItem(next, sim.ID),
		Base:       findItem(next, base.ID),
	}, nil
}

// Promote flips a simulation to productive. Legal only while the
// simulation's plan is still pre-publication; every other productive
// item in the group is demoted to a simulation pointing at the newly
// promoted one.
func (s *variantService) Promote(ctx context.Context, orderID, itemID string) (*contract.PromoteResult, error) {
	started := time.Now()
	result, err := s.promote(ctx, orderID, itemID)
	s.observe(ctx, "variant_promote", started, err, orderID, itemID)
	return result, err
}

func (s *variantService) promote(ctx context.Context, orderID, itemID string) (*contract.PromoteResult, error) {
	items, candidate, err := s.load(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if !candidate.IsSimulation() {
		return nil, &contract.VariantError{Code: contract.VariantErrIllegalTransition,
			Message: fmt.Sprintf("item %s is already productive", itemID)}
	}
	if err := s.requirePrePublication(ctx, candidate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := candidate.EffectiveGroupID()

	promoted := candidate.Clone()
	promoted.VariantType = domain.VariantProductive
	promoted.VariantOfItemID = nil
	promoted.MergeStatus = domain.MergeNone
	promoted.UpdatedAt = now

	var demoted []*domain.OrderItem
	next := make([]*domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item.ID == candidate.ID {
			next = append(next, promoted)
			continue
		}
		if item.VariantType == domain.VariantProductive && item.EffectiveGroupID() == group {
			d := item.Clone()
			d.VariantType = domain.VariantSimulation
			promotedID := promoted.ID
			d.VariantOfItemID = &promotedID
			d.VariantGroupID = &group
			d.MergeStatus = domain.MergeOpen
			d.UpdatedAt = now
			demoted = append(demoted, d)
			next = append(next, d)
			continue
		}
		next = append(next, item)
	}
	next = version.NormalizeItems(next)

	if err := s.replace(ctx, orderID, next); err != nil {
		return nil, err
	}

	result := &contract.PromoteResult{Promoted: findItem(next, promoted.ID)}
	for _, d := range demoted {
		result.Demoted = append(result.Demoted, findItem(next, d.ID))
	}
	return result, nil
}

// Merge reconciles a simulation into its productive lineage. Outcome
// depends on the group's productive base: none (created), base still
// pre-publication (updated in place), base already published (a
// modification child is created under it).
func (s *variantService) Merge(ctx context.Context, orderID, itemID string) (*contract.MergeResult, error) {
	started := time.Now()
	result, err := s.merge(ctx, orderID, itemID)
	s.observe(ctx, "variant_merge", started, err, orderID, itemID)
	return result, err
}

func (s *variantService) merge(ctx context.Context, orderID, itemID string) (*contract.MergeResult, error) {
	items, sim, err := s.load(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if !sim.IsSimulation() {
		return nil, &contract.VariantError{Code: contract.VariantErrIllegalTransition,
			Message: fmt.Sprintf("item %s is not a simulation", itemID)}
	}
	if sim.MergeStatus != domain.MergeOpen {
		return nil, &contract.VariantError{Code: contract.VariantErrIllegalTransition,
			Message: fmt.Sprintf("simulation %s has already been merged (%s)", itemID, sim.MergeStatus)}
	}

	group := sim.EffectiveGroupID()
	base := findProductiveBase(items, group, sim.ID)

	switch {
	case base == nil:
		return s.mergeAsCreated(ctx, orderID, items, sim)
	default:
		pre, err := s.basePrePublication(ctx, base)
		if err != nil {
			return nil, err
		}
		if pre {
			return s.mergeAsUpdated(ctx, orderID, items, sim, base)
		}
		return s.mergeAsModification(ctx, orderID, items, sim, base)
	}
}

// mergeAsCreated copies the simulation as a brand-new productive item.
func (s *variantService) mergeAsCreated(ctx context.Context, orderID string, items []*domain.OrderItem, sim *domain.OrderItem) (*contract.MergeResult, error) {
	now := time.Now().UTC()
	group := sim.EffectiveGroupID()

	target := sim.Clone()
	target.ID = uuid.New().String()
	target.VariantType = domain.VariantProductive
	target.VariantOfItemID = nil
	target.VariantGroupID = &group
	target.MergeStatus = domain.MergeNone
	target.MergeTargetID = nil
	target.ChildItemIDs = []string{}
	target.VersionPath = nil
	target.CreatedAt = now
	target.UpdatedAt = now

	if sim.TrainPlanID != nil {
		plan, err := s.plans.CreateVariant(ctx, *sim.TrainPlanID,
			domain.VariantProductive, fmt.Sprintf("%s (productive)", sim.Title))
		if err != nil {
			return nil, &contract.CollaboratorError{System: "train-plan", Op: "create-variant", Err: err}
		}
		target.TrainPlanID = &plan.ID
	}

	consumed := consumeSimulation(sim, domain.MergeApplied, target.ID, now)

	next := replaceItem(items, consumed)
	next = append(next, target)
	next = version.NormalizeItems(next)
	if err := s.replace(ctx, orderID, next); err != nil {
		return nil, err
	}
	return &contract.MergeResult{
		Outcome:    domain.MergeOutcomeCreated,
		Target:     findItem(next, target.ID),
		Simulation: findItem(next, sim.ID),
	}, nil
}

// mergeAsUpdated overwrites the pre-publication base in place with the
// simulation's content. Field-level merge: the simulation's non-empty
// values win; the base's plan is swapped to a productive clone of the
// simulation's plan.
func (s *variantService) mergeAsUpdated(ctx context.Context, orderID string, items []*domain.OrderItem, sim, base *domain.OrderItem) (*contract.MergeResult, error) {
	now := time.Now().UTC()

	target := base.Clone()
	overlayFields(target, sim)
	target.UpdatedAt = now

	if sim.TrainPlanID != nil {
		plan, err := s.plans.CreateVariant(ctx, *sim.TrainPlanID,
			domain.VariantProductive, fmt.Sprintf("%s (productive)", sim.Title))
		if err != nil {
			return nil, &contract.CollaboratorError{System: "train-plan", Op: "create-variant", Err: err}
		}
		target.TrainPlanID = &plan.ID
	}

	consumed := consumeSimulation(sim, domain.MergeApplied, target.ID, now)

	next := replaceItem(items, target)
	next = replaceItem(next, consumed)
	next = version.NormalizeItems(next)
	if err := s.replace(ctx, orderID, next); err != nil {
		return nil, err
	}
	return &contract.MergeResult{
		Outcome:    domain.MergeOutcomeUpdated,
		Target:     findItem(next, target.ID),
		Simulation: findItem(next, sim.ID),
	}, nil
}

// mergeAsModification leaves the published base untouched and creates a
// modification child under it carrying the simulation's content, so the
// published state stays auditable.
func (s *variantService) mergeAsModification(ctx context.Context, orderID string, items []*domain.OrderItem, sim, base *domain.OrderItem) (*contract.MergeResult, error) {
	now := time.Now().UTC()
	group := sim.EffectiveGroupID()

	target := sim.Clone()
	target.ID = uuid.New().String()
	target.VariantType = domain.VariantProductive
	target.VariantOfItemID = nil
	target.VariantGroupID = &group
	baseID := base.ID
	target.ParentItemID = &baseID
	target.ChildItemIDs = []string{}
	target.VersionPath = nil
	target.MergeStatus = domain.MergeNone
	target.MergeTargetID = nil
	target.CreatedAt = now
	target.UpdatedAt = now

	if base.TrainPlanID != nil {
		plan, err := s.plans.CreateModification(ctx, *base.TrainPlanID,
			fmt.Sprintf("%s (modification)", base.Title))
		if err != nil {
			return nil, &contract.CollaboratorError{System: "train-plan", Op: "create-modification", Err: err}
		}
		target.TrainPlanID = &plan.ID
		refID := plan.ID
		target.GeneratedRefID = &refID
	}

	consumed := consumeSimulation(sim, domain.MergeProposed, target.ID, now)

	updatedBase := base.Clone()
	updatedBase.ChildItemIDs = append(updatedBase.ChildItemIDs, target.ID)
	updatedBase.UpdatedAt = now

	next := replaceItem(items, updatedBase)
	next = replaceItem(next, consumed)
	next = append(next, target)
	next = version.NormalizeItems(next)
	if err := s.replace(ctx, orderID, next); err != nil {
		return nil, err
	}
	return &contract.MergeResult{
		Outcome:    domain.MergeOutcomeModification,
		Target:     findItem(next, target.ID),
		Simulation: findItem(next, sim.ID),
	}, nil
}

func (s *variantService) load(ctx context.Context, orderID, itemID string) ([]*domain.OrderItem, *domain.OrderItem, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, &contract.VariantError{Code: contract.VariantErrNotFound,
				Message: fmt.Sprintf("order %s does not exist", orderID)}
		}
		return nil, nil, err
	}
	items, err := s.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	item := findItem(items, itemID)
	if item == nil {
		return nil, nil, &contract.VariantError{Code: contract.VariantErrNotFound,
			Message: fmt.Sprintf("item %s does not exist in order %s", itemID, orderID)}
	}
	return items, item, nil
}

func (s *variantService) replace(ctx context.Context, orderID string, next []*domain.OrderItem) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txItems := repository.NewSQLiteOrderItemRepo(tx)
		return txItems.ReplaceForOrder(ctx, orderID, next)
	})
	if err != nil {
		return fmt.Errorf("replacing item collection: %w", err)
	}
	return nil
}

// requirePrePublication checks the candidate's plan phase. Items
// without a plan are treated as pre-publication: nothing has been
// published for them yet.
func (s *variantService) requirePrePublication(ctx context.Context, item *domain.OrderItem) error {
	if item.TrainPlanID == nil {
		return nil
	}
	plan, err := s.plans.GetByID(ctx, *item.TrainPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &contract.VariantError{Code: contract.VariantErrNotFound,
				Message: fmt.Sprintf("train plan %s does not exist", *item.TrainPlanID)}
		}
		return err
	}
	if !plan.Phase.PrePublication() {
		return &contract.VariantError{Code: contract.VariantErrIllegalTransition,
			Message: fmt.Sprintf("plan %s is already %s; only pre-publication plans can be promoted", plan.ID, plan.Phase)}
	}
	return nil
}

func (s *variantService) basePrePublication(ctx context.Context, base *domain.OrderItem) (bool, error) {
	if base.TrainPlanID == nil {
		return true, nil
	}
	plan, err := s.plans.GetByID(ctx, *base.TrainPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return plan.Phase.PrePublication(), nil
}

func (s *variantService) observe(ctx context.Context, name string, started time.Time, err error, orderID, itemID string) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		StartedAt: started,
		Fields: map[string]any{
			"order_id": orderID,
			"item_id":  itemID,
		},
	})
}

// findProductiveBase locates the productive item of a variant group,
// skipping the merging simulation itself.
func findProductiveBase(items []*domain.OrderItem, group, excludeID string) *domain.OrderItem {
	for _, item := range items {
		if item.ID == excludeID {
			continue
		}
		if item.VariantType == domain.VariantProductive && item.EffectiveGroupID() == group {
			return item
		}
	}
	return nil
}

// consumeSimulation marks the merged simulation without deleting it.
func consumeSimulation(sim *domain.OrderItem, status domain.MergeStatus, targetID string, now time.Time) *domain.OrderItem {
	out := sim.Clone()
	out.MergeStatus = status
	out.MergeTargetID = &targetID
	out.UpdatedAt = now
	return out
}

// overlayFields performs the field-level merge for the updated outcome:
// the simulation's non-empty values overwrite the base's. Identity,
// tree position and variant bookkeeping stay with the base.
func overlayFields(base, sim *domain.OrderItem) {
	if sim.Title != "" {
		base.Title = sim.Title
	}
	if sim.Start != nil {
		v := *sim.Start
		base.Start = &v
	}
	if sim.End != nil {
		v := *sim.End
		base.End = &v
	}
	if sim.Validity != nil {
		base.Validity = domain.CloneSegments(sim.Validity)
	}
	if sim.TrafficPeriodID != nil {
		v := *sim.TrafficPeriodID
		base.TrafficPeriodID = &v
	}
	if len(sim.ProcessLinkIDs) > 0 {
		base.ProcessLinkIDs = append([]string{}, sim.ProcessLinkIDs...)
	}
	if len(sim.Tags) > 0 {
		base.Tags = append([]string{}, sim.Tags...)
	}
}

// replaceItem swaps the entry with updated's ID in a copied list.
func replaceItem(items []*domain.OrderItem, updated *domain.OrderItem) []*domain.OrderItem {
	next := make([]*domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item.ID == updated.ID {
			next = append(next, updated)
			continue
		}
		next = append(next, item)
	}
	return next
}
