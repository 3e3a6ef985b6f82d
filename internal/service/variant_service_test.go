package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/railorder/internal/contract"
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranch_CreatesOpenSimulation(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	plan := testutil.NewTestPlan("Base plan")
	require.NoError(t, stack.plans.Create(ctx, plan))
	base := stack.seedItem(t, o.ID,
		testutil.WithVersionPath(1),
		testutil.WithTrainPlan(plan.ID),
		testutil.WithValidity(domain.ValiditySegment{
			Start: domain.MustDate("2025-01-01"), End: domain.MustDate("2025-01-31")}))

	result, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	sim := result.Simulation
	assert.Equal(t, domain.VariantSimulation, sim.VariantType)
	assert.Equal(t, domain.MergeOpen, sim.MergeStatus)
	require.NotNil(t, sim.VariantOfItemID)
	assert.Equal(t, base.ID, *sim.VariantOfItemID)
	assert.Equal(t, base.ID, sim.EffectiveGroupID())
	// Parallel variant, not a tree child.
	assert.Nil(t, sim.ParentItemID)

	// The simulation got its own plan clone.
	require.NotNil(t, sim.TrainPlanID)
	assert.NotEqual(t, plan.ID, *sim.TrainPlanID)
	simPlan, err := stack.plans.GetByID(ctx, *sim.TrainPlanID)
	require.NoError(t, err)
	assert.Equal(t, domain.VariantSimulation, simPlan.VariantType)
	require.NotNil(t, simPlan.BasePlanID)
	assert.Equal(t, plan.ID, *simPlan.BasePlanID)

	// The base now anchors the group explicitly.
	require.NotNil(t, result.Base.VariantGroupID)
	assert.Equal(t, base.ID, *result.Base.VariantGroupID)
}

func TestBranch_OnSimulation_Illegal(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1))

	first, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	_, err = stack.variant.Branch(ctx, o.ID, first.Simulation.ID)
	var variantErr *contract.VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrIllegalTransition, variantErr.Code)
}

func TestPromote_DemotesOtherProductives(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1))

	branched, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	result, err := stack.variant.Promote(ctx, o.ID, branched.Simulation.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.VariantProductive, result.Promoted.VariantType)
	assert.Nil(t, result.Promoted.VariantOfItemID)
	assert.Equal(t, domain.MergeNone, result.Promoted.MergeStatus)

	require.Len(t, result.Demoted, 1)
	demoted := result.Demoted[0]
	assert.Equal(t, base.ID, demoted.ID)
	assert.Equal(t, domain.VariantSimulation, demoted.VariantType)
	require.NotNil(t, demoted.VariantOfItemID)
	assert.Equal(t, result.Promoted.ID, *demoted.VariantOfItemID)

	// Exactly one productive item remains in the group.
	items, err := stack.items.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	productives := 0
	for _, item := range items {
		if item.VariantType == domain.VariantProductive {
			productives++
		}
	}
	assert.Equal(t, 1, productives)
}

func TestPromote_PublishedPlan_Illegal(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	plan := testutil.NewTestPlan("Base plan")
	require.NoError(t, stack.plans.Create(ctx, plan))
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1), testutil.WithTrainPlan(plan.ID))

	branched, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	// Publish the simulation's cloned plan; promotion is then illegal.
	simPlan, err := stack.plans.GetByID(ctx, *branched.Simulation.TrainPlanID)
	require.NoError(t, err)
	simPlan.Phase = domain.PhasePublished
	require.NoError(t, stack.plans.Update(ctx, simPlan))

	_, err = stack.variant.Promote(ctx, o.ID, branched.Simulation.ID)
	var variantErr *contract.VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrIllegalTransition, variantErr.Code)
}

func TestPromote_ProductiveItem_Illegal(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1))

	_, err := stack.variant.Promote(ctx, o.ID, base.ID)
	var variantErr *contract.VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrIllegalTransition, variantErr.Code)
}

func TestMerge_NoProductiveBase_Created(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	// A lone simulation with a group that has no productive member.
	sim := stack.seedItem(t, o.ID,
		testutil.WithVariant(domain.VariantSimulation),
		testutil.WithVariantOf("long-gone", "group-1"))
	sim.MergeStatus = domain.MergeOpen
	require.NoError(t, stack.items.Update(ctx, sim))

	result, err := stack.variant.Merge(ctx, o.ID, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MergeOutcomeCreated, result.Outcome)

	assert.Equal(t, domain.VariantProductive, result.Target.VariantType)
	assert.NotEqual(t, sim.ID, result.Target.ID)
	assert.Equal(t, "group-1", result.Target.EffectiveGroupID())

	// The simulation is consumed but never deleted.
	assert.Equal(t, domain.MergeApplied, result.Simulation.MergeStatus)
	require.NotNil(t, result.Simulation.MergeTargetID)
	assert.Equal(t, result.Target.ID, *result.Simulation.MergeTargetID)

	items, err := stack.items.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMerge_PrePublicationBase_Updated(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	plan := testutil.NewTestPlan("Base plan", testutil.WithPhase(domain.PhaseOrdered))
	require.NoError(t, stack.plans.Create(ctx, plan))
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1), testutil.WithTrainPlan(plan.ID))

	branched, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	// Edit the simulation.
	sim, err := stack.items.GetByID(ctx, branched.Simulation.ID)
	require.NoError(t, err)
	sim.Title = "Rerouted via Hannover"
	sim.Validity = []domain.ValiditySegment{
		{Start: domain.MustDate("2025-06-01"), End: domain.MustDate("2025-06-30")},
	}
	require.NoError(t, stack.items.Update(ctx, sim))

	result, err := stack.variant.Merge(ctx, o.ID, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MergeOutcomeUpdated, result.Outcome)

	// The base was overwritten in place, same identity.
	assert.Equal(t, base.ID, result.Target.ID)
	assert.Equal(t, "Rerouted via Hannover", result.Target.Title)
	require.Len(t, result.Target.Validity, 1)
	assert.Equal(t, "2025-06-01..2025-06-30", result.Target.Validity[0].String())

	// The base's plan was swapped to a productive clone of the
	// simulation's plan.
	require.NotNil(t, result.Target.TrainPlanID)
	assert.NotEqual(t, plan.ID, *result.Target.TrainPlanID)
	mergedPlan, err := stack.plans.GetByID(ctx, *result.Target.TrainPlanID)
	require.NoError(t, err)
	assert.Equal(t, domain.VariantProductive, mergedPlan.VariantType)

	assert.Equal(t, domain.MergeApplied, result.Simulation.MergeStatus)
}

func TestMerge_PublishedBase_Modification(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	plan := testutil.NewTestPlan("Published plan", testutil.WithPhase(domain.PhasePublished))
	require.NoError(t, stack.plans.Create(ctx, plan))
	base := stack.seedItem(t, o.ID,
		testutil.WithVersionPath(1),
		testutil.WithTrainPlan(plan.ID),
		testutil.WithValidity(domain.ValiditySegment{
			Start: domain.MustDate("2025-01-01"), End: domain.MustDate("2025-12-13")}))

	branched, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	result, err := stack.variant.Merge(ctx, o.ID, branched.Simulation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MergeOutcomeModification, result.Outcome)

	// The published base stays untouched and auditable; the change lands
	// in a new child under it.
	target := result.Target
	assert.NotEqual(t, base.ID, target.ID)
	require.NotNil(t, target.ParentItemID)
	assert.Equal(t, base.ID, *target.ParentItemID)
	assert.Equal(t, []int{1, 1}, target.VersionPath)
	assert.Equal(t, domain.VariantProductive, target.VariantType)

	fetchedBase, err := stack.items.GetByID(ctx, base.ID)
	require.NoError(t, err)
	require.NotNil(t, fetchedBase.TrainPlanID)
	assert.Equal(t, plan.ID, *fetchedBase.TrainPlanID, "published base keeps its plan")

	// A modification plan was derived from the published one.
	require.NotNil(t, target.TrainPlanID)
	modPlan, err := stack.plans.GetByID(ctx, *target.TrainPlanID)
	require.NoError(t, err)
	require.NotNil(t, modPlan.BasePlanID)
	assert.Equal(t, plan.ID, *modPlan.BasePlanID)

	// The proposal is tracked, not applied.
	assert.Equal(t, domain.MergeProposed, result.Simulation.MergeStatus)
	require.NotNil(t, result.Simulation.MergeTargetID)
	assert.Equal(t, target.ID, *result.Simulation.MergeTargetID)
}

func TestMerge_AlreadyMerged_Illegal(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1))

	branched, err := stack.variant.Branch(ctx, o.ID, base.ID)
	require.NoError(t, err)

	_, err = stack.variant.Merge(ctx, o.ID, branched.Simulation.ID)
	require.NoError(t, err)

	_, err = stack.variant.Merge(ctx, o.ID, branched.Simulation.ID)
	var variantErr *contract.VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrIllegalTransition, variantErr.Code)
}

func TestMerge_ProductiveItem_Illegal(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)
	base := stack.seedItem(t, o.ID, testutil.WithVersionPath(1))

	_, err := stack.variant.Merge(ctx, o.ID, base.ID)
	var variantErr *contract.VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrIllegalTransition, variantErr.Code)
}

func TestVariant_NotFound(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	o := stack.seedOrder(t)

	var variantErr *contract.VariantError
	_, err := stack.variant.Branch(ctx, o.ID, "missing")
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrNotFound, variantErr.Code)

	_, err = stack.variant.Branch(ctx, "missing", "missing")
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, contract.VariantErrNotFound, variantErr.Code)
}
