package domain

type OrderStatus string

const (
	OrderDraft    OrderStatus = "draft"
	OrderActive   OrderStatus = "active"
	OrderClosed   OrderStatus = "closed"
	OrderArchived OrderStatus = "archived"
)

type VariantType string

const (
	VariantProductive VariantType = "productive"
	VariantSimulation VariantType = "simulation"
)

// MergeStatus tracks what happened to a simulation variant after it was
// reconciled into its productive lineage. The zero value means the item
// has never been merged (or is not a simulation at all).
type MergeStatus string

const (
	MergeNone     MergeStatus = ""
	MergeOpen     MergeStatus = "open"
	MergeApplied  MergeStatus = "applied"
	MergeProposed MergeStatus = "proposed"
)

// PlanPhase is the publication lifecycle of a train plan. Promote and
// merge behavior depends on whether the plan is still pre-publication.
type PlanPhase string

const (
	PhaseDraft     PlanPhase = "draft"
	PhaseOrdered   PlanPhase = "ordered"
	PhasePublished PlanPhase = "published"
)

// PrePublication reports whether a plan in this phase may still be
// overwritten in place.
func (p PlanPhase) PrePublication() bool {
	return p == PhaseDraft || p == PhaseOrdered
}

// MergeOutcome names the three possible results of merging a simulation
// into its productive lineage.
type MergeOutcome string

const (
	MergeOutcomeCreated      MergeOutcome = "created"
	MergeOutcomeUpdated      MergeOutcome = "updated"
	MergeOutcomeModification MergeOutcome = "modification"
)
