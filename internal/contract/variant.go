package contract

import "github.com/alexanderramin/railorder/internal/domain"

// BranchResult reports a freshly created simulation variant.
type BranchResult struct {
	Simulation *domain.OrderItem
	Base       *domain.OrderItem
}

// PromoteResult reports a simulation that became productive, plus the
// items that were demoted to simulations in its place.
type PromoteResult struct {
	Promoted *domain.OrderItem
	Demoted  []*domain.OrderItem
}

// MergeResult reports the outcome of reconciling a simulation into its
// productive lineage. Target is the productive item that resulted:
// brand-new (created), overwritten in place (updated), or a new
// modification child under a published base (modification).
type MergeResult struct {
	Outcome    domain.MergeOutcome
	Target     *domain.OrderItem
	Simulation *domain.OrderItem

	SyncFailure *CollaboratorError
}

type VariantErrorCode string

const (
	VariantErrNotFound          VariantErrorCode = "NOT_FOUND"
	VariantErrIllegalTransition VariantErrorCode = "ILLEGAL_VARIANT_TRANSITION"
)

// VariantError is a domain error raised by the variant manager before
// any mutation is committed.
type VariantError struct {
	Code    VariantErrorCode
	Message string
}

func (e *VariantError) Error() string {
	return string(e.Code) + ": " + e.Message
}
