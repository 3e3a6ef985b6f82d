package contract

import "fmt"

// CollaboratorError wraps a failed call to an external collaborator
// (traffic-period calendar, train-plan service). When it occurs after
// the in-memory commit it is surfaced on the result instead of failing
// the operation: the item tree is the source of truth and the caller
// reconciles the collaborator later.
type CollaboratorError struct {
	System string
	Op     string
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("COLLABORATOR_FAILURE: %s %s: %v", e.System, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
