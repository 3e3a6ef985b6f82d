// Package contract defines the request, response and error types of the
// split and variant managers. Error messages are part of the contract:
// they are rendered to users verbatim, so conflict errors must name the
// offending date range.
package contract

import (
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
)

// SplitRequest asks to carve a sub-range of an item's validity into a
// new child item. Either the RangeStart/RangeEnd window or an explicit
// Segments list must be given; Segments wins when both are present.
type SplitRequest struct {
	OrderID string
	ItemID  string

	RangeStart *time.Time
	RangeEnd   *time.Time

	// Segments requests extraction of an explicit segment set instead
	// of a contiguous window. Segments outside the item's current
	// validity are allowed as long as they stay inside the managed
	// timetable year.
	Segments []domain.ValiditySegment

	// Patch is applied to the created child on top of the inherited
	// fields.
	Patch *ItemPatch
}

// SplitResult reports the two items a split produced, re-fetched after
// tree normalization.
type SplitResult struct {
	Created  *domain.OrderItem
	Original *domain.OrderItem

	// SyncFailure is set when the post-commit calendar exclusion push
	// failed. The split itself has been committed; callers should log
	// and reconcile rather than retry.
	SyncFailure *CollaboratorError
}

type SplitErrorCode string

const (
	SplitErrInvalidRange    SplitErrorCode = "INVALID_RANGE"
	SplitErrNoOverlap       SplitErrorCode = "NO_OVERLAP"
	SplitErrSiblingConflict SplitErrorCode = "SIBLING_CONFLICT"
	SplitErrNotFound        SplitErrorCode = "NOT_FOUND"
)

// SplitError is a domain error raised by the split manager before any
// mutation is committed.
type SplitError struct {
	Code    SplitErrorCode
	Message string
}

func (e *SplitError) Error() string {
	return string(e.Code) + ": " + e.Message
}
