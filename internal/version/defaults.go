// Package version maintains the order-item version forest: it fills in
// item defaults and renormalizes parent/child links and version paths
// after every structural change.
package version

import (
	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/validity"
)

// EnsureItemDefaults returns a deep copy of item with a well-formed
// validity set. Explicit segments are normalized; when no segments and
// no traffic-period link exist, a single segment is derived from the
// scalar start/end window. Traffic-period-backed items keep a nil
// validity — resolving the calendar requires collaborator access and
// happens in the service layer.
//
// Pure: no hidden state, no ID generation, input is never mutated.
func EnsureItemDefaults(item *domain.OrderItem) *domain.OrderItem {
	out := item.Clone()

	switch {
	case out.Validity != nil:
		out.Validity = validity.Normalize(out.Validity)
	case out.TrafficPeriodID != nil && *out.TrafficPeriodID != "":
		// Leave nil: derived from the calendar on resolution.
	case out.Start != nil && out.End != nil:
		out.Validity = validity.Normalize([]domain.ValiditySegment{
			domain.NewSegment(*out.Start, *out.End),
		})
	}

	if out.ChildItemIDs == nil {
		out.ChildItemIDs = []string{}
	}
	return out
}
