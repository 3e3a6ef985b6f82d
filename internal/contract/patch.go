package contract

import "github.com/alexanderramin/railorder/internal/domain"

// ItemPatch is the closed set of fields a caller may override on a
// split child. Nil pointers mean "leave inherited value alone"; the
// managers cannot silently accept or drop unknown fields.
type ItemPatch struct {
	Title *string

	// TrainPlanID relinks the child to a different train plan. The
	// child's scalar start/end window is then pulled from that plan's
	// own run dates instead of the parent's.
	TrainPlanID *string

	// TrafficPeriodID links the child to a calendar definition. Absent,
	// the child carries explicit segments only.
	TrafficPeriodID *string

	Tags []string
}

// Apply writes the patch onto item in place.
func (p *ItemPatch) Apply(item *domain.OrderItem) {
	if p == nil {
		return
	}
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.TrainPlanID != nil {
		v := *p.TrainPlanID
		item.TrainPlanID = &v
	}
	if p.TrafficPeriodID != nil {
		v := *p.TrafficPeriodID
		item.TrafficPeriodID = &v
	}
	if p.Tags != nil {
		item.Tags = append([]string{}, p.Tags...)
	}
}
