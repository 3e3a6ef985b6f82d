package domain

import "time"

// TrainPlan is the external timetable plan an order item may be linked
// to. A plan is exclusively owned by one item at a time; variant
// branching clones the plan so simulation edits never touch the
// productive plan.
type TrainPlan struct {
	ID           string
	Name         string
	TrainNumber  string
	Phase        PlanPhase
	VariantType  VariantType
	BasePlanID   *string
	FirstRunDate *time.Time
	LastRunDate  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
