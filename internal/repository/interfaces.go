package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
)

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Order, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id string) error
}

type OrderItemRepo interface {
	Create(ctx context.Context, item *domain.OrderItem) error
	GetByID(ctx context.Context, id string) (*domain.OrderItem, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.OrderItem, error)
	Update(ctx context.Context, item *domain.OrderItem) error
	// ReplaceForOrder atomically swaps the full item collection of an
	// order. Insertion order of items is preserved as their position.
	// Intended to run on a tx-scoped repository inside a UnitOfWork.
	ReplaceForOrder(ctx context.Context, orderID string, items []*domain.OrderItem) error
	Delete(ctx context.Context, id string) error
}

// TrafficPeriodRepo is the calendar collaborator: it resolves an item's
// effective validity when no explicit segments exist and receives
// exclusion dates after a split.
type TrafficPeriodRepo interface {
	Create(ctx context.Context, p *domain.TrafficPeriod) error
	GetByID(ctx context.Context, id string) (*domain.TrafficPeriod, error)
	AddExclusionDates(ctx context.Context, id string, dates []time.Time) error
}

// TimetableYearRepo resolves planning-year bounds, used to widen a
// split target's validity when an explicit segment falls outside the
// item's materialized days but inside its managed year.
type TimetableYearRepo interface {
	GetByLabel(ctx context.Context, label string) (*domain.TimetableYear, error)
	GetByDate(ctx context.Context, sample time.Time) (*domain.TimetableYear, error)
}

// TrainPlanRepo is the external plan collaborator used during split
// (scalar window from a relinked plan) and variant branch/merge (plan
// cloning and modification records).
type TrainPlanRepo interface {
	Create(ctx context.Context, p *domain.TrainPlan) error
	GetByID(ctx context.Context, id string) (*domain.TrainPlan, error)
	Update(ctx context.Context, p *domain.TrainPlan) error
	// CreateVariant clones a plan for a new variant of the given type.
	CreateVariant(ctx context.Context, planID string, target domain.VariantType, label string) (*domain.TrainPlan, error)
	// CreateModification derives a modification plan from a published
	// base plan.
	CreateModification(ctx context.Context, basePlanID string, label string) (*domain.TrainPlan, error)
}
