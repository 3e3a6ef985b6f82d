package service

import (
	"context"

	"github.com/alexanderramin/railorder/internal/contract"
	"github.com/alexanderramin/railorder/internal/domain"
)

type OrderService interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Order, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ItemService interface {
	Create(ctx context.Context, item *domain.OrderItem) error
	GetByID(ctx context.Context, id string) (*domain.OrderItem, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.OrderItem, error)
	Update(ctx context.Context, item *domain.OrderItem) error
	Delete(ctx context.Context, id string) error
	// EffectiveValidity resolves the segments an item actually operates
	// on, walking the fallback chain when no explicit segments exist.
	EffectiveValidity(ctx context.Context, itemID string) ([]domain.ValiditySegment, error)
}

type SplitService interface {
	Split(ctx context.Context, req contract.SplitRequest) (*contract.SplitResult, error)
}

type VariantService interface {
	Branch(ctx context.Context, orderID, itemID string) (*contract.BranchResult, error)
	Promote(ctx context.Context, orderID, itemID string) (*contract.PromoteResult, error)
	Merge(ctx context.Context, orderID, itemID string) (*contract.MergeResult, error)
}

// CalendarSyncService pushes validity removals to the external calendar
// collaborator. One-way: the item's segments are the source of truth
// and the calendar is a downstream projection.
type CalendarSyncService interface {
	PushExclusions(ctx context.Context, trafficPeriodID string, removed []domain.ValiditySegment) *contract.CollaboratorError
}
