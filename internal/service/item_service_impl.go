package service

import (
	"context"
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/alexanderramin/railorder/internal/validity"
	"github.com/alexanderramin/railorder/internal/version"
	"github.com/google/uuid"
)

type itemService struct {
	orders   repository.OrderRepo
	items    repository.OrderItemRepo
	resolver *validityResolver
}

func NewItemService(
	orders repository.OrderRepo,
	items repository.OrderItemRepo,
	periods repository.TrafficPeriodRepo,
	years repository.TimetableYearRepo,
) ItemService {
	return &itemService{
		orders:   orders,
		items:    items,
		resolver: newValidityResolver(periods, years),
	}
}

func (s *itemService) Create(ctx context.Context, item *domain.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.VariantType == "" {
		item.VariantType = domain.VariantProductive
	}
	if item.Validity != nil {
		item.Validity = validity.Normalize(item.Validity)
	}
	// Fresh roots get the next positional path; a full renormalization
	// happens on the first structural mutation.
	if len(item.VersionPath) == 0 && item.ParentItemID == nil {
		existing, err := s.items.ListByOrder(ctx, item.OrderID)
		if err != nil {
			return err
		}
		roots := 0
		for _, e := range existing {
			if e.IsRoot() {
				roots++
			}
		}
		item.VersionPath = []int{roots + 1}
	}
	return s.items.Create(ctx, item)
}

func (s *itemService) GetByID(ctx context.Context, id string) (*domain.OrderItem, error) {
	return s.items.GetByID(ctx, id)
}

// ListByOrder returns the normalized collection: child lists and
// version paths are recomputed on read so stale persisted structure
// never leaks to callers.
func (s *itemService) ListByOrder(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	items, err := s.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return version.NormalizeItems(items), nil
}

func (s *itemService) Update(ctx context.Context, item *domain.OrderItem) error {
	item.UpdatedAt = time.Now().UTC()
	if item.Validity != nil {
		item.Validity = validity.Normalize(item.Validity)
	}
	return s.items.Update(ctx, item)
}

func (s *itemService) Delete(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

func (s *itemService) EffectiveValidity(ctx context.Context, itemID string) ([]domain.ValiditySegment, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, order, item)
}
