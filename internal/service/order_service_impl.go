package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/railorder/internal/domain"
	"github.com/alexanderramin/railorder/internal/repository"
	"github.com/google/uuid"
)

type orderService struct {
	orders repository.OrderRepo
}

func NewOrderService(orders repository.OrderRepo) OrderService {
	return &orderService{orders: orders}
}

func (s *orderService) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = domain.OrderDraft
	}
	return s.orders.Create(ctx, o)
}

func (s *orderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *orderService) GetByShortID(ctx context.Context, shortID string) (*domain.Order, error) {
	return s.orders.GetByShortID(ctx, shortID)
}

func (s *orderService) List(ctx context.Context, includeArchived bool) ([]*domain.Order, error) {
	return s.orders.List(ctx, includeArchived)
}

func (s *orderService) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()
	return s.orders.Update(ctx, o)
}

func (s *orderService) Archive(ctx context.Context, id string) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	o.Status = domain.OrderArchived
	o.UpdatedAt = time.Now().UTC()
	return s.orders.Update(ctx, o)
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderArchived {
		return fmt.Errorf("order must be archived before deletion")
	}
	return s.orders.Delete(ctx, id)
}
