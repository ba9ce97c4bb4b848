package app

import (
	"context"
	"time"

	"github.com/webviva/shop-api/internal/clock"
	"github.com/webviva/shop-api/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderSummary(ctx context.Context, id int64) (domain.OrderSummary, error)
	GetOrderForUpdate(ctx context.Context, id int64) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.OrderSummary, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, now time.Time) error
}

type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		clock: clk,
	}
}

type OrderDetail struct {
	domain.OrderSummary
	Items []domain.OrderItem
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (OrderDetail, error) {
	if id <= 0 {
		return OrderDetail{}, domain.ErrInvalidID
	}
	summary, err := s.repo.GetOrderSummary(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	items, err := s.repo.ListOrderItems(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{OrderSummary: summary, Items: items}, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]OrderDetail, error) {
	summaries, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]OrderDetail, 0, len(summaries))
	for _, summary := range summaries {
		items, err := s.repo.ListOrderItems(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, OrderDetail{OrderSummary: summary, Items: items})
	}
	return details, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]OrderDetail, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidID
	}
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := make([]OrderDetail, 0, len(orders))
	for _, order := range orders {
		items, err := s.repo.ListOrderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, OrderDetail{
			OrderSummary: domain.OrderSummary{Order: order},
			Items:        items,
		})
	}
	return details, nil
}

// UpdateStatus applies an administrative transition. The guard keeps
// CONFIRMED out of reach: only a verified payment notification confirms an
// order.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (domain.Order, error) {
	if id <= 0 {
		return domain.Order{}, domain.ErrInvalidID
	}
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, domain.ErrInvalidStatus
	}
	next := domain.OrderStatus(status)

	now := s.clock.Now()
	var updated domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return domain.ErrInvalidTransition
		}
		if err := s.repo.UpdateOrderStatus(txCtx, id, next, now); err != nil {
			return err
		}
		order.Status = next
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}
