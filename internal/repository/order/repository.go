package order

import (
	"context"
	"time"

	"campus-food-ordering/internal/domain"
)

type CreateOrderInput struct {
	FromUserID string
	Location   string
}

// Repository persists orders and their ordered items.
type Repository interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	CreateItem(ctx context.Context, item domain.OrderedItem) (*domain.OrderedItem, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetStatus(ctx context.Context, id string) (domain.OrderStatus, error)
	List(ctx context.Context) ([]domain.Order, error)
	// Accept moves a Pending order to Delivering and records the courier.
	// It returns domain.ErrConflict when the order is no longer Pending.
	Accept(ctx context.Context, id, courierID string) (*domain.Order, error)
	// Complete moves a Delivering order to Completed when courierID holds it.
	Complete(ctx context.Context, id, courierID string) (*domain.Order, error)
	// DeletePending removes the ordered items and then the order, only while
	// the order is still Pending. It reports whether anything was deleted.
	DeletePending(ctx context.Context, id string) (bool, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}
