package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusDelivering OrderStatus = "Delivering"
	OrderStatusCompleted  OrderStatus = "Completed"
)

// ParseOrderStatus accepts the stored spelling only.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusDelivering, OrderStatusCompleted:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether next directly follows s.
// Pending -> Delivering -> Completed; expiry deletes the row and is not a status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusDelivering
	case OrderStatusDelivering:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is a delivery request placed by FromUserID and optionally fulfilled by ToUserID.
type Order struct {
	ID         string        `json:"order_id"`
	FromUserID string        `json:"from_user_id"`
	ToUserID   *string       `json:"to_user_id"`
	Location   string        `json:"location"`
	Status     OrderStatus   `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	Items      []OrderedItem `json:"ordered_item"`
}

// Total sums the line totals, excluding any service fee.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

type OrderedItem struct {
	OrderID    string          `json:"order_id"`
	ItemID     string          `json:"item_id"`
	Unit       int             `json:"unit"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
