package payment

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no provider secret key is set.
var ErrNotConfigured = errors.New("payment provider not configured")

// LineItem is one priced product line in minor currency units.
type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// Session is the provider-hosted checkout page created for a request.
type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions with a payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}
