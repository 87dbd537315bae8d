package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"campus-food-ordering/internal/metrics"
	"campus-food-ordering/internal/payment"
	"github.com/shopspring/decimal"
)

// ErrInvalidCart wraps request problems detected before the provider is called.
var ErrInvalidCart = errors.New("invalid cart")

var hundred = decimal.NewFromInt(100)

// CartItem is one line as sent by the storefront.
type CartItem struct {
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type Request struct {
	CartItems []CartItem `json:"cartItems"`
}

type Options struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	Metrics    *metrics.Metrics
	Logger     *log.Logger
}

// Service turns a storefront cart into a hosted payment session.
type Service struct {
	gateway payment.Gateway
	opts    Options
	logger  *log.Logger
}

func New(gateway payment.Gateway, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &Service{gateway: gateway, opts: opts, logger: logger}
}

// UnitAmount converts a major-unit price to minor units, rounding half away
// from zero.
func UnitAmount(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// LineItems maps cart lines to provider line items.
func LineItems(items []CartItem) ([]payment.LineItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cartItems required", ErrInvalidCart)
	}
	out := make([]payment.LineItem, 0, len(items))
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d: name required", ErrInvalidCart, i)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d: price must not be negative", ErrInvalidCart, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidCart, i)
		}
		li := payment.LineItem{
			Name:       name,
			UnitAmount: UnitAmount(it.Price),
			Quantity:   it.Quantity,
		}
		if img := strings.TrimSpace(it.Image); img != "" {
			li.Images = []string{img}
		}
		out = append(out, li)
	}
	return out, nil
}

// CreateSession validates the cart and requests a session from the provider.
func (s *Service) CreateSession(ctx context.Context, req Request) (string, error) {
	lines, err := LineItems(req.CartItems)
	if err != nil {
		s.opts.Metrics.CheckoutSession("invalid")
		return "", err
	}
	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		Currency:   s.opts.Currency,
		LineItems:  lines,
		SuccessURL: s.opts.SuccessURL,
		CancelURL:  s.opts.CancelURL,
	})
	if err != nil {
		s.opts.Metrics.CheckoutSession("error")
		s.logger.Printf("checkout: create session lines=%d error=%v", len(lines), err)
		return "", err
	}
	s.opts.Metrics.CheckoutSession("ok")
	return sess.ID, nil
}
