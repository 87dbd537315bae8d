package payment

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeGateway creates card-payment checkout sessions through Stripe.
type StripeGateway struct {
	client *session.Client
	logger *log.Logger
}

// NewStripe returns a gateway using key. A nil backend selects Stripe's API.
func NewStripe(key string, backend stripe.Backend, logger *log.Logger) *StripeGateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		client: &session.Client{B: backend, Key: key},
		logger: logger,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if g.client.Key == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if len(li.Images) > 0 {
			product.Images = stripe.StringSlice(li.Images)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	s, err := g.client.New(params)
	if err != nil {
		g.logger.Printf("payment: create checkout session lines=%d error=%v", len(req.LineItems), err)
		return nil, err
	}
	g.logger.Printf("payment: checkout session created id=%s lines=%d", s.ID, len(req.LineItems))
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// Message returns the provider's own error message when err came from
// Stripe, otherwise err.Error().
func Message(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
