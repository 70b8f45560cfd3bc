package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Gateway places and settles payment holds for booking estimates. A hold is
// placed when a booking is authorized, captured at completion for the final
// share, and released on cancellation.
type Gateway interface {
	Hold(ctx context.Context, amountCents int64, currency, customerID string) (string, error)
	Capture(ctx context.Context, ref string) error
	Release(ctx context.Context, ref string) error
}

// StripeGateway wraps stripe-go PaymentIntents with manual capture.
type StripeGateway struct{}

func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

func (g *StripeGateway) Hold(ctx context.Context, amountCents int64, currency, customerID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

func (g *StripeGateway) Capture(ctx context.Context, ref string) error {
	_, err := paymentintent.Capture(ref, nil)
	return err
}

func (g *StripeGateway) Release(ctx context.Context, ref string) error {
	_, err := paymentintent.Cancel(ref, nil)
	return err
}

// NoopGateway is used when no stripe key is configured; every operation
// succeeds without a reference.
type NoopGateway struct{}

func (NoopGateway) Hold(context.Context, int64, string, string) (string, error) { return "", nil }
func (NoopGateway) Capture(context.Context, string) error                       { return nil }
func (NoopGateway) Release(context.Context, string) error                       { return nil }

// NewGateway selects the stripe gateway when an API key is present.
func NewGateway(apiKey string) Gateway {
	if apiKey == "" {
		return NoopGateway{}
	}
	return NewStripeGateway(apiKey)
}
