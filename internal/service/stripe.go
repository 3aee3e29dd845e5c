package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeGateway implements PaymentGateway against the Stripe API.
type StripeGateway struct{}

// NewStripeGateway sets the global API key and returns the gateway, or nil
// when no key is configured.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return nil
	}
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, paymentMethodID, reference string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.AddMetadata("reference", reference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: %w", err)
	}
	return pi.ID, nil
}
