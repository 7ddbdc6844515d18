package gateway

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeIntents creates card payment intents through Stripe
type StripeIntents struct {
	api *client.API
}

// NewStripeIntents creates a Stripe client bound to secretKey
func NewStripeIntents(secretKey string) *StripeIntents {
	return &StripeIntents{api: client.New(secretKey, nil)}
}

func (s *StripeIntents) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	if intent.ClientSecret == "" {
		return "", errors.New("stripe returned an intent without a client secret")
	}
	return intent.ClientSecret, nil
}
