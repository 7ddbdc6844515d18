// Package gateway proxies the external card processor. It never verifies
// that a recorded payment was actually captured: recording is trusted.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/pkg/logger"
)

// DefaultCurrency is the only currency charged
const DefaultCurrency = "usd"

var ErrInvalidAmount = errors.New("amount must be a positive number")

// IntentCreator creates a charge intent of amount minor units and returns
// the client secret the browser uses to confirm the card payment
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

// Gateway is the payment adapter used by handlers and the ride lifecycle
type Gateway struct {
	intents  IntentCreator
	payments payment.Repository
	currency string
	logger   *logger.Logger
}

// New creates a gateway. An empty currency means DefaultCurrency.
func New(intents IntentCreator, payments payment.Repository, currency string, log *logger.Logger) *Gateway {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Gateway{intents: intents, payments: payments, currency: currency, logger: log}
}

// ToMinorUnits converts a decimal amount to integer cents, rounding half
// away from zero on the exact decimal value (19.995 -> 2000).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// CreateChargeIntent rounds amount to minor units and asks the processor
// for an intent
func (g *Gateway) CreateChargeIntent(ctx context.Context, amount decimal.Decimal) (string, error) {
	minor := ToMinorUnits(amount)
	if minor <= 0 {
		return "", ErrInvalidAmount
	}

	secret, err := g.intents.CreateIntent(ctx, minor, g.currency)
	if err != nil {
		g.logger.Error("Failed to create payment intent",
			logger.Int64("amount", minor),
			logger.String("currency", g.currency),
			logger.Err(err),
		)
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	g.logger.Info("Payment intent created",
		logger.Int64("amount", minor),
		logger.String("currency", g.currency),
	)
	return secret, nil
}

// RecordPayment stores a completed payment. Returns an error wrapping
// payment.ErrPaymentNotRecorded when the store did not confirm the insert.
func (g *Gateway) RecordPayment(ctx context.Context, p *payment.Payment) error {
	return g.payments.Create(ctx, p)
}

// ListPayments returns every recorded payment
func (g *Gateway) ListPayments(ctx context.Context) ([]payment.Payment, error) {
	return g.payments.List(ctx)
}
