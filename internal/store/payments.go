package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gorider/gorider-api/internal/domain/payment"
)

// PaymentRepository implements payment.Repository
type PaymentRepository struct {
	col *Collection[payment.Payment]
}

// NewPaymentRepository creates a payment repository
func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: NewCollection[payment.Payment](db, PaymentsCollection)}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	id, err := r.col.Insert(ctx, p)
	if errors.Is(err, ErrInsertUnconfirmed) {
		return fmt.Errorf("%w: %v", payment.ErrPaymentNotRecorded, err)
	}
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]payment.Payment, error) {
	return r.col.FindAll(ctx)
}
