package coupon

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a promotion defined by an admin. Name is the unique key.
type Coupon struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Code     string             `json:"code" bson:"code"`
	Discount float64            `json:"discount" bson:"discount"`
}

// Repository defines the interface for coupon data access
type Repository interface {
	// Create returns ErrCouponExists when the name is taken
	Create(ctx context.Context, c *Coupon) error
	List(ctx context.Context) ([]Coupon, error)
	GetByName(ctx context.Context, name string) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExists   = errors.New("coupon already exists")
)
