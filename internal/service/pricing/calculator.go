package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/internal/domain/car"
	"github.com/gorider/gorider-api/internal/domain/coupon"
)

var (
	ErrInvalidDistance = errors.New("distance must be positive")
	ErrInvalidRate     = errors.New("price per unit must be positive")
)

var hundred = decimal.NewFromInt(100)

// Fare is the breakdown of an estimated ride price
type Fare struct {
	BasePrice  decimal.Decimal `json:"basePrice"`
	Discount   decimal.Decimal `json:"discount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CouponCode string          `json:"couponCode,omitempty"`
}

// Quote prices a ride of distance units at perUnit each, less discountPct
// percent. The percentage is clamped to [0, 100] and every amount is
// rounded to cents.
func Quote(perUnit, distance, discountPct float64) (*Fare, error) {
	if perUnit <= 0 {
		return nil, ErrInvalidRate
	}
	if distance <= 0 {
		return nil, ErrInvalidDistance
	}

	pct := decimal.NewFromFloat(discountPct)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}

	base := decimal.NewFromFloat(perUnit).Mul(decimal.NewFromFloat(distance)).Round(2)
	discount := base.Mul(pct).Div(hundred).Round(2)

	return &Fare{
		BasePrice:  base,
		Discount:   discount,
		TotalPrice: base.Sub(discount),
	}, nil
}

// Service estimates fares from stored cars and coupons
type Service struct {
	cars    car.Repository
	coupons coupon.Repository
}

// NewService creates a new pricing service
func NewService(cars car.Repository, coupons coupon.Repository) *Service {
	return &Service{cars: cars, coupons: coupons}
}

// Estimate prices a ride in the given car. An empty couponCode means no
// discount; an unknown one returns coupon.ErrCouponNotFound.
func (s *Service) Estimate(ctx context.Context, carID primitive.ObjectID, distance float64, couponCode string) (*Fare, error) {
	c, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	var pct float64
	if couponCode != "" {
		cp, err := s.coupons.GetByCode(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		pct = cp.Discount
	}

	fare, err := Quote(c.EPrice, distance, pct)
	if err != nil {
		return nil, fmt.Errorf("quote car %s: %w", carID.Hex(), err)
	}
	fare.CouponCode = couponCode
	return fare, nil
}
