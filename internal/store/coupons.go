package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gorider/gorider-api/internal/domain/coupon"
)

// CouponRepository implements coupon.Repository
type CouponRepository struct {
	col *Collection[coupon.Coupon]
}

// NewCouponRepository creates a coupon repository
func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{col: NewCollection[coupon.Coupon](db, CouponsCollection)}
}

// Create checks the name first and relies on the unique index to settle
// two concurrent creations of the same name.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	if _, err := r.GetByName(ctx, c.Name); err == nil {
		return coupon.ErrCouponExists
	} else if !errors.Is(err, coupon.ErrCouponNotFound) {
		return err
	}

	id, err := r.col.Insert(ctx, c)
	if errors.Is(err, ErrDuplicate) {
		return coupon.ErrCouponExists
	}
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	return r.col.FindAll(ctx)
}

func (r *CouponRepository) GetByName(ctx context.Context, name string) (*coupon.Coupon, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *CouponRepository) findOne(ctx context.Context, filter bson.M) (*coupon.Coupon, error) {
	c, err := r.col.FindOne(ctx, filter)
	if errors.Is(err, ErrNotFound) {
		return nil, coupon.ErrCouponNotFound
	}
	return c, err
}

func (r *CouponRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.col.DeleteOne(ctx, bson.M{"_id": id})
}
