package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gorider/gorider-api/internal/domain/car"
)

// CarRepository implements car.Repository
type CarRepository struct {
	col *Collection[car.Car]
}

// NewCarRepository creates a vehicle repository
func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{col: NewCollection[car.Car](db, CarsCollection)}
}

func (r *CarRepository) Create(ctx context.Context, c *car.Car) error {
	id, err := r.col.Insert(ctx, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CarRepository) List(ctx context.Context) ([]car.Car, error) {
	return r.col.FindAll(ctx)
}

func (r *CarRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*car.Car, error) {
	c, err := r.col.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, ErrNotFound) {
		return nil, car.ErrCarNotFound
	}
	return c, err
}

func (r *CarRepository) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (int64, error) {
	return r.col.UpdateFields(ctx, id, bson.M(fields))
}

func (r *CarRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.col.DeleteOne(ctx, bson.M{"_id": id})
}
