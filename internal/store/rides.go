package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gorider/gorider-api/internal/domain/ride"
)

// PendingRideRepository implements ride.Repository
type PendingRideRepository struct {
	col *Collection[ride.PendingRide]
}

// NewPendingRideRepository creates a pending ride repository
func NewPendingRideRepository(db *mongo.Database) *PendingRideRepository {
	return &PendingRideRepository{col: NewCollection[ride.PendingRide](db, PendingRideCollection)}
}

func (r *PendingRideRepository) Create(ctx context.Context, pr *ride.PendingRide) error {
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now().UTC()
	}
	id, err := r.col.Insert(ctx, pr)
	if err != nil {
		return err
	}
	pr.ID = id
	return nil
}

func (r *PendingRideRepository) List(ctx context.Context) ([]ride.PendingRide, error) {
	return r.col.FindAll(ctx)
}

// UpdateStatus writes the present members of u in one $set so they change
// together under single-document atomicity. Absent members are untouched.
func (r *PendingRideRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, u ride.StatusUpdate) (int64, error) {
	return r.col.UpdateFields(ctx, id, bson.M(u.Fields()))
}

func (r *PendingRideRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.col.DeleteOne(ctx, bson.M{"_id": id})
}

func (r *PendingRideRepository) DeleteByRideID(ctx context.Context, rideID string) (int64, error) {
	return r.col.DeleteOne(ctx, bson.M{"rideId": rideID})
}
