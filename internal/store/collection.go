// Package store is the persistence gateway over the document database.
// Each collection is independent: no operation spans two collections.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	UsersCollection       = "users"
	CarsCollection        = "cars"
	PaymentsCollection    = "payment"
	PendingRideCollection = "pendingRide"
	CouponsCollection     = "coupons"
)

var (
	ErrNotFound          = errors.New("store: record not found")
	ErrDuplicate         = errors.New("store: duplicate key")
	ErrInsertUnconfirmed = errors.New("store: insert not confirmed by the database")
)

// Collection is a typed wrapper offering insert, findAll, findOne,
// updateFields and deleteOne over a single collection.
type Collection[T any] struct {
	col *mongo.Collection
}

// NewCollection binds T to the named collection
func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{col: db.Collection(name)}
}

// Name returns the underlying collection name
func (c *Collection[T]) Name() string {
	return c.col.Name()
}

// Insert stores doc and returns the identifier generated by the store.
// Success requires a non-zero ObjectID in the driver's result; anything
// else is reported as ErrInsertUnconfirmed.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := c.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, fmt.Errorf("insert into %s: %w", c.col.Name(), err)
	}
	return confirmedID(res)
}

func confirmedID(res *mongo.InsertOneResult) (primitive.ObjectID, error) {
	if res == nil {
		return primitive.NilObjectID, ErrInsertUnconfirmed
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok || oid.IsZero() {
		return primitive.NilObjectID, ErrInsertUnconfirmed
	}
	return oid, nil
}

// FindAll returns every record in insertion order.
// ObjectIDs lead with their creation second, so sorting on _id is insertion order.
func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	cur, err := c.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.col.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.col.Name(), err)
	}
	return out, nil
}

// FindOne returns ErrNotFound when nothing matches
func (c *Collection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var out T
	err := c.col.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", c.col.Name(), err)
	}
	return &out, nil
}

// UpdateFields sets only the named fields on the record with the given id
// and returns the modified count. Zero means either not found or unchanged.
func (c *Collection[T]) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	set := setDoc(fields)
	if len(set) == 0 {
		return 0, nil
	}
	res, err := c.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("update in %s: %w", c.col.Name(), err)
	}
	return res.ModifiedCount, nil
}

// DeleteOne removes the first record matching filter and returns the deleted count
func (c *Collection[T]) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := c.col.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", c.col.Name(), err)
	}
	return res.DeletedCount, nil
}

// setDoc copies fields without the identifier so an update body can never
// move a record to a different _id.
func setDoc(fields bson.M) bson.M {
	out := make(bson.M, len(fields))
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}
