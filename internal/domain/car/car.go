package car

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the moderation state of a listing
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Car is a vehicle listing submitted by a driver
type Car struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CarName      string             `json:"carName" bson:"carName"`
	VehicleType  string             `json:"vehicleType" bson:"vehicleType"`
	VehicleImage string             `json:"vehicleImage" bson:"vehicleImage"`
	DriverName   string             `json:"driverName" bson:"driverName"`
	DriverEmail  string             `json:"driverEmail" bson:"driverEmail"`
	Seats        int                `json:"seats" bson:"seats"`
	EPrice       float64            `json:"ePrice" bson:"ePrice"`
	Status       Status             `json:"status" bson:"status"`
}

// UpdatableFields lists the stored field names a partial update may touch.
// The identifier is never among them.
var UpdatableFields = map[string]bool{
	"carName":      true,
	"vehicleType":  true,
	"vehicleImage": true,
	"driverName":   true,
	"driverEmail":  true,
	"seats":        true,
	"ePrice":       true,
	"status":       true,
}

// Repository defines the interface for vehicle data access
type Repository interface {
	Create(ctx context.Context, c *Car) error
	List(ctx context.Context) ([]Car, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Car, error)

	// Update sets only the given fields and returns the modified count
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (int64, error)

	// Delete returns the deleted count
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

var ErrCarNotFound = errors.New("car not found")
