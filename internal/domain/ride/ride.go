package ride

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/pkg/docjson"
)

// Status represents the state of a pending ride request. The set is open:
// clients may store any non-empty value, the constants are the common ones.
type Status string

// Well-known statuses
const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// IsValid reports whether the status holds anything but whitespace
func (s Status) IsValid() bool {
	return strings.TrimSpace(string(s)) != ""
}

// PendingRide is a ride request awaiting pricing and payment.
// It is removed once a payment with the same RideID is recorded.
type PendingRide struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	RideID         string             `json:"rideId" bson:"rideId"`
	UserName       string             `json:"userName,omitempty" bson:"userName,omitempty"`
	UserEmail      string             `json:"userEmail" bson:"userEmail"`
	CarID          string             `json:"carId,omitempty" bson:"carId,omitempty"`
	CarName        string             `json:"carName,omitempty" bson:"carName,omitempty"`
	VehicleType    string             `json:"vehicleType,omitempty" bson:"vehicleType,omitempty"`
	DriverName     string             `json:"driverName,omitempty" bson:"driverName,omitempty"`
	DriverEmail    string             `json:"driverEmail,omitempty" bson:"driverEmail,omitempty"`
	PickupLocation string             `json:"pickupLocation,omitempty" bson:"pickupLocation,omitempty"`
	DropLocation   string             `json:"dropLocation,omitempty" bson:"dropLocation,omitempty"`
	Distance       float64            `json:"distance,omitempty" bson:"distance,omitempty"`
	Status         Status             `json:"status" bson:"status"`
	TotalPrice     float64            `json:"totalPrice" bson:"totalPrice"`
	IsCouponUsed   bool               `json:"isCouponUsed" bson:"isCouponUsed"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`

	// Extra holds submitted members the fields above do not model
	Extra map[string]interface{} `json:"-" bson:",inline"`
}

func (r PendingRide) MarshalJSON() ([]byte, error) {
	type plain PendingRide
	return docjson.Merge(plain(r), r.Extra)
}

func (r *PendingRide) UnmarshalJSON(data []byte) error {
	type plain PendingRide
	var p plain
	extra, err := docjson.Split(data, &p)
	if err != nil {
		return err
	}
	*r = PendingRide(p)
	r.Extra = extra
	return nil
}

// StatusUpdate is applied as a single document write. Only the members
// that are set are written: an empty Status and nil pointers are left alone.
type StatusUpdate struct {
	Status       Status
	TotalPrice   *float64
	IsCouponUsed *bool
}

// IsEmpty reports whether the update names no field
func (u StatusUpdate) IsEmpty() bool {
	return u.Status == "" && u.TotalPrice == nil && u.IsCouponUsed == nil
}

// Fields returns the stored field names and values to set
func (u StatusUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 3)
	if u.Status != "" {
		fields["status"] = u.Status
	}
	if u.TotalPrice != nil {
		fields["totalPrice"] = *u.TotalPrice
	}
	if u.IsCouponUsed != nil {
		fields["isCouponUsed"] = *u.IsCouponUsed
	}
	return fields
}

// Repository defines the interface for pending ride data access
type Repository interface {
	Create(ctx context.Context, r *PendingRide) error
	List(ctx context.Context) ([]PendingRide, error)

	// UpdateStatus returns the modified count
	UpdateStatus(ctx context.Context, id primitive.ObjectID, update StatusUpdate) (int64, error)

	// Delete removes by record identifier and returns the deleted count
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)

	// DeleteByRideID removes the record whose rideId matches
	DeleteByRideID(ctx context.Context, rideID string) (int64, error)
}

var (
	ErrRideNotFound  = errors.New("ride not found")
	ErrInvalidStatus = errors.New("invalid ride status")
	ErrEmptyUpdate   = errors.New("update names no field")
)
