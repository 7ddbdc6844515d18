package payment

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/pkg/docjson"
)

// Payment is the immutable record of a completed card payment
type Payment struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	RideID        string             `json:"rideId" bson:"rideId"`
	UserEmail     string             `json:"userEmail" bson:"userEmail"`
	UserName      string             `json:"userName,omitempty" bson:"userName,omitempty"`
	Price         float64            `json:"price" bson:"price"`
	CarName       string             `json:"carName,omitempty" bson:"carName,omitempty"`
	VehicleType   string             `json:"vehicleType,omitempty" bson:"vehicleType,omitempty"`
	DriverName    string             `json:"driverName,omitempty" bson:"driverName,omitempty"`
	DriverEmail   string             `json:"driverEmail,omitempty" bson:"driverEmail,omitempty"`
	TransactionID string             `json:"transactionId" bson:"transactionId"`
	Distance      float64            `json:"distance,omitempty" bson:"distance,omitempty"`
	Date          time.Time          `json:"date" bson:"date"`

	// Extra holds submitted members the fields above do not model
	Extra map[string]interface{} `json:"-" bson:",inline"`
}

func (p Payment) MarshalJSON() ([]byte, error) {
	type plain Payment
	return docjson.Merge(plain(p), p.Extra)
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	type plain Payment
	var v plain
	extra, err := docjson.Split(data, &v)
	if err != nil {
		return err
	}
	*p = Payment(v)
	p.Extra = extra
	return nil
}

// Repository defines the interface for payment data access.
// Payments are never updated or deleted.
type Repository interface {
	// Create sets the ID on success. The insert only counts as successful
	// when the store confirms a generated identifier.
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context) ([]Payment, error)
}

var ErrPaymentNotRecorded = errors.New("payment not recorded")
