// Package events carries ride lifecycle notifications to downstream
// consumers. Publishing never blocks the request that produced the event.
package events

import (
	"context"
	"errors"
	"time"
)

// Ride lifecycle event types
const (
	TypeRideRequested     = "ride.requested"
	TypeRideUpdated       = "ride.updated"
	TypeRideCancelled     = "ride.cancelled"
	TypeRidePaid          = "ride.paid"
	TypeRideCleanupFailed = "ride.cleanup_failed"
)

// RideEvent is published on every lifecycle step
type RideEvent struct {
	Type        string    `json:"type"`
	RideID      string    `json:"rideId,omitempty"`
	RecordID    string    `json:"recordId,omitempty"`
	Status      string    `json:"status,omitempty"`
	UserEmail   string    `json:"userEmail,omitempty"`
	DriverEmail string    `json:"driverEmail,omitempty"`
	Price       float64   `json:"price,omitempty"`
	PaymentID   string    `json:"paymentId,omitempty"`
	At          time.Time `json:"at"`
}

// Publisher delivers ride events
type Publisher interface {
	Publish(ctx context.Context, ev RideEvent) error
}

// Multi fans an event out to every publisher
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev RideEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, RideEvent) error { return nil }
