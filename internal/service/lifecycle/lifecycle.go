// Package lifecycle sequences a ride request from creation to payment.
//
// Recording a payment and removing its pending ride are two independent
// writes. A payment that was stored but whose ride could not be removed is
// reported to the caller as a partial success and queued for
// reconciliation; nothing is rolled back.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/ride"
	"github.com/gorider/gorider-api/pkg/events"
	"github.com/gorider/gorider-api/pkg/logger"
)

// Outcome of a payment submission
type Outcome string

const (
	OutcomePaidAndCleanedUp Outcome = "paid_and_cleaned_up"
	OutcomePaidNotCleanedUp Outcome = "paid_not_cleaned_up"
	OutcomePaymentFailed    Outcome = "payment_failed"
)

// Caller-facing messages per outcome
const (
	MsgPaidAndCleanedUp = "Payment successful. Item deleted from pendingRide."
	MsgPaidNotCleanedUp = "Payment successful, but failed to delete item from pendingRide."
	MsgPaymentFailed    = "Failed to insert payment."
)

// Result is the tri-state answer to a payment submission
type Result struct {
	Outcome Outcome
	Message string
	Payment *payment.Payment
}

// Success reports whether the payment was recorded, cleaned up or not
func (r *Result) Success() bool {
	return r.Outcome != OutcomePaymentFailed
}

// PaymentRecorder stores a completed payment
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, p *payment.Payment) error
}

// ReceiptSender queues the post-payment receipt. It must not block.
type ReceiptSender interface {
	SendReceipt(recipient string, p payment.Payment)
}

// ReconcileLog collects payments whose pending ride is still stored
type ReconcileLog interface {
	Push(ctx context.Context, entry interface{}) error
}

// EventRecorder records APM custom events
type EventRecorder interface {
	RecordCustomEvent(eventType string, params map[string]interface{})
}

// Reconciliation is the entry pushed for an out-of-band cleanup
type Reconciliation struct {
	RideID    string    `json:"rideId"`
	PaymentID string    `json:"paymentId"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// Deps are the collaborators of the orchestrator. Events, Reconcile and
// APM may be nil.
type Deps struct {
	Rides     ride.Repository
	Payments  PaymentRecorder
	Receipts  ReceiptSender
	Events    events.Publisher
	Reconcile ReconcileLog
	APM       EventRecorder
	Logger    *logger.Logger
}

// Service is the ride lifecycle orchestrator
type Service struct {
	rides     ride.Repository
	payments  PaymentRecorder
	receipts  ReceiptSender
	events    events.Publisher
	reconcile ReconcileLog
	apm       EventRecorder
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a new lifecycle service
func NewService(d Deps) *Service {
	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		rides:     d.Rides,
		payments:  d.Payments,
		receipts:  d.Receipts,
		events:    pub,
		reconcile: d.Reconcile,
		apm:       d.APM,
		logger:    log.Named("lifecycle"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RequestRide stores a new pending ride. Seat availability and vehicle
// existence are not checked.
func (s *Service) RequestRide(ctx context.Context, r *ride.PendingRide) error {
	if r.Status == "" {
		r.Status = ride.StatusPending
	}
	if !r.Status.IsValid() {
		return ride.ErrInvalidStatus
	}
	if r.RideID == "" {
		r.RideID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	if err := s.rides.Create(ctx, r); err != nil {
		s.logger.Error("Failed to create pending ride",
			logger.String("ride_id", r.RideID),
			logger.String("user_email", r.UserEmail),
			logger.Err(err),
		)
		return fmt.Errorf("create pending ride: %w", err)
	}

	s.logger.Info("Ride requested",
		logger.String("ride_id", r.RideID),
		logger.String("user_email", r.UserEmail),
	)
	s.publish(ctx, events.RideEvent{
		Type:        events.TypeRideRequested,
		RideID:      r.RideID,
		RecordID:    r.ID.Hex(),
		Status:      string(r.Status),
		UserEmail:   r.UserEmail,
		DriverEmail: r.DriverEmail,
		Price:       r.TotalPrice,
	})
	s.record("RideRequested", map[string]interface{}{
		"rideId":      r.RideID,
		"vehicleType": r.VehicleType,
	})
	return nil
}

// ListRides returns every pending ride in insertion order
func (s *Service) ListRides(ctx context.Context) ([]ride.PendingRide, error) {
	return s.rides.List(ctx)
}

// UpdateRide writes the given status, price and coupon usage together and
// leaves the members u does not name unchanged. It returns false when
// nothing was modified, which covers both an unknown id and an unchanged
// record.
func (s *Service) UpdateRide(ctx context.Context, id primitive.ObjectID, u ride.StatusUpdate) (bool, error) {
	if u.IsEmpty() {
		return false, ride.ErrEmptyUpdate
	}
	if u.Status != "" && !u.Status.IsValid() {
		return false, ride.ErrInvalidStatus
	}

	modified, err := s.rides.UpdateStatus(ctx, id, u)
	if err != nil {
		s.logger.Error("Failed to update pending ride",
			logger.String("id", id.Hex()),
			logger.Err(err),
		)
		return false, fmt.Errorf("update pending ride: %w", err)
	}
	if modified == 0 {
		return false, nil
	}

	ev := events.RideEvent{
		Type:     events.TypeRideUpdated,
		RecordID: id.Hex(),
		Status:   string(u.Status),
	}
	if u.TotalPrice != nil {
		ev.Price = *u.TotalPrice
	}
	s.publish(ctx, ev)
	return true, nil
}

// CancelRide removes a pending ride by record id. No status or payment
// precondition applies.
func (s *Service) CancelRide(ctx context.Context, id primitive.ObjectID) (bool, error) {
	deleted, err := s.rides.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete pending ride",
			logger.String("id", id.Hex()),
			logger.Err(err),
		)
		return false, fmt.Errorf("delete pending ride: %w", err)
	}
	if deleted == 0 {
		return false, nil
	}

	s.publish(ctx, events.RideEvent{
		Type:     events.TypeRideCancelled,
		RecordID: id.Hex(),
	})
	return true, nil
}

// CompletePayment records p, then removes the pending ride with the same
// rideId, then queues the receipt. The ride is only touched once the
// payment insert is confirmed. An error is returned only when the insert
// failed for a reason other than a missing confirmation.
func (s *Service) CompletePayment(ctx context.Context, p *payment.Payment) (*Result, error) {
	if p.Date.IsZero() {
		p.Date = s.now()
	}

	if err := s.payments.RecordPayment(ctx, p); err != nil {
		if errors.Is(err, payment.ErrPaymentNotRecorded) {
			s.logger.Warn("Payment insert not confirmed",
				logger.String("ride_id", p.RideID),
				logger.String("user_email", p.UserEmail),
			)
			s.recordPayment(p, OutcomePaymentFailed)
			return &Result{Outcome: OutcomePaymentFailed, Message: MsgPaymentFailed}, nil
		}
		s.logger.Error("Failed to insert payment",
			logger.String("ride_id", p.RideID),
			logger.String("user_email", p.UserEmail),
			logger.Err(err),
		)
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	result := &Result{Outcome: OutcomePaidAndCleanedUp, Message: MsgPaidAndCleanedUp, Payment: p}

	deleted, err := s.rides.DeleteByRideID(ctx, p.RideID)
	if err != nil || deleted == 0 {
		reason := "pending ride not found"
		if err != nil {
			reason = err.Error()
		}
		s.logger.Error("Payment recorded but pending ride not removed",
			logger.String("ride_id", p.RideID),
			logger.String("payment_id", p.ID.Hex()),
			logger.String("reason", reason),
		)
		result.Outcome = OutcomePaidNotCleanedUp
		result.Message = MsgPaidNotCleanedUp
		s.queueReconciliation(ctx, p, reason)
	}

	s.receipts.SendReceipt(p.UserEmail, *p)

	s.publish(ctx, events.RideEvent{
		Type:        events.TypeRidePaid,
		RideID:      p.RideID,
		UserEmail:   p.UserEmail,
		DriverEmail: p.DriverEmail,
		Price:       p.Price,
		PaymentID:   p.ID.Hex(),
	})
	if result.Outcome == OutcomePaidNotCleanedUp {
		s.publish(ctx, events.RideEvent{
			Type:      events.TypeRideCleanupFailed,
			RideID:    p.RideID,
			PaymentID: p.ID.Hex(),
		})
	}
	s.recordPayment(p, result.Outcome)

	s.logger.Info("Payment completed",
		logger.String("ride_id", p.RideID),
		logger.String("payment_id", p.ID.Hex()),
		logger.String("outcome", string(result.Outcome)),
	)
	return result, nil
}

func (s *Service) queueReconciliation(ctx context.Context, p *payment.Payment, reason string) {
	if s.reconcile == nil {
		return
	}
	entry := Reconciliation{
		RideID:    p.RideID,
		PaymentID: p.ID.Hex(),
		Reason:    reason,
		At:        s.now(),
	}
	if err := s.reconcile.Push(ctx, entry); err != nil {
		s.logger.Error("Failed to queue reconciliation",
			logger.String("ride_id", p.RideID),
			logger.Err(err),
		)
	}
}

func (s *Service) publish(ctx context.Context, ev events.RideEvent) {
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish ride event",
			logger.String("type", ev.Type),
			logger.String("ride_id", ev.RideID),
			logger.Err(err),
		)
	}
}

func (s *Service) recordPayment(p *payment.Payment, outcome Outcome) {
	s.record("PaymentRecorded", map[string]interface{}{
		"rideId":  p.RideID,
		"price":   p.Price,
		"outcome": string(outcome),
	})
}

func (s *Service) record(eventType string, params map[string]interface{}) {
	if s.apm == nil {
		return
	}
	s.apm.RecordCustomEvent(eventType, params)
}
