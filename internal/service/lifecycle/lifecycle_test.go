package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/ride"
	"github.com/gorider/gorider-api/internal/testutil/memstore"
	"github.com/gorider/gorider-api/pkg/events"
	"github.com/gorider/gorider-api/pkg/logger"
)

type paymentStore struct {
	*memstore.Payments
}

func (p paymentStore) RecordPayment(ctx context.Context, rec *payment.Payment) error {
	return p.Create(ctx, rec)
}

type receiptSpy struct {
	mu   sync.Mutex
	sent []string
}

func (r *receiptSpy) SendReceipt(recipient string, _ payment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recipient)
}

type eventSpy struct {
	mu     sync.Mutex
	events []events.RideEvent
}

func (e *eventSpy) Publish(_ context.Context, ev events.RideEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *eventSpy) types() []string {
	var out []string
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type reconcileSpy struct {
	entries []Reconciliation
}

func (r *reconcileSpy) Push(_ context.Context, entry interface{}) error {
	r.entries = append(r.entries, entry.(Reconciliation))
	return nil
}

type fixture struct {
	svc       *Service
	rides     *memstore.Rides
	payments  *memstore.Payments
	receipts  *receiptSpy
	events    *eventSpy
	reconcile *reconcileSpy
}

func newFixture() *fixture {
	f := &fixture{
		rides:     &memstore.Rides{},
		payments:  &memstore.Payments{},
		receipts:  &receiptSpy{},
		events:    &eventSpy{},
		reconcile: &reconcileSpy{},
	}
	f.svc = NewService(Deps{
		Rides:     f.rides,
		Payments:  paymentStore{f.payments},
		Receipts:  f.receipts,
		Events:    f.events,
		Reconcile: f.reconcile,
		Logger:    logger.NewNop(),
	})
	return f
}

func TestCompletePayment_CleansUpPendingRide(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.svc.RequestRide(ctx, &ride.PendingRide{RideID: "R1", UserEmail: "a@x.com", Status: ride.StatusAccepted}))

	res, err := f.svc.CompletePayment(ctx, &payment.Payment{RideID: "R1", Price: 42, UserEmail: "a@x.com", TransactionID: "pi_1"})
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, OutcomePaidAndCleanedUp, res.Outcome)
	assert.Equal(t, MsgPaidAndCleanedUp, res.Message)

	stored, err := f.payments.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "R1", stored[0].RideID)
	assert.False(t, stored[0].Date.IsZero())

	_, found := f.rides.FindByRideID("R1")
	assert.False(t, found)

	assert.Equal(t, []string{"a@x.com"}, f.receipts.sent)
	assert.Empty(t, f.reconcile.entries)
	assert.Equal(t, []string{events.TypeRideRequested, events.TypeRidePaid}, f.events.types())
}

func TestCompletePayment_MissingRideIsPartialSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.svc.CompletePayment(ctx, &payment.Payment{RideID: "R404", Price: 10, UserEmail: "a@x.com"})
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, OutcomePaidNotCleanedUp, res.Outcome)
	assert.Equal(t, MsgPaidNotCleanedUp, res.Message)

	// receipt still goes out
	assert.Equal(t, []string{"a@x.com"}, f.receipts.sent)

	require.Len(t, f.reconcile.entries, 1)
	assert.Equal(t, "R404", f.reconcile.entries[0].RideID)
	assert.Equal(t, res.Payment.ID.Hex(), f.reconcile.entries[0].PaymentID)
	assert.Contains(t, f.events.types(), events.TypeRideCleanupFailed)
}

func TestCompletePayment_DeleteErrorIsPartialSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.svc.RequestRide(ctx, &ride.PendingRide{RideID: "R1", UserEmail: "a@x.com"}))
	f.rides.DeleteErr = memstore.ErrUnavailable

	res, err := f.svc.CompletePayment(ctx, &payment.Payment{RideID: "R1", Price: 42, UserEmail: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, OutcomePaidNotCleanedUp, res.Outcome)
	_, found := f.rides.FindByRideID("R1")
	assert.True(t, found)
	require.Len(t, f.reconcile.entries, 1)
	assert.Equal(t, memstore.ErrUnavailable.Error(), f.reconcile.entries[0].Reason)
}

func TestCompletePayment_UnconfirmedInsertLeavesRide(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.svc.RequestRide(ctx, &ride.PendingRide{RideID: "R1", UserEmail: "a@x.com"}))
	f.payments.Unconfirmed = true

	res, err := f.svc.CompletePayment(ctx, &payment.Payment{RideID: "R1", Price: 42, UserEmail: "a@x.com"})
	require.NoError(t, err)

	assert.False(t, res.Success())
	assert.Equal(t, OutcomePaymentFailed, res.Outcome)
	assert.Equal(t, MsgPaymentFailed, res.Message)

	_, found := f.rides.FindByRideID("R1")
	assert.True(t, found)
	assert.Empty(t, f.receipts.sent)
}

func TestCompletePayment_InsertError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.payments.Err = memstore.ErrUnavailable

	res, err := f.svc.CompletePayment(ctx, &payment.Payment{RideID: "R1"})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, memstore.ErrUnavailable))
	assert.Empty(t, f.receipts.sent)
}

func TestRequestRide_Defaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	r := &ride.PendingRide{UserEmail: "a@x.com", CarName: "Axio", TotalPrice: 12.5}
	require.NoError(t, f.svc.RequestRide(ctx, r))

	assert.Equal(t, ride.StatusPending, r.Status)
	assert.NotEmpty(t, r.RideID)
	assert.False(t, r.ID.IsZero())

	list, err := f.svc.ListRides(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *r, list[0])
}

func TestRequestRide_Status(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.RequestRide(ctx, &ride.PendingRide{RideID: "R1", Status: "   "})
	assert.ErrorIs(t, err, ride.ErrInvalidStatus)

	r := &ride.PendingRide{RideID: "R2", Status: "cancelled"}
	require.NoError(t, f.svc.RequestRide(ctx, r))
	stored, found := f.rides.FindByRideID("R2")
	require.True(t, found)
	assert.Equal(t, ride.Status("cancelled"), stored.Status)
}

func TestUpdateRide(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	r := &ride.PendingRide{RideID: "R1"}
	require.NoError(t, f.svc.RequestRide(ctx, r))

	price, used := 30.0, true
	update := ride.StatusUpdate{Status: ride.StatusAccepted, TotalPrice: &price, IsCouponUsed: &used}

	ok, err := f.svc.UpdateRide(ctx, r.ID, update)
	require.NoError(t, err)
	assert.True(t, ok)

	// unchanged record reports no modification
	ok, err = f.svc.UpdateRide(ctx, r.ID, update)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.UpdateRide(ctx, primitive.NewObjectID(), update)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.UpdateRide(ctx, r.ID, ride.StatusUpdate{Status: " "})
	assert.ErrorIs(t, err, ride.ErrInvalidStatus)

	_, err = f.svc.UpdateRide(ctx, r.ID, ride.StatusUpdate{})
	assert.ErrorIs(t, err, ride.ErrEmptyUpdate)

	stored, _ := f.rides.FindByRideID("R1")
	assert.Equal(t, ride.StatusAccepted, stored.Status)
	assert.Equal(t, 30.0, stored.TotalPrice)
	assert.True(t, stored.IsCouponUsed)
}

func TestUpdateRide_StatusOnlyKeepsPriceAndCoupon(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	r := &ride.PendingRide{RideID: "R1", TotalPrice: 42.5, IsCouponUsed: true}
	require.NoError(t, f.svc.RequestRide(ctx, r))

	ok, err := f.svc.UpdateRide(ctx, r.ID, ride.StatusUpdate{Status: "arrived"})
	require.NoError(t, err)
	assert.True(t, ok)

	stored, _ := f.rides.FindByRideID("R1")
	assert.Equal(t, ride.Status("arrived"), stored.Status)
	assert.Equal(t, 42.5, stored.TotalPrice)
	assert.True(t, stored.IsCouponUsed)
}

func TestCancelRide_Twice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	r := &ride.PendingRide{RideID: "R1"}
	require.NoError(t, f.svc.RequestRide(ctx, r))

	ok, err := f.svc.CancelRide(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CancelRide(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{events.TypeRideRequested, events.TypeRideCancelled}, f.events.types())
}
