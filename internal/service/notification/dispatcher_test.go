package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorider/gorider-api/internal/domain/coupon"
	"github.com/gorider/gorider-api/internal/domain/payment"
	"github.com/gorider/gorider-api/internal/domain/user"
	"github.com/gorider/gorider-api/internal/testutil/memstore"
	"github.com/gorider/gorider-api/pkg/logger"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []Message
	failTo map[string]bool
	block  chan struct{}
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[msg.To] {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

type fakeFailureLog struct {
	mu      sync.Mutex
	entries []Failure
}

func (f *fakeFailureLog) Push(_ context.Context, entry interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry.(Failure))
	return nil
}

func seedUsers(t *testing.T, emails ...string) *memstore.Users {
	t.Helper()
	users := &memstore.Users{}
	for _, e := range emails {
		require.NoError(t, users.Create(context.Background(), &user.User{Email: e, Role: user.RoleUser}))
	}
	return users
}

func TestSendReceipt_Delivers(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, seedUsers(t), nil, nil, logger.NewNop(), Config{Workers: 1, QueueSize: 4})
	d.Start()

	d.SendReceipt("a@x.com", payment.Payment{RideID: "R1", Price: 42, TransactionID: "pi_1"})
	d.Close()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@x.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "R1")
	assert.Contains(t, sender.sent[0].Body, "$42.00")
	assert.Contains(t, sender.sent[0].Body, "pi_1")
}

func TestBroadcast_OneFailureDoesNotAbortOthers(t *testing.T) {
	sender := &fakeSender{failTo: map[string]bool{"b@x.com": true}}
	failures := &fakeFailureLog{}
	d := NewDispatcher(sender, seedUsers(t, "a@x.com", "b@x.com", "c@x.com"), failures, nil, logger.NewNop(), Config{Workers: 2, QueueSize: 4})
	d.Start()

	d.BroadcastToAllUsers("Offer", "Body")
	d.Close()

	assert.ElementsMatch(t, []string{"a@x.com", "c@x.com"}, sender.recipients())
	require.Len(t, failures.entries, 1)
	assert.Equal(t, KindBroadcast, failures.entries[0].Kind)
	assert.Equal(t, "b@x.com", failures.entries[0].Recipient)
}

func TestBroadcast_RecipientListFailure(t *testing.T) {
	users := &memstore.Users{Err: memstore.ErrUnavailable}
	failures := &fakeFailureLog{}
	d := NewDispatcher(&fakeSender{}, users, failures, nil, logger.NewNop(), Config{Workers: 1})
	d.Start()

	d.BroadcastToAllUsers("Offer", "Body")
	d.Close()

	require.Len(t, failures.entries, 1)
	assert.Contains(t, failures.entries[0].Error, "unavailable")
}

func TestEnqueue_FullQueueIsLoggedNotBlocking(t *testing.T) {
	block := make(chan struct{})
	sender := &fakeSender{block: block}
	failures := &fakeFailureLog{}
	d := NewDispatcher(sender, seedUsers(t), failures, nil, logger.NewNop(), Config{Workers: 1, QueueSize: 1})
	d.Start()

	// one in flight, one queued, the rest overflow
	for i := 0; i < 5; i++ {
		d.SendReceipt("a@x.com", payment.Payment{RideID: "R1"})
	}
	close(block)
	d.Close()

	failures.mu.Lock()
	defer failures.mu.Unlock()
	assert.NotEmpty(t, failures.entries)
	for _, f := range failures.entries {
		assert.Equal(t, ErrQueueFull.Error(), f.Error)
	}
}

func TestEnqueue_AfterClose(t *testing.T) {
	failures := &fakeFailureLog{}
	d := NewDispatcher(&fakeSender{}, seedUsers(t), failures, nil, logger.NewNop(), Config{Workers: 1})
	d.Start()
	d.Close()
	d.Close()

	d.SendReceipt("a@x.com", payment.Payment{RideID: "R1"})
	assert.Len(t, failures.entries, 1)
}

func TestCouponAnnouncement(t *testing.T) {
	subject, body := CouponAnnouncement(coupon.Coupon{Name: "SUMMER10", Code: "S10", Discount: 10})
	assert.Contains(t, subject, "SUMMER10")
	assert.Contains(t, body, "S10")
	assert.Contains(t, body, "10%")
}
