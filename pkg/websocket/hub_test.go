package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorider/gorider-api/pkg/events"
	"github.com/gorider/gorider-api/pkg/logger"
)

func newTestClient(hub *Hub, userID, userType string) *Client {
	return NewClient(hub, nil, userID, userType, logger.NewNop())
}

func TestClientWants(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ev := events.RideEvent{Type: events.TypeRidePaid, RideID: "R1", UserEmail: "a@x.com", DriverEmail: "d@x.com"}

	dashboard := newTestClient(hub, "admin@x.com", TypeDashboard)
	rider := newTestClient(hub, "a@x.com", TypeRider)
	driver := newTestClient(hub, "d@x.com", TypeDriver)
	stranger := newTestClient(hub, "z@x.com", TypeRider)
	follower := newTestClient(hub, "f@x.com", TypeRider)
	follower.Subscribe("R1")

	assert.True(t, dashboard.wants(ev))
	assert.True(t, rider.wants(ev))
	assert.True(t, driver.wants(ev))
	assert.False(t, stranger.wants(ev))
	assert.True(t, follower.wants(ev))

	follower.Unsubscribe("R1")
	assert.False(t, follower.wants(ev))
}

func TestHub_DeliversToInterestedClients(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	rider := newTestClient(hub, "a@x.com", TypeRider)
	stranger := newTestClient(hub, "z@x.com", TypeRider)
	hub.Register(rider)
	hub.Register(stranger)

	require.NoError(t, hub.Publish(ctx, events.RideEvent{Type: events.TypeRideRequested, RideID: "R1", UserEmail: "a@x.com"}))

	select {
	case data := <-rider.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, events.TypeRideRequested, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("rider did not receive the event")
	}

	select {
	case <-stranger.Send:
		t.Fatal("stranger must not receive another rider's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(logger.NewNop())

	var dropped bool
	for i := 0; i < cap(hub.outbound)+1; i++ {
		if err := hub.Publish(context.Background(), events.RideEvent{RideID: "R1"}); err != nil {
			assert.ErrorIs(t, err, ErrFeedBacklogged)
			dropped = true
		}
	}
	assert.True(t, dropped)
}

func TestHub_RegisterAfterStop(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	late := newTestClient(hub, "a@x.com", TypeRider)
	hub.Register(late)
	hub.Unregister(late)

	_, open := <-late.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.GetActiveConnections())
}
