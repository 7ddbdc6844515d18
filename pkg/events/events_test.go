package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	got []RideEvent
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, ev RideEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti_DeliversToAll(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("broker down")}
	c := &recordingPublisher{}

	err := Multi{a, nil, b, c}.Publish(context.Background(), RideEvent{Type: TypeRidePaid, RideID: "R1"})

	assert.Error(t, err)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1, "a failing publisher must not stop the rest")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), RideEvent{}))
}
