package infrastructure

import (
	"context"
	"errors"
	"testing"

	"rallyledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []events.Event
	failTypes map[events.EventType]bool
}

func (r *recordingPublisher) Publish(event events.Event) error {
	if r.failTypes[event.Type()] {
		return errors.New("nats unavailable")
	}
	r.published = append(r.published, event)
	return nil
}

func TestNATSTransactionalPublisher_FlushAfterCommit(t *testing.T) {
	t.Parallel()

	real := &recordingPublisher{}
	publisher := NewNATSTransactionalPublisher(real)

	require.NoError(t, publisher.Publish(events.CreditsGrantedEvent{UserID: "user-1", Amount: 100}))
	require.NoError(t, publisher.Publish(events.CreditsConfirmedEvent{UserID: "user-1", Amount: 100}))

	// Nothing leaves the buffer before the flush
	assert.Empty(t, real.published)

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Len(t, real.published, 2)

	// A second flush does not republish
	require.NoError(t, publisher.Flush(context.Background()))
	assert.Len(t, real.published, 2)
}

func TestNATSTransactionalPublisher_DiscardOnRollback(t *testing.T) {
	t.Parallel()

	real := &recordingPublisher{}
	publisher := NewNATSTransactionalPublisher(real)

	require.NoError(t, publisher.Publish(events.CreditsGrantedEvent{UserID: "user-1", Amount: 100}))
	publisher.Discard()

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Empty(t, real.published)
}

func TestNATSTransactionalPublisher_FailedEventDoesNotBlockRest(t *testing.T) {
	t.Parallel()

	real := &recordingPublisher{
		failTypes: map[events.EventType]bool{events.EventTypeCreditsGranted: true},
	}
	publisher := NewNATSTransactionalPublisher(real)

	require.NoError(t, publisher.Publish(events.CreditsGrantedEvent{UserID: "user-1", Amount: 100}))
	require.NoError(t, publisher.Publish(events.RedemptionCommittedEvent{RequestID: "req-1"}))

	require.NoError(t, publisher.Flush(context.Background()))
	require.Len(t, real.published, 1)
	assert.Equal(t, events.EventTypeRedemptionCommitted, real.published[0].Type())
}
