package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/test/mocks"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishStatusChanged(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(ch, "request-status", zap.NewNop())
	evt := mocks.CreateTestStatusEvent()

	require.NoError(t, broker.PublishStatusChanged(context.Background(), evt))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "request-status", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ports.OutboxEventType, msg.Type)
	assert.Equal(t, ports.TableEvents, msg.Headers["entity"])

	var got ports.StatusChangedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, evt, got)
}

func TestPublishStatusChanged_ExpiredContext(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(ch, "request-status", zap.NewNop())
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := broker.PublishStatusChanged(ctx, mocks.CreateTestStatusEvent())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ch.published)
}

func TestPublishStatusChanged_BreakerOpensAfterFailures(t *testing.T) {
	boom := errors.New("channel closed")
	ch := &fakeChannel{err: boom}
	broker := newBroker(ch, "request-status", zap.NewNop())

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, broker.PublishStatusChanged(context.Background(), mocks.CreateTestStatusEvent()), boom)
	}
	// Tripped: the channel is no longer called.
	ch.err = nil
	err := broker.PublishStatusChanged(context.Background(), mocks.CreateTestStatusEvent())
	assert.Error(t, err)
	assert.Empty(t, ch.published)
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	broker := newBroker(ch, "q", zap.NewNop())
	require.NoError(t, broker.Close())
	assert.True(t, ch.closed)
}
