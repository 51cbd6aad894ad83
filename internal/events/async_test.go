package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stalledBroker blocks every publish until release is closed.
type stalledBroker struct {
	release chan struct{}

	mu     sync.Mutex
	keys   []string
	closed bool
}

func (b *stalledBroker) PublishJSON(_ context.Context, key string, _ any) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, key)
	return nil
}

func (b *stalledBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *stalledBroker) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

func TestAsync_DoesNotWaitForBroker(t *testing.T) {
	broker := &stalledBroker{release: make(chan struct{})}
	a := NewAsync(broker, AsyncConfig{Buffer: 1})

	accepted, full := 0, 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			err := a.PublishJSON(context.Background(), "booking.confirmed", map[string]string{"id": "b1"})
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrQueueFull):
				full++
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishJSON blocked on a stalled broker")
	}
	assert.LessOrEqual(t, accepted, 2, "one in flight plus one buffered")
	assert.Equal(t, 10, accepted+full)

	close(broker.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))
	assert.Len(t, broker.published(), accepted)
	assert.True(t, broker.closed)
}

func TestAsync_ShutdownStopsIntake(t *testing.T) {
	broker := &stalledBroker{release: make(chan struct{})}
	close(broker.release)
	a := NewAsync(broker, AsyncConfig{})

	require.NoError(t, a.PublishJSON(context.Background(), "review.created", nil))
	require.NoError(t, a.Close())
	assert.Equal(t, []string{"review.created"}, broker.published())

	err := a.PublishJSON(context.Background(), "review.created", nil)
	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.NoError(t, a.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestAsync_ShutdownGivesUpOnStalledBroker(t *testing.T) {
	broker := &stalledBroker{release: make(chan struct{})}
	defer close(broker.release)
	a := NewAsync(broker, AsyncConfig{})
	require.NoError(t, a.PublishJSON(context.Background(), "booking.created", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Shutdown(ctx), context.DeadlineExceeded)
}
