package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/metrics"
	"naco/internal/repositories"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingStore holds every write until release is closed.
type blockingStore struct {
	*repositories.MemoryStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) CreateNotification(ctx context.Context, n models.Notification) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.MemoryStore.CreateNotification(ctx, n)
}

type failingNotifications struct {
	*repositories.MemoryStore
}

func (failingNotifications) CreateNotification(context.Context, models.Notification) error {
	return errors.New("notifications table locked")
}

func TestDispatcher_PersistsAndDrainsOnClose(t *testing.T) {
	store := repositories.NewMemoryStore()
	d := NewDispatcher(store, nil, nil, DispatcherConfig{Buffer: 8, Workers: 2})

	for i := 0; i < 5; i++ {
		d.Enqueue(context.Background(), "c1", models.NotifBookingConfirmed, "Booking confirmed", "msg", map[string]any{"bookingId": "b1"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	list, err := store.ListNotifications(context.Background(), "c1", true)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.False(t, list[0].Read)
	assert.NotEmpty(t, list[0].ID)

	err = d.TryEnqueue(context.Background(), "c1", models.NotifBookingConfirmed, "late", "", nil)
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	store := &blockingStore{
		MemoryStore: repositories.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	m := metrics.New(nil)
	d := NewDispatcher(store, nil, m, DispatcherConfig{Buffer: 1, Workers: 1})

	require.NoError(t, d.TryEnqueue(context.Background(), "c1", models.NotifBookingReminder, "one", "", nil))
	<-store.started
	require.NoError(t, d.TryEnqueue(context.Background(), "c1", models.NotifBookingReminder, "two", "", nil))

	done := make(chan error, 1)
	go func() {
		done <- d.TryEnqueue(context.Background(), "c1", models.NotifBookingReminder, "three", "", nil)
	}()
	select {
	case err := <-done:
		assert.Error(t, err, "a full queue rejects instead of blocking")
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	close(store.release)
	require.NoError(t, d.Close(context.Background()))

	list, err := store.ListNotifications(context.Background(), "c1", false)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationCounter("dropped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationCounter("stored")))
}

func TestDispatcher_StoreFailureDoesNotFailTransition(t *testing.T) {
	lc, store, _ := newLifecycle(t)
	m := metrics.New(nil)
	d := NewDispatcher(failingNotifications{store}, nil, m, DispatcherConfig{Buffer: 4, Workers: 1})
	lc.Notifier = d

	b := mustCreate(t, lc, "c1", "a1")
	b = mustTransition(t, lc, b, "a1", domain.RoleArtisan, "accept")
	assert.Equal(t, domain.StatusConfirmed, b.Status)

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationCounter("failed")))
}
