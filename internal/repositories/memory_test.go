package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"naco/internal/domain"
	"naco/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_StatusCASHasOneWinner(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.CreateBooking(ctx, models.Booking{ID: "b1", Reference: "NACO-1", Status: domain.StatusPending}))

	var wins int32
	var wg sync.WaitGroup
	for _, to := range []domain.Status{domain.StatusConfirmed, domain.StatusDeclined, domain.StatusCancelled, domain.StatusConfirmed} {
		wg.Add(1)
		go func(to domain.Status) {
			defer wg.Done()
			ok, err := m.UpdateBookingStatus(ctx, "b1", domain.StatusPending, to)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}(to)
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}

func TestMemoryStore_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.CreateBooking(ctx, models.Booking{ID: "b1", Reference: "NACO-1"}))
	assert.True(t, domain.IsConflict(m.CreateBooking(ctx, models.Booking{ID: "b2", Reference: "NACO-1"})))

	require.NoError(t, m.CreateUser(ctx, models.User{ID: "u1", Email: "Ada@Example.com"}))
	assert.True(t, domain.IsConflict(m.CreateUser(ctx, models.User{ID: "u2", Email: "ada@example.com"})))

	require.NoError(t, m.CreateReview(ctx, models.Review{ID: "r1", BookingID: "b1"}))
	assert.True(t, domain.IsConflict(m.CreateReview(ctx, models.Review{ID: "r2", BookingID: "b1"})))
}

func TestMemoryStore_Notifications(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.CreateNotification(ctx, models.Notification{ID: "n1", RecipientID: "c1"}))
	require.NoError(t, m.CreateNotification(ctx, models.Notification{ID: "n2", RecipientID: "c1"}))
	require.NoError(t, m.CreateNotification(ctx, models.Notification{ID: "n3", RecipientID: "a1"}))

	list, err := m.ListNotifications(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID, "newest first")

	ok, err := m.MarkNotificationRead(ctx, "n3", "c1")
	require.NoError(t, err)
	assert.False(t, ok, "only the recipient may mark read")

	ok, err = m.MarkNotificationRead(ctx, "n1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err := m.ListNotifications(ctx, "c1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	n, err := m.MarkAllNotificationsRead(ctx, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryStore_IncrementCompletedJobs(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.CreateUser(ctx, models.User{ID: "c1", Email: "c@x.io", Role: domain.RoleClient}))
	require.NoError(t, m.CreateUser(ctx, models.User{ID: "a1", Email: "a@x.io", Role: domain.RoleArtisan}))

	assert.True(t, domain.IsNotFound(m.IncrementCompletedJobs(ctx, "c1", "b0")))
	require.NoError(t, m.IncrementCompletedJobs(ctx, "a1", "b1"))
	require.NoError(t, m.IncrementCompletedJobs(ctx, "a1", "b1"), "same booking again is a no-op")
	require.NoError(t, m.IncrementCompletedJobs(ctx, "a1", "b2"))

	u, err := m.GetUser(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.CompletedJobs)
}
