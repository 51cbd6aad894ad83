package services

import (
	"context"
	"testing"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Inbox(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	for _, n := range []models.Notification{
		{ID: "n1", RecipientID: "c1", Type: models.NotifBookingConfirmed, Title: "Booking confirmed"},
		{ID: "n2", RecipientID: "c1", Type: models.NotifCompletionRequested, Title: "Confirm completion"},
		{ID: "n3", RecipientID: "a1", Type: models.NotifBookingCreated, Title: "New booking request"},
	} {
		require.NoError(t, store.CreateNotification(ctx, n))
	}
	svc := NotificationService{Store: store}

	err := svc.MarkRead(ctx, "n3", "c1")
	assert.True(t, domain.IsNotFound(err), "only the recipient can mark read, got %v", err)

	require.NoError(t, svc.MarkRead(ctx, "n1", "c1"))
	unread, err := svc.List(ctx, "c1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n2", unread[0].ID)

	n, err := svc.MarkAllRead(ctx, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	all, err := svc.List(ctx, "c1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.True(t, domain.IsValidation(svc.MarkRead(ctx, " ", "c1")))
}
