package services

import (
	"context"

	"naco/internal/domain"
	"naco/internal/domain/models"
)

// BookingStore persists bookings. UpdateBookingStatus is a compare-and-swap:
// it reports false when the booking is not currently in status from.
type BookingStore interface {
	CreateBooking(ctx context.Context, b models.Booking) error
	GetBooking(ctx context.Context, id string) (models.Booking, error)
	ListBookingsFor(ctx context.Context, userID string) ([]models.Booking, error)
	ListBookingsByStatus(ctx context.Context, status domain.Status) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, from, to domain.Status) (bool, error)
}

// Directory holds user and artisan profile records.
// IncrementCompletedJobs counts a booking at most once for its artisan, so it
// is safe to call again after an error whose outcome is unknown.
type Directory interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListArtisans(ctx context.Context, trade string) ([]models.User, error)
	IncrementCompletedJobs(ctx context.Context, artisanID, bookingID string) error
	SetArtisanRating(ctx context.Context, artisanID string, rating float64) error
}

type ReviewStore interface {
	CreateReview(ctx context.Context, rv models.Review) error
	HasReviewForBooking(ctx context.Context, bookingID string) (bool, error)
	RatingsForArtisan(ctx context.Context, artisanID string) ([]int, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n models.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

// NotificationSink accepts notifications for best-effort delivery.
// Enqueue must not block the caller.
type NotificationSink interface {
	Enqueue(ctx context.Context, recipientID string, typ models.NotificationType, title, message string, data map[string]any)
}

// Store is everything a single backend provides.
type Store interface {
	BookingStore
	Directory
	ReviewStore
	NotificationStore
}
