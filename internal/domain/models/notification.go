package models

import "time"

type NotificationType string

const (
	NotifBookingCreated      NotificationType = "booking_created"
	NotifBookingConfirmed    NotificationType = "booking_confirmed"
	NotifBookingDeclined     NotificationType = "booking_declined"
	NotifBookingCancelled    NotificationType = "booking_cancelled"
	NotifBookingStarted      NotificationType = "booking_started"
	NotifCompletionRequested NotificationType = "completion_requested"
	NotifCompletionConfirmed NotificationType = "completion_confirmed"
	NotifCompletionRejected  NotificationType = "completion_rejected"
	NotifBookingReminder     NotificationType = "booking_reminder"
	NotifNewReview           NotificationType = "new_review"
)

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipientId"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	Data        map[string]any   `json:"data,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}
