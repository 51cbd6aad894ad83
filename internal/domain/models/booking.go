package models

import (
	"time"

	"naco/internal/domain"
)

// Booking is a single engagement between a client and an artisan.
// Only Status and UpdatedAt change after creation.
type Booking struct {
	ID            string               `json:"id"`
	ClientID      string               `json:"clientId"`
	ArtisanID     string               `json:"artisanId"`
	Service       string               `json:"service"`
	Description   string               `json:"description"`
	Location      string               `json:"location"`
	ScheduledDate string               `json:"scheduledDate"`
	ScheduledTime string               `json:"scheduledTime"`
	Amount        float64              `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Status        domain.Status        `json:"status"`
	Reference     string               `json:"reference"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// HasParticipant reports whether userID is the booking's client or artisan.
func (b Booking) HasParticipant(userID string) bool {
	return userID != "" && (b.ClientID == userID || b.ArtisanID == userID)
}

// BookingInput carries createBooking arguments.
type BookingInput struct {
	ClientID      string  `json:"clientId" validate:"required"`
	ArtisanID     string  `json:"artisanId" validate:"required"`
	Service       string  `json:"service" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Location      string  `json:"location" validate:"required"`
	Date          string  `json:"date" validate:"required"`
	Time          string  `json:"time" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,payment_method"`
}
