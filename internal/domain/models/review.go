package models

import "time"

type Review struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"bookingId"`
	ReviewerID string    `json:"reviewerId"`
	ArtisanID  string    `json:"artisanId"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewInput carries createReview arguments.
type ReviewInput struct {
	BookingID  string `json:"bookingId"`
	ReviewerID string `json:"reviewerId"`
	ArtisanID  string `json:"artisanId"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
}
