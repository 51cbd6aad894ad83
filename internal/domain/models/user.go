package models

import (
	"time"

	"naco/internal/domain"
)

// User is a Directory record. Artisan-only fields stay zero for clients.
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	Role          domain.Role `json:"role"`
	Trade         string      `json:"trade,omitempty"`
	Location      string      `json:"location,omitempty"`
	Rate          float64     `json:"rate,omitempty"`
	CompletedJobs int         `json:"completedJobs"`
	Rating        float64     `json:"rating"`
	PasswordHash  string      `json:"-"`
	CreatedAt     time.Time   `json:"createdAt"`
}
