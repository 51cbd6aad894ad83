package domain

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending             Status = "pending"
	StatusConfirmed           Status = "confirmed"
	StatusInProgress          Status = "in_progress"
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusCompleted           Status = "completed"
	StatusDeclined            Status = "declined"
	StatusCancelled           Status = "cancelled"
)

// IsTerminal reports whether no further transitions leave s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Role is the capacity an actor claims when acting on a booking.
type Role string

const (
	RoleClient  Role = "client"
	RoleArtisan Role = "artisan"
	RoleAdmin   Role = "admin"
)

// PaymentMethod is fixed at booking creation.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentTransfer, PaymentCard:
		return true
	}
	return false
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}
