package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/utils"
)

// MemoryStore keeps bookings, users, reviews and notifications in process.
// It mirrors the MySQL repositories (unique reference, unique email, one review
// per booking, one completed job per booking, compare-and-swap status) and
// backs STORAGE=memory and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	bookings      map[string]models.Booking
	references    map[string]string
	users         map[string]models.User
	emails        map[string]string
	reviews       map[string]models.Review
	completedJobs map[string]string // booking id -> artisan id
	notifications []models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings:      map[string]models.Booking{},
		references:    map[string]string{},
		users:         map[string]models.User{},
		emails:        map[string]string{},
		reviews:       map[string]models.Review{},
		completedJobs: map[string]string{},
	}
}

// bookings

func (m *MemoryStore) CreateBooking(_ context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, used := m.references[b.Reference]; used {
		return domain.ConflictError{Resource: "booking", Msg: "reference already used"}
	}
	if _, exists := m.bookings[b.ID]; exists {
		return domain.ConflictError{Resource: "booking", Msg: "id already used"}
	}
	m.bookings[b.ID] = b
	m.references[b.Reference] = b.ID
	return nil
}

func (m *MemoryStore) GetBooking(_ context.Context, id string) (models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return b, nil
}

func (m *MemoryStore) ListBookingsFor(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.HasParticipant(userID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListBookingsByStatus(_ context.Context, status domain.Status) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledDate+out[i].ScheduledTime < out[j].ScheduledDate+out[j].ScheduledTime
	})
	return out, nil
}

func (m *MemoryStore) UpdateBookingStatus(_ context.Context, id string, from, to domain.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = utils.NowUTC()
	m.bookings[id] = b
	return true, nil
}

// directory

func (m *MemoryStore) CreateUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, used := m.emails[email]; used && email != "" {
		return domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}
	u.Email = email
	m.users[u.ID] = u
	if email != "" {
		m.emails[email] = u.ID
	}
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	id, ok := m.emails[email]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user", ID: email}
	}
	return m.users[id], nil
}

func (m *MemoryStore) ListArtisans(_ context.Context, trade string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trade = strings.TrimSpace(trade)
	out := []models.User{}
	for _, u := range m.users {
		if u.Role != domain.RoleArtisan {
			continue
		}
		if trade != "" && !strings.EqualFold(u.Trade, trade) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].CompletedJobs > out[j].CompletedJobs
	})
	return out, nil
}

func (m *MemoryStore) IncrementCompletedJobs(_ context.Context, artisanID, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, counted := m.completedJobs[bookingID]; counted {
		return nil
	}
	u, ok := m.users[artisanID]
	if !ok || u.Role != domain.RoleArtisan {
		return domain.NotFoundError{Resource: "artisan", ID: artisanID}
	}
	u.CompletedJobs++
	m.users[artisanID] = u
	m.completedJobs[bookingID] = artisanID
	return nil
}

func (m *MemoryStore) SetArtisanRating(_ context.Context, artisanID string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[artisanID]
	if !ok || u.Role != domain.RoleArtisan {
		return domain.NotFoundError{Resource: "artisan", ID: artisanID}
	}
	u.Rating = rating
	m.users[artisanID] = u
	return nil
}

// reviews

func (m *MemoryStore) CreateReview(_ context.Context, rv models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.reviews[rv.BookingID]; exists {
		return domain.ConflictError{Resource: "review", Msg: "booking already reviewed"}
	}
	m.reviews[rv.BookingID] = rv
	return nil
}

func (m *MemoryStore) HasReviewForBooking(_ context.Context, bookingID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.reviews[bookingID]
	return ok, nil
}

func (m *MemoryStore) RatingsForArtisan(_ context.Context, artisanID string) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []int{}
	for _, rv := range m.reviews {
		if rv.ArtisanID == artisanID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

// notifications

func (m *MemoryStore) CreateNotification(_ context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *MemoryStore) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.RecipientID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *MemoryStore) MarkNotificationRead(_ context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].RecipientID == userID {
			m.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.notifications {
		if m.notifications[i].RecipientID == userID && !m.notifications[i].Read {
			m.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}
