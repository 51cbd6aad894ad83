package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"naco/internal/domain"
	"naco/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB { return pickDB(r.DB) }

const bookingColumns = `id, client_id, artisan_id, service, description, location,
	scheduled_date, scheduled_time, amount, payment_method, status, reference,
	created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	var method, status string
	err := row.Scan(
		&b.ID,
		&b.ClientID,
		&b.ArtisanID,
		&b.Service,
		&b.Description,
		&b.Location,
		&b.ScheduledDate,
		&b.ScheduledTime,
		&b.Amount,
		&method,
		&status,
		&b.Reference,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	b.PaymentMethod = domain.PaymentMethod(method)
	b.Status = domain.Status(status)
	return b, err
}

// CreateBooking inserts b. A reused reference yields ConflictError.
func (r BookingRepository) CreateBooking(ctx context.Context, b models.Booking) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.ClientID, b.ArtisanID, b.Service, b.Description, b.Location,
		b.ScheduledDate, b.ScheduledTime, b.Amount, string(b.PaymentMethod), string(b.Status), b.Reference,
		b.CreatedAt, b.UpdatedAt,
	)
	if isDuplicateKey(err) {
		return domain.ConflictError{Resource: "booking", Msg: "reference already used", Err: err}
	}
	return err
}

func (r BookingRepository) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	db := r.db()
	if db == nil {
		return models.Booking{}, fmt.Errorf("db not available")
	}
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id, Err: err}
	}
	return b, err
}

// ListBookingsFor returns bookings where userID is client or artisan, newest first.
func (r BookingRepository) ListBookingsFor(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE client_id=? OR artisan_id=? ORDER BY created_at DESC`, userID, userID)
}

func (r BookingRepository) ListBookingsByStatus(ctx context.Context, status domain.Status) ([]models.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status=? ORDER BY scheduled_date ASC, scheduled_time ASC`, string(status))
}

func (r BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBookingStatus moves id from -> to only if the stored status is still from.
// It returns false when another writer got there first.
func (r BookingRepository) UpdateBookingStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	db := r.db()
	if db == nil {
		return false, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx,
		`UPDATE bookings SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
