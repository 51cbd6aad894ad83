package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"naco/internal/domain"
	"naco/internal/domain/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

func (r ReviewRepository) db() *sql.DB { return pickDB(r.DB) }

// CreateReview inserts rv. A second review for the same booking yields ConflictError.
func (r ReviewRepository) CreateReview(ctx context.Context, rv models.Review) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO reviews (id, booking_id, reviewer_id, artisan_id, rating, text, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		rv.ID, rv.BookingID, rv.ReviewerID, rv.ArtisanID, rv.Rating, rv.Text, rv.CreatedAt,
	)
	if isDuplicateKey(err) {
		return domain.ConflictError{Resource: "review", Msg: "booking already reviewed", Err: err}
	}
	return err
}

func (r ReviewRepository) HasReviewForBooking(ctx context.Context, bookingID string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, fmt.Errorf("db not available")
	}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE booking_id=?`, bookingID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// RatingsForArtisan returns every rating ever recorded for the artisan.
func (r ReviewRepository) RatingsForArtisan(ctx context.Context, artisanID string) ([]int, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	rows, err := db.QueryContext(ctx, `SELECT rating FROM reviews WHERE artisan_id=?`, artisanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
