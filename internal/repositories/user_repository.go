package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"naco/internal/domain"
	"naco/internal/domain/models"
)

// UserRepository is the MySQL-backed Directory.
type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB { return pickDB(r.DB) }

const userColumns = `id, name, email, phone, role, trade, location, rate,
	completed_jobs, rating, password_hash, created_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&role,
		&u.Trade,
		&u.Location,
		&u.Rate,
		&u.CompletedJobs,
		&u.Rating,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	u.Role = domain.Role(role)
	return u, err
}

func (r UserRepository) CreateUser(ctx context.Context, u models.User) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, strings.ToLower(u.Email), u.Phone, string(u.Role), u.Trade, u.Location, u.Rate,
		u.CompletedJobs, u.Rating, u.PasswordHash, u.CreatedAt,
	)
	if isDuplicateKey(err) {
		return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
	}
	return err
}

func (r UserRepository) GetUser(ctx context.Context, id string) (models.User, error) {
	return r.getOne(ctx, "user", id, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
}

func (r UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "user", email, `SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email)
}

func (r UserRepository) getOne(ctx context.Context, resource, key, query string, args ...any) (models.User, error) {
	db := r.db()
	if db == nil {
		return models.User{}, fmt.Errorf("db not available")
	}
	u, err := scanUser(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: resource, ID: key, Err: err}
	}
	return u, err
}

// ListArtisans returns artisans, optionally filtered by trade, best rated first.
func (r UserRepository) ListArtisans(ctx context.Context, trade string) ([]models.User, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE role=?`
	args := []any{string(domain.RoleArtisan)}
	if t := strings.TrimSpace(trade); t != "" {
		query += ` AND trade=?`
		args = append(args, t)
	}
	query += ` ORDER BY rating DESC, completed_jobs DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// IncrementCompletedJobs records bookingID in the completed_jobs ledger and
// bumps the counter in the same transaction. A booking already in the ledger
// was counted by an earlier attempt and is left alone.
func (r UserRepository) IncrementCompletedJobs(ctx context.Context, artisanID, bookingID string) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO completed_jobs (booking_id, artisan_id) VALUES (?,?)`, bookingID, artisanID)
	if isDuplicateKey(err) {
		return nil
	}
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE users SET completed_jobs = completed_jobs + 1 WHERE id=? AND role=?`, artisanID, string(domain.RoleArtisan))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "artisan", ID: artisanID}
	}
	return tx.Commit()
}

// SetArtisanRating does not check RowsAffected: MySQL reports 0 when the value is unchanged.
func (r UserRepository) SetArtisanRating(ctx context.Context, artisanID string, rating float64) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	_, err := db.ExecContext(ctx, `UPDATE users SET rating=? WHERE id=? AND role=?`, rating, artisanID, string(domain.RoleArtisan))
	return err
}
