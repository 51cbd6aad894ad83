package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
)

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HasTable reports whether table exists in the current schema.
func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		// bad connection -> false, caller decides
		if errors.Is(err, driver.ErrBadConn) {
			log.Printf("[DB] HasTable %s: driver.ErrBadConn", table)
		}
		return false
	}
	return name.Valid && name.String != ""
}

type tableDDL struct {
	name string
	ddl  string
}

var schema = []tableDDL{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL DEFAULT '',
	role VARCHAR(20) NOT NULL DEFAULT 'client',
	trade VARCHAR(100) NOT NULL DEFAULT '',
	location VARCHAR(255) NOT NULL DEFAULT '',
	rate DECIMAL(12,2) NOT NULL DEFAULT 0,
	completed_jobs INT NOT NULL DEFAULT 0,
	rating DECIMAL(3,1) NOT NULL DEFAULT 0,
	password_hash VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_users_email (email),
	KEY idx_users_role_trade (role, trade)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) NOT NULL PRIMARY KEY,
	client_id CHAR(36) NOT NULL,
	artisan_id CHAR(36) NOT NULL,
	service VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	location VARCHAR(255) NOT NULL,
	scheduled_date VARCHAR(10) NOT NULL,
	scheduled_time VARCHAR(8) NOT NULL,
	amount DECIMAL(12,2) NOT NULL,
	payment_method VARCHAR(20) NOT NULL,
	status VARCHAR(30) NOT NULL DEFAULT 'pending',
	reference VARCHAR(32) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_bookings_reference (reference),
	KEY idx_bookings_client (client_id),
	KEY idx_bookings_artisan (artisan_id),
	KEY idx_bookings_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"reviews", `
CREATE TABLE IF NOT EXISTS reviews (
	id CHAR(36) NOT NULL PRIMARY KEY,
	booking_id CHAR(36) NOT NULL,
	reviewer_id CHAR(36) NOT NULL,
	artisan_id CHAR(36) NOT NULL,
	rating TINYINT NOT NULL,
	text TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_reviews_booking (booking_id),
	KEY idx_reviews_artisan (artisan_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"completed_jobs", `
CREATE TABLE IF NOT EXISTS completed_jobs (
	booking_id CHAR(36) NOT NULL PRIMARY KEY,
	artisan_id CHAR(36) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_completed_jobs_artisan (artisan_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"notifications", `
CREATE TABLE IF NOT EXISTS notifications (
	id CHAR(36) NOT NULL PRIMARY KEY,
	recipient_id CHAR(36) NOT NULL,
	type VARCHAR(50) NOT NULL,
	title VARCHAR(255) NOT NULL,
	message TEXT NOT NULL,
	is_read TINYINT(1) NOT NULL DEFAULT 0,
	data JSON NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_notifications_recipient (recipient_id, is_read)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range schema {
		if HasTable(ctx, db, t.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Printf("[DB] created table %s", t.name)
	}
	return nil
}
