package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"naco/internal/domain/models"
)

type NotificationRepository struct {
	DB *sql.DB
}

func (r NotificationRepository) db() *sql.DB { return pickDB(r.DB) }

func (r NotificationRepository) CreateNotification(ctx context.Context, n models.Notification) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	var data any
	if len(n.Data) > 0 {
		raw, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("encode notification data: %w", err)
		}
		data = string(raw)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, type, title, message, is_read, data, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		n.ID, n.RecipientID, string(n.Type), n.Title, n.Message, n.Read, data, n.CreatedAt,
	)
	return err
}

// ListNotifications returns the recipient's notifications, newest first.
func (r NotificationRepository) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	query := `SELECT id, recipient_id, type, title, message, is_read, data, created_at
		FROM notifications WHERE recipient_id=?`
	if unreadOnly {
		query += ` AND is_read=0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var typ string
		var data sql.NullString
		if err := rows.Scan(&n.ID, &n.RecipientID, &typ, &n.Title, &n.Message, &n.Read, &data, &n.CreatedAt); err != nil {
			return out, err
		}
		n.Type = models.NotificationType(typ)
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &n.Data); err != nil {
				return out, fmt.Errorf("decode notification %s data: %w", n.ID, err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags id as read when it belongs to userID.
// The boolean is false when no such notification exists for that user.
func (r NotificationRepository) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, fmt.Errorf("db not available")
	}
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE id=? AND recipient_id=?`, id, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, nil
	}
	if _, err := db.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE id=? AND recipient_id=?`, id, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (r NotificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	res, err := db.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE recipient_id=? AND is_read=0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
