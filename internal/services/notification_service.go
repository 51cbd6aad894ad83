package services

import (
	"context"
	"fmt"
	"strings"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/utils"
)

// NotificationService is the recipient-facing inbox.
type NotificationService struct {
	Store NotificationStore
}

func (s NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	out, err := s.Store.ListNotifications(ctx, strings.TrimSpace(userID), unreadOnly)
	if err != nil {
		return nil, domain.InternalError{Msg: "list notifications", Err: err}
	}
	return out, nil
}

// MarkRead marks one notification read. Only its recipient may do so;
// anyone else sees NotFound.
func (s NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ValidationError{Field: "id", Msg: "is required"}
	}
	ok, err := s.Store.MarkNotificationRead(ctx, id, strings.TrimSpace(userID))
	if err != nil {
		return domain.InternalError{Msg: "mark notification read", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "notification", ID: id}
	}
	return nil
}

func (s NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.Store.MarkAllNotificationsRead(ctx, strings.TrimSpace(userID))
	if err != nil {
		return 0, domain.InternalError{Msg: "mark notifications read", Err: err}
	}
	utils.LogCtx(ctx, "notify", "read_all", fmt.Sprintf("user=%s count=%d", userID, n))
	return n, nil
}
