package services

import (
	"context"
	"strings"

	"naco/internal/domain"
	"naco/internal/domain/models"
)

// DirectoryService serves public profile lookups.
type DirectoryService struct {
	Directory Directory
}

func (s DirectoryService) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := s.Directory.GetUser(ctx, strings.TrimSpace(id))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, err
		}
		return models.User{}, domain.InternalError{Msg: "load user", Err: err}
	}
	return u, nil
}

// ListArtisans returns artisans, best rated first, optionally filtered by trade.
func (s DirectoryService) ListArtisans(ctx context.Context, trade string) ([]models.User, error) {
	out, err := s.Directory.ListArtisans(ctx, strings.TrimSpace(trade))
	if err != nil {
		return nil, domain.InternalError{Msg: "list artisans", Err: err}
	}
	return out, nil
}
