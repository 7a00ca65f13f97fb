package repositories

import (
	"context"

	"github.com/ludolist/backend/internal/models"
)

// ListRepository defines the data access contract for per-user game lists.
type ListRepository interface {
	Exists(ctx context.Context, userID string, gameID int64, kind models.ListKind) (bool, error)
	Insert(ctx context.Context, membership models.ListMembership) error
	Delete(ctx context.Context, userID string, gameID int64, kind models.ListKind) error
	ListGamesForUser(ctx context.Context, userID string, kind models.ListKind) ([]models.Game, error)
}
