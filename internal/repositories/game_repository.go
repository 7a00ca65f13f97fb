package repositories

import (
	"context"

	"github.com/ludolist/backend/internal/models"
)

// GameRepository defines the data access contract for the game catalog.
type GameRepository interface {
	List(ctx context.Context) ([]models.Game, error)
	Search(ctx context.Context, query string) ([]models.Game, error)
	Find(ctx context.Context, id int64) (models.Game, error)
	Create(ctx context.Context, game models.Game) (models.Game, error)
	Update(ctx context.Context, game models.Game) (models.Game, error)
	DeleteCascade(ctx context.Context, id int64) error
	ListRatings(ctx context.Context) ([]models.GameRating, error)
}
