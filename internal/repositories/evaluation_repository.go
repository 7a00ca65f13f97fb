package repositories

import (
	"context"

	"github.com/ludolist/backend/internal/models"
)

// EvaluationRepository defines the data access contract for game evaluations.
type EvaluationRepository interface {
	FindByUserAndGame(ctx context.Context, userID string, gameID int64) (models.Evaluation, error)
	FindByID(ctx context.Context, id int64) (models.Evaluation, error)
	Insert(ctx context.Context, evaluation models.Evaluation) (models.Evaluation, error)
	Update(ctx context.Context, evaluation models.Evaluation) (models.Evaluation, error)
	Delete(ctx context.Context, id int64) error
	ListForGame(ctx context.Context, gameID int64) ([]models.Evaluation, error)
}
