// Package reviews manages player evaluations of games: one rating and
// optional comment per player per game.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

var (
	// ErrNotAuthenticated indicates the caller has no current user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotAllowed indicates the caller may not modify the evaluation.
	ErrNotAllowed = errors.New("not allowed")
	// ErrInvalidRating indicates a rating outside the 1..5 scale.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// EvaluationStore is the persistence surface the service drives.
type EvaluationStore interface {
	FindByUserAndGame(ctx context.Context, userID string, gameID int64) (models.Evaluation, error)
	FindByID(ctx context.Context, id int64) (models.Evaluation, error)
	Insert(ctx context.Context, evaluation models.Evaluation) (models.Evaluation, error)
	Update(ctx context.Context, evaluation models.Evaluation) (models.Evaluation, error)
	Delete(ctx context.Context, id int64) error
	ListForGame(ctx context.Context, gameID int64) ([]models.Evaluation, error)
}

// Service applies the one-evaluation-per-player-per-game rule.
type Service struct {
	store   EvaluationStore
	logger  *slog.Logger
	NowFunc func() time.Time
}

// NewService constructs a review Service.
func NewService(store EvaluationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		logger:  logger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// GameReviews is the evaluation set for a game, split by viewer.
type GameReviews struct {
	Mine   *models.Evaluation  `json:"mine,omitempty"`
	Others []models.Evaluation `json:"others"`
}

// Submit records the caller's evaluation of a game. A second submission for
// the same game replaces the first instead of adding a row.
func (s *Service) Submit(ctx context.Context, userID string, gameID int64, rating int, comment string) (models.Evaluation, error) {
	if userID == "" {
		return models.Evaluation{}, ErrNotAuthenticated
	}
	if rating < 1 || rating > 5 {
		return models.Evaluation{}, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	ctx, span := logging.StartSpan(ctx, "reviews.submit")
	defer span.End()

	comment = strings.TrimSpace(comment)
	now := s.NowFunc()

	existing, err := s.store.FindByUserAndGame(ctx, userID, gameID)
	switch {
	case err == nil:
		existing.Rating = rating
		existing.Comment = comment
		existing.UpdatedAt = now
		return s.store.Update(ctx, existing)
	case errors.Is(err, repositories.ErrNotFound):
		// fall through to insert
	default:
		return models.Evaluation{}, fmt.Errorf("look up evaluation: %w", err)
	}

	created, err := s.store.Insert(ctx, models.Evaluation{
		UserID:    userID,
		GameID:    gameID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, repositories.ErrConflict) {
		return models.Evaluation{}, fmt.Errorf("insert evaluation: %w", err)
	}

	// A concurrent submission for the same (user, game) won the insert race.
	// Converge on the caller's values by updating the surviving row.
	s.logger.Debug("evaluation insert lost a race", "userId", userID, "gameId", gameID)
	existing, err = s.store.FindByUserAndGame(ctx, userID, gameID)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("recover racing evaluation: %w", err)
	}
	existing.Rating = rating
	existing.Comment = comment
	existing.UpdatedAt = now
	return s.store.Update(ctx, existing)
}

// Delete removes an evaluation. Players may delete their own; admins may
// delete anyone's.
func (s *Service) Delete(ctx context.Context, actor models.Profile, evaluationID int64) error {
	if actor.ID == "" {
		return ErrNotAuthenticated
	}

	evaluation, err := s.store.FindByID(ctx, evaluationID)
	if err != nil {
		return fmt.Errorf("find evaluation: %w", err)
	}
	if evaluation.UserID != actor.ID && !actor.IsAdmin() {
		return ErrNotAllowed
	}
	if err := s.store.Delete(ctx, evaluationID); err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	return nil
}

// ForGame returns all evaluations of a game, splitting out the viewer's own
// so the client can render it first. An empty viewerID leaves Mine nil.
func (s *Service) ForGame(ctx context.Context, viewerID string, gameID int64) (GameReviews, error) {
	evaluations, err := s.store.ListForGame(ctx, gameID)
	if err != nil {
		return GameReviews{}, fmt.Errorf("list evaluations: %w", err)
	}

	reviews := GameReviews{Others: make([]models.Evaluation, 0, len(evaluations))}
	for i := range evaluations {
		if viewerID != "" && evaluations[i].UserID == viewerID {
			mine := evaluations[i]
			reviews.Mine = &mine
			continue
		}
		reviews.Others = append(reviews.Others, evaluations[i])
	}
	return reviews, nil
}
