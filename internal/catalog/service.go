// Package catalog manages the shared game library: browsing and search for
// everyone, create/update/delete for admins.
package catalog

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

// ErrInsufficientRole indicates a catalog write attempted by a non-admin.
var ErrInsufficientRole = errors.New("admin role required")

// ValidationError reports the per-field problems of a rejected GameInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return "invalid game: " + strings.Join(names, ", ")
}

// GameStore is the persistence surface the catalog drives.
type GameStore interface {
	List(ctx context.Context) ([]models.Game, error)
	Search(ctx context.Context, query string) ([]models.Game, error)
	Find(ctx context.Context, id int64) (models.Game, error)
	Create(ctx context.Context, game models.Game) (models.Game, error)
	Update(ctx context.Context, game models.Game) (models.Game, error)
	DeleteCascade(ctx context.Context, id int64) error
	ListRatings(ctx context.Context) ([]models.GameRating, error)
}

// GameInput carries the editable fields of a game.
type GameInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	MinPlayers   int    `json:"minPlayers"`
	MaxPlayers   int    `json:"maxPlayers"`
	PlayingTime  int    `json:"playingTime"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

func (in GameInput) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.MinPlayers < 1 {
		fields["minPlayers"] = "must be at least 1"
	}
	if in.MaxPlayers < 1 {
		fields["maxPlayers"] = "must be at least 1"
	}
	if in.MinPlayers >= 1 && in.MaxPlayers >= 1 && in.MinPlayers > in.MaxPlayers {
		fields["maxPlayers"] = "must be greater than or equal to minPlayers"
	}
	if in.PlayingTime < 1 {
		fields["playingTime"] = "must be at least 1 minute"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Service exposes catalog reads to everyone and writes to admins only.
type Service struct {
	store   GameStore
	logger  *slog.Logger
	NowFunc func() time.Time
}

// NewService constructs a catalog Service.
func NewService(store GameStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		logger:  logger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Feed returns the full catalog, newest first.
func (s *Service) Feed(ctx context.Context) ([]models.Game, error) {
	games, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Search returns catalog entries whose name matches query. An empty query
// behaves like Feed.
func (s *Service) Search(ctx context.Context, query string) ([]models.Game, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Feed(ctx)
	}
	games, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return games, nil
}

// Get returns a single game by id.
func (s *Service) Get(ctx context.Context, id int64) (models.Game, error) {
	game, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Game{}, err
		}
		return models.Game{}, fmt.Errorf("find game: %w", err)
	}
	return game, nil
}

// Create adds a game to the catalog. Admins only.
func (s *Service) Create(ctx context.Context, actor models.Profile, in GameInput) (models.Game, error) {
	if !actor.IsAdmin() {
		return models.Game{}, ErrInsufficientRole
	}
	if err := in.validate(); err != nil {
		return models.Game{}, err
	}

	ctx, span := logging.StartSpan(ctx, "catalog.create")
	defer span.End()

	now := s.NowFunc()
	game, err := s.store.Create(ctx, models.Game{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		MinPlayers:   in.MinPlayers,
		MaxPlayers:   in.MaxPlayers,
		PlayingTime:  in.PlayingTime,
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return models.Game{}, fmt.Errorf("create game: %w", err)
	}
	s.logger.Info("game created", "gameId", game.ID, "actorId", actor.ID)
	return game, nil
}

// Update replaces the editable fields of a game. Admins only.
func (s *Service) Update(ctx context.Context, actor models.Profile, id int64, in GameInput) (models.Game, error) {
	if !actor.IsAdmin() {
		return models.Game{}, ErrInsufficientRole
	}
	if err := in.validate(); err != nil {
		return models.Game{}, err
	}

	ctx, span := logging.StartSpan(ctx, "catalog.update")
	defer span.End()

	game, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Game{}, err
		}
		return models.Game{}, fmt.Errorf("find game: %w", err)
	}

	game.Name = strings.TrimSpace(in.Name)
	game.Description = strings.TrimSpace(in.Description)
	game.MinPlayers = in.MinPlayers
	game.MaxPlayers = in.MaxPlayers
	game.PlayingTime = in.PlayingTime
	game.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	game.UpdatedAt = s.NowFunc()

	updated, err := s.store.Update(ctx, game)
	if err != nil {
		return models.Game{}, fmt.Errorf("update game: %w", err)
	}
	s.logger.Info("game updated", "gameId", updated.ID, "actorId", actor.ID)
	return updated, nil
}

// Delete removes a game together with every list membership and evaluation
// that references it, in one transaction. Admins only.
func (s *Service) Delete(ctx context.Context, actor models.Profile, id int64) error {
	if !actor.IsAdmin() {
		return ErrInsufficientRole
	}

	ctx, span := logging.StartSpan(ctx, "catalog.delete")
	defer span.End()

	if err := s.store.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete game: %w", err)
	}
	s.logger.Info("game deleted", "gameId", id, "actorId", actor.ID)
	return nil
}
