package repositories

import (
	"context"
	"fmt"

	"github.com/ludolist/backend/internal/db"
	"github.com/ludolist/backend/internal/models"
)

// PostgresListRepository provides PostgreSQL-backed persistence for per-user
// game lists.
type PostgresListRepository struct {
	pool db.Pool
}

// NewPostgresListRepository constructs a list repository backed by PostgreSQL.
func NewPostgresListRepository(pool db.Pool) *PostgresListRepository {
	return &PostgresListRepository{pool: pool}
}

// Exists reports whether the (user, game, kind) membership row is present.
func (r *PostgresListRepository) Exists(ctx context.Context, userID string, gameID int64, kind models.ListKind) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM user_game_lists
            WHERE user_id = $1 AND game_id = $2 AND list_type = $3
        )
    `, userID, gameID, string(kind))

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check list membership: %w", err)
	}

	return exists, nil
}

// Insert persists a membership row.
func (r *PostgresListRepository) Insert(ctx context.Context, membership models.ListMembership) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO user_game_lists (user_id, game_id, list_type, created_at)
        VALUES ($1, $2, $3, $4)
    `, membership.UserID, membership.GameID, string(membership.Kind), membership.CreatedAt)
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert list membership: %w", err)
	}

	return nil
}

// Delete removes a membership row.
func (r *PostgresListRepository) Delete(ctx context.Context, userID string, gameID int64, kind models.ListKind) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM user_game_lists
        WHERE user_id = $1 AND game_id = $2 AND list_type = $3
    `, userID, gameID, string(kind))
	if err != nil {
		return fmt.Errorf("delete list membership: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListGamesForUser returns the games on one of a user's lists, most recently
// added first.
func (r *PostgresListRepository) ListGamesForUser(ctx context.Context, userID string, kind models.ListKind) ([]models.Game, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT g.id, g.name, g.description, g.min_players, g.max_players, g.playing_time, g.thumbnail_url, g.created_at, g.updated_at
        FROM user_game_lists ugl
        JOIN games g ON g.id = ugl.game_id
        WHERE ugl.user_id = $1 AND ugl.list_type = $2
        ORDER BY ugl.created_at DESC
    `, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("select list games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

var _ ListRepository = (*PostgresListRepository)(nil)
