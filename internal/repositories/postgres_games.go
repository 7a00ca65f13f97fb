package repositories

import (
	"context"
	"errors"
	"fmt"

	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"

	"github.com/ludolist/backend/internal/db"
	"github.com/ludolist/backend/internal/models"
)

// PostgresGameRepository provides PostgreSQL-backed persistence for the
// game catalog.
type PostgresGameRepository struct {
	pool db.Pool
}

// NewPostgresGameRepository constructs a game repository backed by PostgreSQL.
func NewPostgresGameRepository(pool db.Pool) *PostgresGameRepository {
	return &PostgresGameRepository{pool: pool}
}

const gameColumns = "id, name, description, min_players, max_players, playing_time, thumbnail_url, created_at, updated_at"

func scanGame(row pgx.Row) (models.Game, error) {
	var game models.Game
	err := row.Scan(&game.ID, &game.Name, &game.Description, &game.MinPlayers,
		&game.MaxPlayers, &game.PlayingTime, &game.ThumbnailURL, &game.CreatedAt, &game.UpdatedAt)
	return game, err
}

// List returns the full catalog, newest first.
func (r *PostgresGameRepository) List(ctx context.Context) ([]models.Game, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+gameColumns+`
        FROM games
        ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// Search returns games whose name contains the query, case-insensitively.
func (r *PostgresGameRepository) Search(ctx context.Context, query string) ([]models.Game, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+gameColumns+`
        FROM games
        WHERE name ILIKE '%' || $1 || '%'
        ORDER BY name ASC
    `, query)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// Find fetches one game by id.
func (r *PostgresGameRepository) Find(ctx context.Context, id int64) (models.Game, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Game{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	game, err := scanGame(conn.QueryRow(ctx, `
        SELECT `+gameColumns+`
        FROM games
        WHERE id = $1
    `, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Game{}, ErrNotFound
		}
		return models.Game{}, fmt.Errorf("select game: %w", err)
	}

	return game, nil
}

// Create persists a new game and returns it with its assigned id.
func (r *PostgresGameRepository) Create(ctx context.Context, game models.Game) (models.Game, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Game{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO games (name, description, min_players, max_players, playing_time, thumbnail_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, game.Name, game.Description, game.MinPlayers, game.MaxPlayers,
		game.PlayingTime, game.ThumbnailURL, game.CreatedAt, game.UpdatedAt)
	if err := row.Scan(&game.ID); err != nil {
		return models.Game{}, fmt.Errorf("insert game: %w", err)
	}

	return game, nil
}

// Update modifies an existing game record.
func (r *PostgresGameRepository) Update(ctx context.Context, game models.Game) (models.Game, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Game{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE games
        SET name = $2, description = $3, min_players = $4, max_players = $5, playing_time = $6, thumbnail_url = $7, updated_at = $8
        WHERE id = $1
    `, game.ID, game.Name, game.Description, game.MinPlayers, game.MaxPlayers,
		game.PlayingTime, game.ThumbnailURL, game.UpdatedAt)
	if err != nil {
		return models.Game{}, fmt.Errorf("update game: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.Game{}, ErrNotFound
	}

	return game, nil
}

// DeleteCascade removes a game together with its list memberships and
// evaluations in a single retryable transaction. The referencing tables
// deliberately lack ON DELETE CASCADE for games, so the ordering here is the
// only thing keeping foreign keys satisfied.
func (r *PostgresGameRepository) DeleteCascade(ctx context.Context, id int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	err = crdbpgx.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM evaluations WHERE game_id = $1`, id); err != nil {
			return fmt.Errorf("delete evaluations: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_game_lists WHERE game_id = $1`, id); err != nil {
			return fmt.Errorf("delete list memberships: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("cascade delete game: %w", err)
	}

	return nil
}

// ListRatings returns one row per evaluation, each paired with its game.
func (r *PostgresGameRepository) ListRatings(ctx context.Context) ([]models.GameRating, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT g.id, g.name, g.description, g.min_players, g.max_players, g.playing_time, g.thumbnail_url, g.created_at, g.updated_at, e.rating
        FROM games g
        JOIN evaluations e ON e.game_id = g.id
        ORDER BY g.id ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("select game ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.GameRating
	for rows.Next() {
		var r models.GameRating
		if err := rows.Scan(&r.Game.ID, &r.Game.Name, &r.Game.Description, &r.Game.MinPlayers,
			&r.Game.MaxPlayers, &r.Game.PlayingTime, &r.Game.ThumbnailURL,
			&r.Game.CreatedAt, &r.Game.UpdatedAt, &r.Rating); err != nil {
			return nil, fmt.Errorf("scan game rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game ratings: %w", err)
	}

	return ratings, nil
}

func collectGames(rows pgx.Rows) ([]models.Game, error) {
	var games []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}
