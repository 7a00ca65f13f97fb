package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ludolist/backend/internal/db"
	"github.com/ludolist/backend/internal/models"
)

// PostgresEvaluationRepository provides PostgreSQL-backed persistence for
// game evaluations.
type PostgresEvaluationRepository struct {
	pool db.Pool
}

// NewPostgresEvaluationRepository constructs an evaluation repository backed by PostgreSQL.
func NewPostgresEvaluationRepository(pool db.Pool) *PostgresEvaluationRepository {
	return &PostgresEvaluationRepository{pool: pool}
}

// FindByUserAndGame fetches a user's evaluation of one game.
func (r *PostgresEvaluationRepository) FindByUserAndGame(ctx context.Context, userID string, gameID int64) (models.Evaluation, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, user_id, game_id, rating, comment, created_at, updated_at
        FROM evaluations
        WHERE user_id = $1 AND game_id = $2
    `, userID, gameID)

	return scanEvaluation(row, "select evaluation by user and game")
}

// FindByID fetches an evaluation by its id.
func (r *PostgresEvaluationRepository) FindByID(ctx context.Context, id int64) (models.Evaluation, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, user_id, game_id, rating, comment, created_at, updated_at
        FROM evaluations
        WHERE id = $1
    `, id)

	return scanEvaluation(row, "select evaluation")
}

// Insert persists a new evaluation and returns it with its assigned id.
func (r *PostgresEvaluationRepository) Insert(ctx context.Context, evaluation models.Evaluation) (models.Evaluation, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO evaluations (user_id, game_id, rating, comment, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, evaluation.UserID, evaluation.GameID, evaluation.Rating, evaluation.Comment,
		evaluation.CreatedAt, evaluation.UpdatedAt)
	if err := row.Scan(&evaluation.ID); err != nil {
		if mapped := constraintError(err); mapped != nil {
			return models.Evaluation{}, mapped
		}
		return models.Evaluation{}, fmt.Errorf("insert evaluation: %w", err)
	}

	return evaluation, nil
}

// Update modifies an existing evaluation.
func (r *PostgresEvaluationRepository) Update(ctx context.Context, evaluation models.Evaluation) (models.Evaluation, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE evaluations
        SET rating = $2, comment = $3, updated_at = $4
        WHERE id = $1
    `, evaluation.ID, evaluation.Rating, evaluation.Comment, evaluation.UpdatedAt)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("update evaluation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.Evaluation{}, ErrNotFound
	}

	return evaluation, nil
}

// Delete removes an evaluation.
func (r *PostgresEvaluationRepository) Delete(ctx context.Context, id int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM evaluations
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForGame returns every evaluation of a game, newest first, each joined
// with the reviewer's public profile fields.
func (r *PostgresEvaluationRepository) ListForGame(ctx context.Context, gameID int64) ([]models.Evaluation, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT e.id, e.user_id, e.game_id, e.rating, e.comment, e.created_at, e.updated_at,
               p.username, p.first_name, p.last_name
        FROM evaluations e
        JOIN profiles p ON p.id = e.user_id
        WHERE e.game_id = $1
        ORDER BY e.created_at DESC, e.id DESC
    `, gameID)
	if err != nil {
		return nil, fmt.Errorf("select evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []models.Evaluation
	for rows.Next() {
		var e models.Evaluation
		if err := rows.Scan(&e.ID, &e.UserID, &e.GameID, &e.Rating, &e.Comment,
			&e.CreatedAt, &e.UpdatedAt,
			&e.Reviewer.Username, &e.Reviewer.FirstName, &e.Reviewer.LastName); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evaluations = append(evaluations, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return evaluations, nil
}

func scanEvaluation(row pgx.Row, op string) (models.Evaluation, error) {
	var e models.Evaluation
	if err := row.Scan(&e.ID, &e.UserID, &e.GameID, &e.Rating, &e.Comment, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Evaluation{}, ErrNotFound
		}
		return models.Evaluation{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

var _ EvaluationRepository = (*PostgresEvaluationRepository)(nil)
