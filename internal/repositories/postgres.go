package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ludolist/backend/internal/db"
	"github.com/ludolist/backend/internal/models"
)

// PostgresProfileRepository provides PostgreSQL-backed persistence for
// accounts and profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// CreateAccount persists a new account record.
func (r *PostgresProfileRepository) CreateAccount(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO profiles (id, email, username, first_name, last_name, role, password_hash, confirmed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, account.ID, account.Email, account.Username, account.FirstName, account.LastName,
		account.Role, account.PasswordHash, account.ConfirmedAt, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// FindAccountByEmail fetches an account, credentials included, by email.
func (r *PostgresProfileRepository) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, username, first_name, last_name, role, password_hash, confirmed_at, created_at, updated_at
        FROM profiles
        WHERE email = $1
    `, email)

	var account models.Account
	if err := row.Scan(&account.ID, &account.Email, &account.Username, &account.FirstName,
		&account.LastName, &account.Role, &account.PasswordHash, &account.ConfirmedAt,
		&account.CreatedAt, &account.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select profile by email: %w", err)
	}

	return account, nil
}

// FindByID fetches a profile by its id.
func (r *PostgresProfileRepository) FindByID(ctx context.Context, id string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, username, first_name, last_name, role, created_at, updated_at
        FROM profiles
        WHERE id = $1
    `, id)

	var profile models.Profile
	if err := row.Scan(&profile.ID, &profile.Email, &profile.Username, &profile.FirstName,
		&profile.LastName, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("select profile: %w", err)
	}

	return profile, nil
}

// UpdateProfile modifies the editable fields of a profile.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, profile models.Profile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE profiles
        SET username = $2, first_name = $3, last_name = $4, updated_at = $5
        WHERE id = $1
    `, profile.ID, profile.Username, profile.FirstName, profile.LastName, profile.UpdatedAt)
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkConfirmed stamps the account's email confirmation time.
func (r *PostgresProfileRepository) MarkConfirmed(ctx context.Context, userID string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE profiles
        SET confirmed_at = $2, updated_at = $2
        WHERE id = $1
    `, userID, at.UTC())
	if err != nil {
		return fmt.Errorf("mark profile confirmed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
