package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

// constraintError translates postgres constraint violations into the package
// sentinels: unique violations become ErrConflict and foreign key violations
// become ErrNotFound (the referenced record is gone). It returns nil for
// anything else so callers can fall through to their own wrapping.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23505":
		return ErrConflict
	case "23503":
		return ErrNotFound
	default:
		return nil
	}
}
