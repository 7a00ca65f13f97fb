package repositories

import (
	"context"
	"time"

	"github.com/ludolist/backend/internal/models"
)

// ProfileRepository defines the data access contract for accounts and profiles.
type ProfileRepository interface {
	CreateAccount(ctx context.Context, account models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Profile, error)
	UpdateProfile(ctx context.Context, profile models.Profile) error
	MarkConfirmed(ctx context.Context, userID string, at time.Time) error
}
