package handlers

import (
	"context"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/catalog"
	"github.com/ludolist/backend/internal/lists"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/reviews"
)

// Authenticator captures the auth service operations the HTTP layer exposes.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignUp(ctx context.Context, email, password string, fields auth.SignUpFields) (auth.SignUpResult, error)
	SignOut(ctx context.Context, refreshToken string) error
	Restore(ctx context.Context, refreshToken string) (models.Session, error)
}

// ProfileStore captures the profile operations required by the profile handlers.
type ProfileStore interface {
	FindByID(ctx context.Context, id string) (models.Profile, error)
	UpdateProfile(ctx context.Context, profile models.Profile) error
}

// Catalog captures the game catalog operations exposed over HTTP.
type Catalog interface {
	Feed(ctx context.Context) ([]models.Game, error)
	Search(ctx context.Context, query string) ([]models.Game, error)
	Get(ctx context.Context, id int64) (models.Game, error)
	Create(ctx context.Context, actor models.Profile, in catalog.GameInput) (models.Game, error)
	Update(ctx context.Context, actor models.Profile, id int64, in catalog.GameInput) (models.Game, error)
	Delete(ctx context.Context, actor models.Profile, id int64) error
}

// LeaderboardInvalidator drops cached leaderboard results after a write that
// can change game rankings.
type LeaderboardInvalidator interface {
	Invalidate()
}

// ListToggler flips list memberships on behalf of a user.
type ListToggler interface {
	Toggle(ctx context.Context, userID string, gameID int64, kind models.ListKind) (lists.Presence, error)
}

// ListReader returns the games on one of a user's lists.
type ListReader interface {
	ListGamesForUser(ctx context.Context, userID string, kind models.ListKind) ([]models.Game, error)
}

// ReviewService captures the evaluation operations exposed over HTTP.
type ReviewService interface {
	Submit(ctx context.Context, userID string, gameID int64, rating int, comment string) (models.Evaluation, error)
	Delete(ctx context.Context, actor models.Profile, evaluationID int64) error
	ForGame(ctx context.Context, viewerID string, gameID int64) (reviews.GameReviews, error)
}
