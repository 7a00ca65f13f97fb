package auth

import (
	"context"

	"github.com/ludolist/backend/internal/models"
)

type identityKey struct{}

// WithProfile stores the authenticated profile on the context.
func WithProfile(ctx context.Context, profile models.Profile) context.Context {
	return context.WithValue(ctx, identityKey{}, profile)
}

// ProfileFromContext retrieves the authenticated profile, if any.
func ProfileFromContext(ctx context.Context) (models.Profile, bool) {
	profile, ok := ctx.Value(identityKey{}).(models.Profile)
	return profile, ok
}
