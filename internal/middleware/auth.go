package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
)

// TokenVerifier validates an access token and yields the user id it names.
type TokenVerifier interface {
	Verify(accessToken string) (string, error)
}

// ProfileLoader resolves the profile behind a verified token.
type ProfileLoader interface {
	FindByID(ctx context.Context, id string) (models.Profile, error)
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// caller's profile to the request context for downstream handlers.
func RequireAuth(verifier TokenVerifier, profiles ProfileLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			token := bearerToken(r)
			if token == "" {
				respondUnauthorized(w, "authentication required")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("access token rejected", "error", err)
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			profile, err := profiles.FindByID(ctx, userID)
			if err != nil {
				// A valid token for a deleted account is still unauthorized.
				logger.Warn("profile lookup failed for token", "userId", userID, "error", err)
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			ctx = logging.WithUserID(ctx, profile.ID)
			ctx = logging.WithLogger(ctx, logger.With("user_id", profile.ID))
			next.ServeHTTP(w, r.WithContext(auth.WithProfile(ctx, profile)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
