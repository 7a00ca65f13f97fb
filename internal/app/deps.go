package app

import (
	"log/slog"
	"time"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/catalog"
	"github.com/ludolist/backend/internal/config"
	"github.com/ludolist/backend/internal/db"
	"github.com/ludolist/backend/internal/handlers"
	"github.com/ludolist/backend/internal/lists"
	"github.com/ludolist/backend/internal/middleware"
	"github.com/ludolist/backend/internal/repositories"
	"github.com/ludolist/backend/internal/reviews"
	"github.com/ludolist/backend/internal/session"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, cfg config.Config, logger *slog.Logger) handlers.Dependencies {
	profiles := repositories.NewPostgresProfileRepository(pool)
	games := repositories.NewPostgresGameRepository(pool)
	listRepo := repositories.NewPostgresListRepository(pool)
	evaluations := repositories.NewPostgresEvaluationRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore)
	authService := auth.NewService(profiles, tokens, auth.Options{
		RequireConfirmation: cfg.RequireConfirmation,
		LoginAttemptsPerMin: cfg.LoginAttemptsPerMin,
		LoginBurst:          cfg.LoginBurst,
		Logger:              logger,
	})

	catalogService := catalog.NewService(games, logger)
	leaderboard := catalog.NewCachingLeaderboard(catalogService, cfg.LeaderboardTTL)

	return handlers.Dependencies{
		Auth:             authService,
		Verifier:         tokens,
		Profiles:         profiles,
		Catalog:          catalogService,
		Leaderboard:      leaderboard,
		LeaderboardCache: leaderboard,
		Lists:            lists.NewCoordinator(listRepo, logger),
		ListReader:       listRepo,
		Reviews:          reviews.NewService(evaluations, logger),
		LoginLimiter: middleware.NewIPRateLimiter(
			cfg.LoginAttemptsPerMin, time.Minute, cfg.LoginBurst, 10*time.Minute,
		),
	}
}

// The auth service and profile repository double as the session manager's
// collaborators in client deployments.
var (
	_ session.AuthService  = (*auth.Service)(nil)
	_ session.ProfileStore = (*repositories.PostgresProfileRepository)(nil)
	_ auth.SessionStore    = (*repositories.PostgresSessionStore)(nil)
)
