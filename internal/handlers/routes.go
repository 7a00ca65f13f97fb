package handlers

import (
	"net/http"

	"github.com/ludolist/backend/internal/catalog"
	"github.com/ludolist/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Auth             Authenticator
	Verifier         middleware.TokenVerifier
	Profiles         ProfileStore
	Catalog          Catalog
	Leaderboard      catalog.LeaderboardProvider
	LeaderboardCache LeaderboardInvalidator
	Lists            ListToggler
	ListReader       ListReader
	Reviews          ReviewService
	LoginLimiter     RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	authHandler := AuthHandler{Auth: deps.Auth, Limiter: deps.LoginLimiter}
	games := GameHandler{Catalog: deps.Catalog, Leaderboard: deps.Leaderboard}
	adminGames := AdminGameHandler{Catalog: deps.Catalog, Leaderboard: deps.LeaderboardCache}
	profile := ProfileHandler{Profiles: deps.Profiles}
	listHandler := ListHandler{Toggler: deps.Lists, Reader: deps.ListReader}
	reviewHandler := ReviewHandler{Reviews: deps.Reviews, Leaderboard: deps.LeaderboardCache}

	requireAuth := middleware.RequireAuth(deps.Verifier, deps.Profiles)

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/auth/signup", authHandler.SignUp)
	mux.HandleFunc("/api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", authHandler.Logout)

	mux.HandleFunc("/api/v1/games", games.List)
	mux.HandleFunc("/api/v1/games/", games.ByPath)

	mux.Handle("/api/v1/profile", requireAuth(http.HandlerFunc(profile.Handle)))
	mux.Handle("/api/v1/lists", requireAuth(http.HandlerFunc(listHandler.List)))
	mux.Handle("/api/v1/lists/toggle", requireAuth(http.HandlerFunc(listHandler.Toggle)))
	mux.Handle("/api/v1/evaluations", requireAuth(http.HandlerFunc(reviewHandler.Handle)))
	mux.Handle("/api/v1/admin/games", requireAuth(http.HandlerFunc(adminGames.Create)))
	mux.Handle("/api/v1/admin/games/", requireAuth(http.HandlerFunc(adminGames.ByID)))
}
