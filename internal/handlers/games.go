package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/catalog"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

// GameHandler implements the public catalog endpoints.
type GameHandler struct {
	Catalog     Catalog
	Leaderboard catalog.LeaderboardProvider
}

type gameResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	MinPlayers   int       `json:"minPlayers"`
	MaxPlayers   int       `json:"maxPlayers"`
	PlayingTime  int       `json:"playingTime"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

type rankedGameResponse struct {
	Game          gameResponse `json:"game"`
	AverageRating float64      `json:"averageRating"`
	Evaluations   int          `json:"evaluations"`
	Rank          int          `json:"rank"`
}

func toGameResponse(game models.Game) gameResponse {
	return gameResponse{
		ID:           game.ID,
		Name:         game.Name,
		Description:  game.Description,
		MinPlayers:   game.MinPlayers,
		MaxPlayers:   game.MaxPlayers,
		PlayingTime:  game.PlayingTime,
		ThumbnailURL: game.ThumbnailURL,
		CreatedAt:    game.CreatedAt,
	}
}

func toGameResponses(games []models.Game) []gameResponse {
	out := make([]gameResponse, 0, len(games))
	for _, game := range games {
		out = append(out, toGameResponse(game))
	}
	return out
}

func toLeaderboardResponse(ranked []catalog.RankedGame) []rankedGameResponse {
	out := make([]rankedGameResponse, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, rankedGameResponse{
			Game:          toGameResponse(entry.Game),
			AverageRating: entry.AverageRating,
			Evaluations:   entry.Evaluations,
			Rank:          entry.Rank,
		})
	}
	return out
}

// List implements GET /api/v1/games, with an optional ?q= search filter.
func (h GameHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	query := r.URL.Query().Get("q")
	games, err := h.Catalog.Search(ctx, query)
	if err != nil {
		logger.Error("catalog listing failed", "query", query, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load games")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"games": toGameResponses(games)})
}

// ByPath implements GET /api/v1/games/{id} and GET /api/v1/games/top.
func (h GameHandler) ByPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/games/"), "/")
	if rest == "top" {
		ranked, err := h.Leaderboard.Leaderboard(ctx)
		if err != nil {
			logger.Error("leaderboard failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to load leaderboard")
			return
		}
		respondJSON(ctx, w, http.StatusOK, map[string]any{"leaderboard": toLeaderboardResponse(ranked)})
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := h.Catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "game not found")
			return
		}
		logger.Error("game lookup failed", "gameId", id, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load game")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"game": toGameResponse(game)})
}

// AdminGameHandler implements the admin catalog endpoints. Routes using it
// sit behind the auth middleware; the service re-checks the role itself.
type AdminGameHandler struct {
	Catalog     Catalog
	Leaderboard LeaderboardInvalidator
}

func (h AdminGameHandler) invalidateLeaderboard() {
	if h.Leaderboard != nil {
		h.Leaderboard.Invalidate()
	}
}

// Create implements POST /api/v1/admin/games.
func (h AdminGameHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	actor, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var in catalog.GameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("invalid game payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.Catalog.Create(ctx, actor, in)
	if err != nil {
		h.respondWriteError(w, r, err, "unable to create game")
		return
	}

	h.invalidateLeaderboard()
	respondJSON(ctx, w, http.StatusCreated, map[string]any{"game": toGameResponse(game)})
}

// ByID implements PUT and DELETE /api/v1/admin/games/{id}.
func (h AdminGameHandler) ByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	actor, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/admin/games/"), "/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid game id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var in catalog.GameInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			logger.Warn("invalid game payload", "error", err)
			respondError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}
		game, err := h.Catalog.Update(ctx, actor, id, in)
		if err != nil {
			h.respondWriteError(w, r, err, "unable to update game")
			return
		}
		h.invalidateLeaderboard()
		respondJSON(ctx, w, http.StatusOK, map[string]any{"game": toGameResponse(game)})
	case http.MethodDelete:
		if err := h.Catalog.Delete(ctx, actor, id); err != nil {
			h.respondWriteError(w, r, err, "unable to delete game")
			return
		}
		h.invalidateLeaderboard()
		respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h AdminGameHandler) respondWriteError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()

	var verr *catalog.ValidationError
	switch {
	case errors.Is(err, catalog.ErrInsufficientRole):
		respondError(ctx, w, http.StatusForbidden, "admin role required")
	case errors.As(err, &verr):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]any{"error": "invalid game", "fields": verr.Fields})
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "game not found")
	default:
		logging.FromContext(ctx).Error("catalog write failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, fallback)
	}
}
