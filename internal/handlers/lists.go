package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/lists"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
)

// ListHandler implements the per-user game list endpoints.
type ListHandler struct {
	Toggler ListToggler
	Reader  ListReader
}

type toggleRequest struct {
	GameID int64  `json:"gameId"`
	Kind   string `json:"list"`
}

// Toggle implements POST /api/v1/lists/toggle.
func (h ListHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid toggle payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	presence, err := h.Toggler.Toggle(ctx, profile.ID, req.GameID, models.ListKind(req.Kind))
	if err != nil {
		switch {
		case errors.Is(err, lists.ErrUnknownList):
			respondError(ctx, w, http.StatusBadRequest, "unknown list")
		case errors.Is(err, lists.ErrNotAuthenticated):
			respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		case errors.Is(err, lists.ErrConflict):
			// The toggle lost a race and changed nothing; the client should
			// re-fetch rather than treat this as a failure.
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"status": "conflict"})
		default:
			logger.Error("toggle failed", "userId", profile.ID, "gameId", req.GameID, "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to update list")
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"presence": string(presence)})
}

// List implements GET /api/v1/lists?type=.
func (h ListHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	kind := models.ListKind(r.URL.Query().Get("type"))
	if !kind.Valid() {
		respondError(ctx, w, http.StatusBadRequest, "unknown list")
		return
	}

	games, err := h.Reader.ListGamesForUser(ctx, profile.ID, kind)
	if err != nil {
		logger.Error("list fetch failed", "userId", profile.ID, "kind", kind, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load list")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"games": toGameResponses(games)})
}
