package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Profiles ProfileStore
	NowFunc  func() time.Time
}

type profileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type profileUpdateRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Handle implements GET and PUT /api/v1/profile.
func (h ProfileHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toProfileResponse(profile))
}

func (h ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.FirstName == "" {
		respondError(ctx, w, http.StatusBadRequest, "first name is required")
		return
	}
	if len(req.Username) < 3 {
		respondError(ctx, w, http.StatusBadRequest, "username must be at least 3 characters")
		return
	}

	profile.Username = req.Username
	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	profile.UpdatedAt = h.now()

	if err := h.Profiles.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "username already taken")
			return
		}
		logger.Error("profile update failed", "userId", profile.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toProfileResponse(profile))
}

func (h ProfileHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func toProfileResponse(profile models.Profile) profileResponse {
	return profileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Role:      profile.Role,
	}
}
