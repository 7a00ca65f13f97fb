package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
)

// AuthHandler implements the authentication endpoints.
type AuthHandler struct {
	Auth    Authenticator
	Limiter RateLimiter
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	Session models.Session `json:"session"`
}

type signUpResponse struct {
	Session              *models.Session `json:"session,omitempty"`
	RequiresConfirmation bool            `json:"requiresConfirmation"`
}

// Login handles POST /api/v1/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Auth == nil {
		logger.Error("authentication service unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		logger.Warn("login rate limited", "remote", r.RemoteAddr)
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		status, message := authFailure(err)
		logger.Warn("login failed", "email", req.Email, "kind", auth.KindOf(err))
		respondError(ctx, w, status, message)
		return
	}

	respondJSON(ctx, w, http.StatusOK, sessionResponse{Session: session})
}

// SignUp handles POST /api/v1/auth/signup requests.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Auth == nil {
		logger.Error("authentication service unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "authentication services unavailable")
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.Auth.SignUp(ctx, req.Email, req.Password, auth.SignUpFields{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Username:  strings.TrimSpace(req.Username),
	})
	if err != nil {
		status, message := authFailure(err)
		logger.Warn("signup failed", "email", req.Email, "kind", auth.KindOf(err))
		respondError(ctx, w, status, message)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, signUpResponse{
		Session:              result.Session,
		RequiresConfirmation: result.RequiresConfirmation,
	})
}

// Refresh exchanges a refresh token for a new session.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Auth == nil {
		logger.Error("authentication service unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "session service unavailable")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(ctx, w, http.StatusBadRequest, "refresh token is required")
		return
	}

	session, err := h.Auth.Restore(ctx, req.RefreshToken)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrSessionNotFound) && !errors.Is(err, auth.ErrRefreshTokenExpired) {
			status = http.StatusInternalServerError
		}
		logger.Warn("refresh failed", "error", err, "status", status)
		respondError(ctx, w, status, "unable to refresh session")
		return
	}

	respondJSON(ctx, w, http.StatusOK, sessionResponse{Session: session})
}

// Logout handles POST /api/v1/auth/logout requests. Revocation failures are
// reported as success: the client discards its tokens either way.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid logout payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.Auth != nil {
		if err := h.Auth.SignOut(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
			logger.Warn("logout revocation failed", "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "signed out"})
}

func authFailure(err error) (int, string) {
	switch auth.KindOf(err) {
	case auth.KindInvalidCredentials:
		return http.StatusUnauthorized, "invalid credentials"
	case auth.KindUnconfirmed:
		return http.StatusForbidden, "email address not confirmed"
	case auth.KindRateLimited:
		return http.StatusTooManyRequests, "too many attempts, try again later"
	case auth.KindAlreadyRegistered:
		return http.StatusConflict, "account already exists"
	case auth.KindWeakPassword:
		return http.StatusBadRequest, "password must be at least 6 characters"
	case auth.KindInvalidEmail:
		return http.StatusBadRequest, "invalid email address"
	default:
		return http.StatusInternalServerError, "authentication failed"
	}
}
