package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/logging"
	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
	"github.com/ludolist/backend/internal/reviews"
)

// ReviewHandler implements the evaluation endpoints.
type ReviewHandler struct {
	Reviews     ReviewService
	Leaderboard LeaderboardInvalidator
}

func (h ReviewHandler) invalidateLeaderboard() {
	if h.Leaderboard != nil {
		h.Leaderboard.Invalidate()
	}
}

type submitReviewRequest struct {
	GameID  int64  `json:"gameId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type deleteReviewRequest struct {
	ID int64 `json:"id"`
}

type reviewerResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type evaluationResponse struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"userId"`
	GameID    int64            `json:"gameId"`
	Rating    int              `json:"rating"`
	Comment   string           `json:"comment"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Reviewer  reviewerResponse `json:"reviewer"`
}

type gameReviewsResponse struct {
	Mine   *evaluationResponse  `json:"mine"`
	Others []evaluationResponse `json:"others"`
}

func toEvaluationResponse(evaluation models.Evaluation) evaluationResponse {
	return evaluationResponse{
		ID:        evaluation.ID,
		UserID:    evaluation.UserID,
		GameID:    evaluation.GameID,
		Rating:    evaluation.Rating,
		Comment:   evaluation.Comment,
		CreatedAt: evaluation.CreatedAt,
		UpdatedAt: evaluation.UpdatedAt,
		Reviewer: reviewerResponse{
			Username:  evaluation.Reviewer.Username,
			FirstName: evaluation.Reviewer.FirstName,
			LastName:  evaluation.Reviewer.LastName,
		},
	}
}

func toGameReviewsResponse(result reviews.GameReviews) gameReviewsResponse {
	out := gameReviewsResponse{Others: make([]evaluationResponse, 0, len(result.Others))}
	if result.Mine != nil {
		mine := toEvaluationResponse(*result.Mine)
		out.Mine = &mine
	}
	for _, other := range result.Others {
		out.Others = append(out.Others, toEvaluationResponse(other))
	}
	return out
}

// Handle implements POST, DELETE, and GET /api/v1/evaluations.
func (h ReviewHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	case http.MethodGet:
		h.forGame(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h ReviewHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid evaluation payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	evaluation, err := h.Reviews.Submit(ctx, profile.ID, req.GameID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrInvalidRating):
			respondError(ctx, w, http.StatusBadRequest, "rating must be between 1 and 5")
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "game not found")
		default:
			logger.Error("evaluation submit failed", "userId", profile.ID, "gameId", req.GameID, "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to save evaluation")
		}
		return
	}

	h.invalidateLeaderboard()
	respondJSON(ctx, w, http.StatusOK, map[string]any{"evaluation": toEvaluationResponse(evaluation)})
}

func (h ReviewHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req deleteReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid evaluation payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Reviews.Delete(ctx, profile, req.ID); err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotAllowed):
			respondError(ctx, w, http.StatusForbidden, "cannot delete another player's evaluation")
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "evaluation not found")
		default:
			logger.Error("evaluation delete failed", "userId", profile.ID, "evaluationId", req.ID, "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to delete evaluation")
		}
		return
	}

	h.invalidateLeaderboard()
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h ReviewHandler) forGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	profile, ok := auth.ProfileFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	gameID, err := strconv.ParseInt(r.URL.Query().Get("gameId"), 10, 64)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid game id")
		return
	}

	result, err := h.Reviews.ForGame(ctx, profile.ID, gameID)
	if err != nil {
		logger.Error("evaluation list failed", "gameId", gameID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load evaluations")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toGameReviewsResponse(result))
}
