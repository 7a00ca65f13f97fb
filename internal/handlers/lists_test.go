package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ludolist/backend/internal/auth"
	"github.com/ludolist/backend/internal/lists"
	"github.com/ludolist/backend/internal/models"
)

type stubListService struct {
	presence lists.Presence
	err      error

	toggledUser string
	toggledGame int64
	toggledKind models.ListKind

	games   []models.Game
	listErr error
}

func (s *stubListService) Toggle(_ context.Context, userID string, gameID int64, kind models.ListKind) (lists.Presence, error) {
	s.toggledUser = userID
	s.toggledGame = gameID
	s.toggledKind = kind
	return s.presence, s.err
}

func (s *stubListService) ListGamesForUser(_ context.Context, _ string, _ models.ListKind) ([]models.Game, error) {
	return s.games, s.listErr
}

func authenticated(r *http.Request, profile models.Profile) *http.Request {
	return r.WithContext(auth.WithProfile(r.Context(), profile))
}

func TestListHandlerToggle(t *testing.T) {
	stub := &stubListService{presence: lists.Present}
	handler := ListHandler{Toggler: stub, Reader: stub}

	req := authenticated(postJSON(t, "/api/v1/lists/toggle", toggleRequest{GameID: 42, Kind: "wishlist"}),
		models.Profile{ID: "user-1"})
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if stub.toggledUser != "user-1" || stub.toggledGame != 42 || stub.toggledKind != models.ListWishlist {
		t.Fatalf("unexpected toggle call: %+v", stub)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["presence"] != "present" {
		t.Fatalf("expected presence present, got %q", resp["presence"])
	}
}

func TestListHandlerToggleErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown list", lists.ErrUnknownList, http.StatusBadRequest},
		{"conflict", lists.ErrConflict, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubListService{err: tc.err}
			handler := ListHandler{Toggler: stub, Reader: stub}

			req := authenticated(postJSON(t, "/api/v1/lists/toggle", toggleRequest{GameID: 42, Kind: "wishlist"}),
				models.Profile{ID: "user-1"})
			rec := httptest.NewRecorder()
			handler.Toggle(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestListHandlerToggleRequiresIdentity(t *testing.T) {
	handler := ListHandler{Toggler: &stubListService{}, Reader: &stubListService{}}

	rec := httptest.NewRecorder()
	handler.Toggle(rec, postJSON(t, "/api/v1/lists/toggle", toggleRequest{GameID: 42, Kind: "wishlist"}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestListHandlerList(t *testing.T) {
	stub := &stubListService{games: []models.Game{{ID: 1, Name: "Wingspan"}}}
	handler := ListHandler{Toggler: stub, Reader: stub}

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/lists?type=collection", nil),
		models.Profile{ID: "user-1"})
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Games []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"games"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Games) != 1 || resp.Games[0].ID != 1 || resp.Games[0].Name != "Wingspan" {
		t.Fatalf("unexpected games: %+v", resp.Games)
	}
}

func TestListHandlerListRejectsUnknownKind(t *testing.T) {
	handler := ListHandler{Toggler: &stubListService{}, Reader: &stubListService{}}

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/lists?type=favorites", nil),
		models.Profile{ID: "user-1"})
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
