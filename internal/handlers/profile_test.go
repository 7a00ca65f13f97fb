package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

type stubProfileStore struct {
	updated   models.Profile
	updateErr error
}

func (s *stubProfileStore) FindByID(_ context.Context, _ string) (models.Profile, error) {
	return s.updated, nil
}

func (s *stubProfileStore) UpdateProfile(_ context.Context, profile models.Profile) error {
	s.updated = profile
	return s.updateErr
}

func testProfile() models.Profile {
	return models.Profile{
		ID:        "user-1",
		Email:     "ana@example.com",
		Username:  "ana42",
		FirstName: "Ana",
		LastName:  "Nova",
		Role:      models.RoleUser,
	}
}

func TestProfileHandlerGet(t *testing.T) {
	handler := ProfileHandler{Profiles: &stubProfileStore{}}

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), testProfile())
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "ana42" || resp.Role != models.RoleUser {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestProfileHandlerUpdate(t *testing.T) {
	store := &stubProfileStore{}
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	handler := ProfileHandler{Profiles: store, NowFunc: func() time.Time { return now }}

	body := postJSON(t, "/api/v1/profile", profileUpdateRequest{
		Username: "ana-new", FirstName: "Ana", LastName: "Novak",
	})
	req := authenticated(httptest.NewRequest(http.MethodPut, "/api/v1/profile", body.Body), testProfile())
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.updated.Username != "ana-new" || store.updated.LastName != "Novak" {
		t.Fatalf("unexpected stored profile: %+v", store.updated)
	}
	if !store.updated.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, store.updated.UpdatedAt)
	}
}

func TestProfileHandlerUpdateValidation(t *testing.T) {
	handler := ProfileHandler{Profiles: &stubProfileStore{}}

	cases := []struct {
		name string
		req  profileUpdateRequest
	}{
		{"missing first name", profileUpdateRequest{Username: "ana42"}},
		{"short username", profileUpdateRequest{Username: "ab", FirstName: "Ana"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := postJSON(t, "/api/v1/profile", tc.req)
			req := authenticated(httptest.NewRequest(http.MethodPut, "/api/v1/profile", body.Body), testProfile())
			rec := httptest.NewRecorder()
			handler.Handle(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestProfileHandlerUpdateUsernameConflict(t *testing.T) {
	handler := ProfileHandler{Profiles: &stubProfileStore{updateErr: repositories.ErrConflict}}

	body := postJSON(t, "/api/v1/profile", profileUpdateRequest{Username: "taken", FirstName: "Ana"})
	req := authenticated(httptest.NewRequest(http.MethodPut, "/api/v1/profile", body.Body), testProfile())
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}
