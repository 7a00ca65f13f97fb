package auth

import (
	"context"
	"testing"
	"time"

	"github.com/ludolist/backend/internal/repositories"
)

func TestTokenManagerIssueAndRefresh(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewTokenManager([]byte("test-secret"), time.Minute, time.Hour, store)

	session, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", session)
	}

	userID, err := manager.Verify(session.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1 got %q", userID)
	}

	refreshed, err := manager.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == session.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if store.Has(session.RefreshToken) {
		t.Fatal("old token should have been removed")
	}
}

func TestTokenManagerIssueValidation(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"), time.Minute, time.Hour, NewInMemorySessionStore())
	if _, err := manager.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestTokenManagerRefreshFailures(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewTokenManager([]byte("test-secret"), time.Minute, time.Hour, store)

	if _, err := manager.Refresh(context.Background(), ""); err != ErrSessionNotFound {
		t.Fatalf("expected session not found got %v", err)
	}

	session, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := manager.Refresh(context.Background(), session.RefreshToken); err != ErrRefreshTokenExpired {
		t.Fatalf("expected refresh expired got %v", err)
	}
	manager.now = func() time.Time { return time.Now().UTC() }

	session, err = manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.Revoke(context.Background(), session.RefreshToken)
	if _, err := manager.Refresh(context.Background(), session.RefreshToken); err != ErrSessionNotFound {
		t.Fatalf("expected session not found after revoke got %v", err)
	}
}

// rotatedAwayStore simulates a concurrent refresh deleting the token between
// the manager's find and delete.
type rotatedAwayStore struct {
	*InMemorySessionStore
}

func (s rotatedAwayStore) Delete(context.Context, string) error {
	return repositories.ErrNotFound
}

func TestTokenManagerTranslatesStoreNotFound(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewTokenManager([]byte("test-secret"), time.Minute, time.Hour, store)

	if _, err := manager.Refresh(context.Background(), "unknown-token"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound for unknown token, got %v", err)
	}

	session, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.store = rotatedAwayStore{store}
	if _, err := manager.Refresh(context.Background(), session.RefreshToken); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound when token was rotated away, got %v", err)
	}
}

func TestTokenManagerVerifyRejectsTampering(t *testing.T) {
	manager := NewTokenManager([]byte("test-secret"), time.Minute, time.Hour, NewInMemorySessionStore())
	other := NewTokenManager([]byte("other-secret"), time.Minute, time.Hour, NewInMemorySessionStore())

	session, err := other.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(session.AccessToken); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid access token got %v", err)
	}
	if _, err := manager.Verify("not-a-token"); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid access token got %v", err)
	}
}
