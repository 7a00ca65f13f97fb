package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludolist/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		JWTSecret:           "test-secret",
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     24 * time.Hour,
		LoginAttemptsPerMin: 10,
		LoginBurst:          5,
		LeaderboardTTL:      time.Minute,
	}

	deps := buildDependencies(fakePool{}, cfg, slog.Default())

	if deps.Auth == nil {
		t.Fatal("expected auth service to be configured")
	}
	if deps.Verifier == nil {
		t.Fatal("expected token verifier to be configured")
	}
	if deps.Profiles == nil {
		t.Fatal("expected profile repository to be configured")
	}
	if deps.Catalog == nil {
		t.Fatal("expected catalog service to be configured")
	}
	if deps.Leaderboard == nil {
		t.Fatal("expected leaderboard provider to be configured")
	}
	if deps.LeaderboardCache == nil {
		t.Fatal("expected leaderboard cache to be configured")
	}
	if deps.Lists == nil {
		t.Fatal("expected list coordinator to be configured")
	}
	if deps.ListReader == nil {
		t.Fatal("expected list reader to be configured")
	}
	if deps.Reviews == nil {
		t.Fatal("expected review service to be configured")
	}
	if deps.LoginLimiter == nil {
		t.Fatal("expected login limiter to be configured")
	}
}
