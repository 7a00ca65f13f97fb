package catalog

import (
	"context"
	"sync"
	"time"
)

// LeaderboardProvider computes a ranked view of the catalog.
type LeaderboardProvider interface {
	Leaderboard(ctx context.Context) ([]RankedGame, error)
}

// CachingLeaderboard wraps a provider with a TTL-based in-memory cache. The
// leaderboard touches every evaluation row, so recomputing it on every
// request is wasteful; slightly stale ranks are acceptable.
type CachingLeaderboard struct {
	base LeaderboardProvider
	ttl  time.Duration

	mu      sync.RWMutex
	ranked  []RankedGame
	expires time.Time
}

// NewCachingLeaderboard returns a provider that caches results for ttl.
func NewCachingLeaderboard(base LeaderboardProvider, ttl time.Duration) *CachingLeaderboard {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingLeaderboard{base: base, ttl: ttl}
}

// Leaderboard returns the cached ranking when fresh, otherwise it delegates
// to the underlying provider and stores the result.
func (c *CachingLeaderboard) Leaderboard(ctx context.Context) ([]RankedGame, error) {
	now := time.Now()

	c.mu.RLock()
	ranked, expires := c.ranked, c.expires
	c.mu.RUnlock()
	if ranked != nil && now.Before(expires) {
		return ranked, nil
	}

	fresh, err := c.base.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.ranked = fresh
	c.expires = now.Add(c.ttl)
	c.mu.Unlock()

	return fresh, nil
}

// Invalidate drops the cached ranking so the next read recomputes it. Called
// after catalog writes and evaluation changes.
func (c *CachingLeaderboard) Invalidate() {
	c.mu.Lock()
	c.ranked = nil
	c.mu.Unlock()
}
