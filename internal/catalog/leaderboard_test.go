package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ludolist/backend/internal/models"
)

func ratingRows(t *testing.T) []models.GameRating {
	t.Helper()
	wingspan := models.Game{ID: 1, Name: "Wingspan"}
	brass := models.Game{ID: 2, Name: "Brass: Birmingham"}
	cascadia := models.Game{ID: 3, Name: "Cascadia"}
	return []models.GameRating{
		{Game: wingspan, Rating: 4},
		{Game: wingspan, Rating: 2},
		{Game: brass, Rating: 5},
		{Game: brass, Rating: 5},
		{Game: cascadia, Rating: 3},
	}
}

func TestRankGames(t *testing.T) {
	ranked := rankGames(ratingRows(t))

	require.Len(t, ranked, 3)
	require.Equal(t, "Brass: Birmingham", ranked[0].Game.Name)
	require.Equal(t, 5.0, ranked[0].AverageRating)
	require.Equal(t, 1, ranked[0].Rank)

	require.Equal(t, "Wingspan", ranked[1].Game.Name)
	require.Equal(t, 3.0, ranked[1].AverageRating)
	require.Equal(t, 2, ranked[1].Rank)

	require.Equal(t, "Cascadia", ranked[2].Game.Name)
	require.Equal(t, 3, ranked[2].Rank)
}

// Equal averages order by evaluation count, then name.
func TestRankGamesTieBreaks(t *testing.T) {
	azul := models.Game{ID: 1, Name: "Azul"}
	root := models.Game{ID: 2, Name: "Root"}
	everdell := models.Game{ID: 3, Name: "Everdell"}
	ranked := rankGames([]models.GameRating{
		{Game: root, Rating: 4},
		{Game: azul, Rating: 4},
		{Game: everdell, Rating: 4},
		{Game: everdell, Rating: 4},
	})

	require.Equal(t, "Everdell", ranked[0].Game.Name)
	require.Equal(t, "Azul", ranked[1].Game.Name)
	require.Equal(t, "Root", ranked[2].Game.Name)
}

func TestRankGamesSkipsUnrated(t *testing.T) {
	ranked := rankGames(nil)
	require.Empty(t, ranked)
}

func TestLeaderboardUsesStore(t *testing.T) {
	store := newMemoryGameStore()
	store.ratings = ratingRows(t)
	service := newTestService(store)

	ranked, err := service.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Brass: Birmingham", ranked[0].Game.Name)
}

type countingProvider struct {
	calls  int
	err    error
	ranked []RankedGame
}

func (p *countingProvider) Leaderboard(context.Context) ([]RankedGame, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.ranked, nil
}

func TestCachingLeaderboard(t *testing.T) {
	base := &countingProvider{ranked: []RankedGame{{Rank: 1}}}
	cached := NewCachingLeaderboard(base, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ranked, err := cached.Leaderboard(ctx)
		require.NoError(t, err)
		require.Len(t, ranked, 1)
	}
	require.Equal(t, 1, base.calls)

	cached.Invalidate()
	_, err := cached.Leaderboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, base.calls)
}

func TestCachingLeaderboardDoesNotCacheErrors(t *testing.T) {
	base := &countingProvider{err: errors.New("db down")}
	cached := NewCachingLeaderboard(base, time.Hour)
	ctx := context.Background()

	_, err := cached.Leaderboard(ctx)
	require.Error(t, err)

	base.err = nil
	base.ranked = []RankedGame{{Rank: 1}}
	ranked, err := cached.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.Equal(t, 2, base.calls)
}
