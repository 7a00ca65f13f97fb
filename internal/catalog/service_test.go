package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ludolist/backend/internal/models"
	"github.com/ludolist/backend/internal/repositories"
)

type memoryGameStore struct {
	nextID  int64
	games   map[int64]models.Game
	ratings []models.GameRating

	cascadeCalls []int64
}

func newMemoryGameStore() *memoryGameStore {
	return &memoryGameStore{nextID: 1, games: make(map[int64]models.Game)}
}

func (s *memoryGameStore) List(_ context.Context) ([]models.Game, error) {
	out := make([]models.Game, 0, len(s.games))
	for id := s.nextID - 1; id >= 1; id-- {
		if game, ok := s.games[id]; ok {
			out = append(out, game)
		}
	}
	return out, nil
}

func (s *memoryGameStore) Search(_ context.Context, query string) ([]models.Game, error) {
	var out []models.Game
	for id := int64(1); id < s.nextID; id++ {
		game, ok := s.games[id]
		if ok && strings.Contains(strings.ToLower(game.Name), strings.ToLower(query)) {
			out = append(out, game)
		}
	}
	return out, nil
}

func (s *memoryGameStore) Find(_ context.Context, id int64) (models.Game, error) {
	game, ok := s.games[id]
	if !ok {
		return models.Game{}, repositories.ErrNotFound
	}
	return game, nil
}

func (s *memoryGameStore) Create(_ context.Context, game models.Game) (models.Game, error) {
	game.ID = s.nextID
	s.nextID++
	s.games[game.ID] = game
	return game, nil
}

func (s *memoryGameStore) Update(_ context.Context, game models.Game) (models.Game, error) {
	if _, ok := s.games[game.ID]; !ok {
		return models.Game{}, repositories.ErrNotFound
	}
	s.games[game.ID] = game
	return game, nil
}

func (s *memoryGameStore) DeleteCascade(_ context.Context, id int64) error {
	s.cascadeCalls = append(s.cascadeCalls, id)
	if _, ok := s.games[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.games, id)
	return nil
}

func (s *memoryGameStore) ListRatings(_ context.Context) ([]models.GameRating, error) {
	return s.ratings, nil
}

var (
	testAdmin  = models.Profile{ID: "admin-1", Role: models.RoleAdmin}
	testPlayer = models.Profile{ID: "player-1", Role: models.RoleUser}
)

func newTestService(store GameStore) *Service {
	service := NewService(store, nil)
	service.NowFunc = func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) }
	return service
}

func validInput() GameInput {
	return GameInput{
		Name:        "Brass: Birmingham",
		Description: "Economic network builder",
		MinPlayers:  2,
		MaxPlayers:  4,
		PlayingTime: 120,
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	store := newMemoryGameStore()
	service := newTestService(store)

	_, err := service.Create(context.Background(), testPlayer, validInput())
	require.ErrorIs(t, err, ErrInsufficientRole)
	require.Empty(t, store.games)

	created, err := service.Create(context.Background(), testAdmin, validInput())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "Brass: Birmingham", created.Name)
}

func TestCreateValidation(t *testing.T) {
	service := newTestService(newMemoryGameStore())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*GameInput)
		field  string
	}{
		{"missing name", func(in *GameInput) { in.Name = "  " }, "name"},
		{"zero min players", func(in *GameInput) { in.MinPlayers = 0 }, "minPlayers"},
		{"zero max players", func(in *GameInput) { in.MaxPlayers = 0 }, "maxPlayers"},
		{"min above max", func(in *GameInput) { in.MinPlayers = 5 }, "maxPlayers"},
		{"zero playing time", func(in *GameInput) { in.PlayingTime = 0 }, "playingTime"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := service.Create(ctx, testAdmin, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestUpdateGame(t *testing.T) {
	store := newMemoryGameStore()
	service := newTestService(store)
	ctx := context.Background()

	created, err := service.Create(ctx, testAdmin, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Brass: Lancashire"
	in.PlayingTime = 90

	_, err = service.Update(ctx, testPlayer, created.ID, in)
	require.ErrorIs(t, err, ErrInsufficientRole)

	updated, err := service.Update(ctx, testAdmin, created.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Brass: Lancashire", updated.Name)
	require.Equal(t, 90, updated.PlayingTime)

	_, err = service.Update(ctx, testAdmin, 999, in)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	store := newMemoryGameStore()
	service := newTestService(store)
	ctx := context.Background()

	created, err := service.Create(ctx, testAdmin, validInput())
	require.NoError(t, err)

	require.ErrorIs(t, service.Delete(ctx, testPlayer, created.ID), ErrInsufficientRole)
	require.Empty(t, store.cascadeCalls, "role check must run before any write")

	require.NoError(t, service.Delete(ctx, testAdmin, created.ID))
	require.Equal(t, []int64{created.ID}, store.cascadeCalls)

	require.ErrorIs(t, service.Delete(ctx, testAdmin, created.ID), repositories.ErrNotFound)
}

func TestSearchFallsBackToFeed(t *testing.T) {
	store := newMemoryGameStore()
	service := newTestService(store)
	ctx := context.Background()

	for _, name := range []string{"Wingspan", "Brass: Birmingham", "Cascadia"} {
		in := validInput()
		in.Name = name
		_, err := service.Create(ctx, testAdmin, in)
		require.NoError(t, err)
	}

	matches, err := service.Search(ctx, "brass")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	all, err := service.Search(ctx, "   ")
	require.NoError(t, err)
	require.Len(t, all, 3)
}
