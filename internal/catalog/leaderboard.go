package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/ludolist/backend/internal/models"
)

// RankedGame is a catalog entry with its aggregate rating and leaderboard
// position. Rank starts at 1.
type RankedGame struct {
	Game          models.Game `json:"game"`
	AverageRating float64     `json:"averageRating"`
	Evaluations   int         `json:"evaluations"`
	Rank          int         `json:"rank"`
}

// Leaderboard ranks every game with at least one evaluation by average
// rating, best first. Ties break on evaluation count, then name, so the
// ordering is stable across reloads.
func (s *Service) Leaderboard(ctx context.Context) ([]RankedGame, error) {
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return rankGames(ratings), nil
}

func rankGames(ratings []models.GameRating) []RankedGame {
	type aggregate struct {
		game  models.Game
		sum   int
		count int
	}

	byGame := make(map[int64]*aggregate)
	order := make([]int64, 0)
	for _, r := range ratings {
		agg, ok := byGame[r.Game.ID]
		if !ok {
			agg = &aggregate{game: r.Game}
			byGame[r.Game.ID] = agg
			order = append(order, r.Game.ID)
		}
		agg.sum += r.Rating
		agg.count++
	}

	ranked := make([]RankedGame, 0, len(order))
	for _, id := range order {
		agg := byGame[id]
		if agg.count == 0 {
			continue
		}
		ranked = append(ranked, RankedGame{
			Game:          agg.game,
			AverageRating: float64(agg.sum) / float64(agg.count),
			Evaluations:   agg.count,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageRating != ranked[j].AverageRating {
			return ranked[i].AverageRating > ranked[j].AverageRating
		}
		if ranked[i].Evaluations != ranked[j].Evaluations {
			return ranked[i].Evaluations > ranked[j].Evaluations
		}
		return ranked[i].Game.Name < ranked[j].Game.Name
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
