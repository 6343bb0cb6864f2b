package memory

import (
	"context"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/game"
)

type GameRepository struct {
	mu     sync.RWMutex
	items  map[string]game.Game
	orders []string
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	orders := make([]string, 0, len(games))
	for _, g := range games {
		items[g.ID] = g
		orders = append(orders, g.ID)
	}
	return &GameRepository{items: items, orders: orders}
}

func (r *GameRepository) GetByID(_ context.Context, id string) (*game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[id]
	if !ok {
		return nil, false, nil
	}
	copied := g
	return &copied, true, nil
}

func (r *GameRepository) List(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *GameRepository) ListByTypeAndStatuses(_ context.Context, gameType game.Type, statuses []game.Status) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[game.Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	var out []game.Game
	for _, id := range r.orders {
		g := r.items[id]
		if g.Type != gameType {
			continue
		}
		if _, ok := wanted[g.Status]; !ok {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}
