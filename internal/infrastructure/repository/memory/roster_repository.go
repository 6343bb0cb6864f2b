package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/domain/scoring"
)

type RosterRepository struct {
	mu     sync.RWMutex
	items  map[string]roster.Entry
	orders []string
}

func NewRosterRepository(entries []roster.Entry) *RosterRepository {
	items := make(map[string]roster.Entry, len(entries))
	orders := make([]string, 0, len(entries))
	for _, e := range entries {
		items[e.ID] = e
		orders = append(orders, e.ID)
	}
	return &RosterRepository{items: items, orders: orders}
}

func (r *RosterRepository) ListByParticipant(_ context.Context, gameID, userID string) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []roster.Entry
	for _, id := range r.orders {
		e := r.items[id]
		if e.GameID == gameID && e.UserID == userID {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r *RosterRepository) ListActiveByParticipant(_ context.Context, gameID, userID string) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []roster.Entry
	for _, id := range r.orders {
		e := r.items[id]
		if e.GameID == gameID && e.UserID == userID && e.Status == roster.StatusActive {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (r *RosterRepository) Save(_ context.Context, entry *roster.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[entry.ID]; !ok {
		return fmt.Errorf("roster entry %s not found", entry.ID)
	}
	r.items[entry.ID] = cloneEntry(*entry)
	return nil
}

// Get returns a stored entry, used by tests to assert written state.
func (r *RosterRepository) Get(id string) (roster.Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return roster.Entry{}, false
	}
	return cloneEntry(e), true
}

// cloneEntry deep-copies the nested racePoints maps so callers never share
// map state with the store.
func cloneEntry(e roster.Entry) roster.Entry {
	if e.RacePoints == nil {
		return e
	}
	copied := make(roster.RacePoints, len(e.RacePoints))
	for raceKey, score := range e.RacePoints {
		copiedScore := score
		copiedScore.StagePoints = make(map[string]scoring.Breakdown, len(score.StagePoints))
		for stageKey, b := range score.StagePoints {
			copiedScore.StagePoints[stageKey] = b
		}
		copied[raceKey] = copiedScore
	}
	e.RacePoints = copied
	return e
}
