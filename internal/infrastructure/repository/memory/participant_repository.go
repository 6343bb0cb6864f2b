package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/participant"
)

type ParticipantRepository struct {
	mu     sync.RWMutex
	items  map[string]participant.Participant
	orders []string
}

func NewParticipantRepository(participants []participant.Participant) *ParticipantRepository {
	items := make(map[string]participant.Participant, len(participants))
	orders := make([]string, 0, len(participants))
	for _, p := range participants {
		items[p.ID] = p
		orders = append(orders, p.ID)
	}
	return &ParticipantRepository{items: items, orders: orders}
}

func (r *ParticipantRepository) ListActiveByGame(_ context.Context, gameID string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []participant.Participant
	for _, id := range r.orders {
		p := r.items[id]
		if p.GameID == gameID && p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ParticipantRepository) ListByGame(_ context.Context, gameID string) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []participant.Participant
	for _, id := range r.orders {
		p := r.items[id]
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ParticipantRepository) UpdateTotalPoints(_ context.Context, id string, totalPoints int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return fmt.Errorf("participant %s not found", id)
	}
	p.TotalPoints = totalPoints
	r.items[id] = p
	return nil
}

func (r *ParticipantRepository) UpdatePlacing(_ context.Context, id string, placing int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return fmt.Errorf("participant %s not found", id)
	}
	p.Placing = placing
	r.items[id] = p
	return nil
}

// Get returns a stored participant, used by tests to assert written state.
func (r *ParticipantRepository) Get(id string) (participant.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	return p, ok
}
