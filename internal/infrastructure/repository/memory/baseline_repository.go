package memory

import (
	"context"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/baseline"
)

type BaselineRepository struct {
	mu    sync.RWMutex
	items map[string]baseline.Baseline
}

func NewBaselineRepository(baselines []baseline.Baseline) *BaselineRepository {
	items := make(map[string]baseline.Baseline, len(baselines))
	for _, b := range baselines {
		items[seasonKey(b.RiderID, b.Year)] = b
	}
	return &BaselineRepository{items: items}
}

func (r *BaselineRepository) Get(_ context.Context, riderID string, year int) (*baseline.Baseline, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[seasonKey(riderID, year)]
	if !ok {
		return nil, false, nil
	}
	copied := b
	return &copied, true, nil
}
