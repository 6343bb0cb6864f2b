package memory

import (
	"context"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/activity"
)

type ActivityRepository struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) Append(_ context.Context, entry *activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, *entry)
	return nil
}

// All returns every stored entry in append order, used by tests.
func (r *ActivityRepository) All() []activity.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activity.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
