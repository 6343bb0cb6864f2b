package memory

import (
	"context"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/calclog"
)

type CalcLogRepository struct {
	mu      sync.RWMutex
	entries []calclog.Entry
}

func NewCalcLogRepository() *CalcLogRepository {
	return &CalcLogRepository{}
}

func (r *CalcLogRepository) FindSuccess(_ context.Context, raceName, stage string, year int, inputHash string) (*calclog.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.Status == calclog.StatusSuccess &&
			e.RaceName == raceName && e.Stage == stage &&
			e.Year == year && e.InputHash == inputHash {
			copied := e
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (r *CalcLogRepository) Append(_ context.Context, entry *calclog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, *entry)
	return nil
}

func (r *CalcLogRepository) ListRecent(_ context.Context, limit int) ([]calclog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]calclog.Entry, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

// All returns every stored entry in append order, used by tests.
func (r *CalcLogRepository) All() []calclog.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]calclog.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
