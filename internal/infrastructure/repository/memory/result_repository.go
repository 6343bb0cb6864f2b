package memory

import (
	"context"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/result"
)

type ResultRepository struct {
	mu    sync.RWMutex
	items map[string]result.Document
}

func NewResultRepository(docs []result.Document) *ResultRepository {
	items := make(map[string]result.Document, len(docs))
	for _, d := range docs {
		items[d.Key] = d
	}
	return &ResultRepository{items: items}
}

func (r *ResultRepository) GetByKey(_ context.Context, key string) (*result.Document, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.items[key]
	if !ok {
		return nil, false, nil
	}
	copied := doc
	return &copied, true, nil
}

// Put stores a document, used by tests and the dev seed.
func (r *ResultRepository) Put(doc result.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[doc.Key] = doc
}
