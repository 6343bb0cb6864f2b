package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wielerspel/peloton-api/internal/domain/scoring"
	"github.com/wielerspel/peloton-api/internal/domain/season"
)

type SeasonRepository struct {
	mu    sync.RWMutex
	items map[string]season.Record
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{items: map[string]season.Record{}}
}

func seasonKey(riderID string, year int) string {
	return fmt.Sprintf("%s:%d", riderID, year)
}

func (r *SeasonRepository) Get(_ context.Context, riderID string, year int) (*season.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[seasonKey(riderID, year)]
	if !ok {
		return nil, false, nil
	}
	copied := cloneRecord(record)
	return &copied, true, nil
}

func (r *SeasonRepository) Upsert(_ context.Context, record *season.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[seasonKey(record.RiderID, record.Year)] = cloneRecord(*record)
	return nil
}

func (r *SeasonRepository) TopRiders(_ context.Context, year, limit int) ([]season.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []season.Record
	for _, record := range r.items {
		if record.Year == year {
			out = append(out, cloneRecord(record))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].RiderID < out[j].RiderID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRecord(record season.Record) season.Record {
	if record.Races == nil {
		return record
	}
	races := make(map[string]season.RaceBreakdown, len(record.Races))
	for raceKey, br := range record.Races {
		copied := br
		copied.Stages = make(map[string]scoring.Breakdown, len(br.Stages))
		for stageKey, b := range br.Stages {
			copied.Stages[stageKey] = b
		}
		races[raceKey] = copied
	}
	record.Races = races
	return record
}
