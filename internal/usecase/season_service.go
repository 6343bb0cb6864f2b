package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wielerspel/peloton-api/internal/domain/result"
	"github.com/wielerspel/peloton-api/internal/domain/scoring"
	"github.com/wielerspel/peloton-api/internal/domain/season"
	"github.com/wielerspel/peloton-api/internal/platform/cache"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
)

// SeasonService maintains season-long per-rider point totals, independent of
// any fantasy game.
type SeasonService struct {
	seasons season.Repository
	cache   *cache.Store
	logger  *logging.Logger
	now     func() time.Time
}

func NewSeasonService(seasons season.Repository, store *cache.Store, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SeasonService{seasons: seasons, cache: store, logger: logger, now: time.Now}
}

// ApplyResult folds one stage result into every appearing rider's season
// record. Season scoring always uses the raw scraped points for
// non-Grand-Tours and the fixed table for Grand Tours.
func (s *SeasonService) ApplyResult(ctx context.Context, doc *result.Document, raceName string, stage result.Stage, year int) error {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.ApplyResult")
	defer span.End()

	in := scoring.Input{
		RaceName:     raceName,
		Stage:        stage,
		TotalStages:  seasonTotalStages(raceName),
		Multipliers:  scoring.DefaultMultipliers(),
		DirectPoints: true,
	}
	breakdowns := scoring.ScoreAllRiders(doc, in)
	stageKey := stage.String()

	var failed int
	for riderID, breakdown := range breakdowns {
		record, found, err := s.seasons.Get(ctx, riderID, year)
		if err != nil {
			s.logger.WarnContext(ctx, "load season record", "error", err, "riderID", riderID)
			failed++
			continue
		}
		if !found {
			record = &season.Record{RiderID: riderID, Year: year}
		}
		record.SetStage(raceName, raceName, stageKey, breakdown)
		record.UpdatedAt = s.now()
		if err := s.seasons.Upsert(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "upsert season record", "error", err, "riderID", riderID)
			failed++
		}
	}

	if s.cache != nil {
		s.cache.DeletePrefix(ctx, seasonCachePrefix(year))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d season records failed to update", failed, len(breakdowns))
	}
	return nil
}

// RiderPoints returns one rider's season record.
func (s *SeasonService) RiderPoints(ctx context.Context, riderID string, year int) (*season.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.RiderPoints")
	defer span.End()

	if s.cache == nil {
		return s.riderPoints(ctx, riderID, year)
	}
	key := seasonCachePrefix(year) + riderID
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.riderPoints(ctx, riderID, year)
	})
	if err != nil {
		return nil, err
	}
	return value.(*season.Record), nil
}

func (s *SeasonService) riderPoints(ctx context.Context, riderID string, year int) (*season.Record, error) {
	record, found, err := s.seasons.Get(ctx, riderID, year)
	if err != nil {
		return nil, fmt.Errorf("get season record: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: no season points for %s in %d", ErrNotFound, riderID, year)
	}
	return record, nil
}

// CurrentPoints returns a rider's season total, zero when the rider has no
// record yet. Used by the differential game updater.
func (s *SeasonService) CurrentPoints(ctx context.Context, riderID string, year int) (int, error) {
	record, found, err := s.seasons.Get(ctx, riderID, year)
	if err != nil {
		return 0, fmt.Errorf("get season record: %w", err)
	}
	if !found {
		return 0, nil
	}
	return record.TotalPoints, nil
}

// TopRiders lists the season leaderboard.
func (s *SeasonService) TopRiders(ctx context.Context, year, limit int) ([]season.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.TopRiders")
	defer span.End()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.seasons.TopRiders(ctx, year, limit)
	if err != nil {
		return nil, fmt.Errorf("list top riders: %w", err)
	}
	return records, nil
}

func seasonCachePrefix(year int) string {
	return fmt.Sprintf("season:%d:", year)
}

func seasonTotalStages(raceName string) int {
	if scoring.IsGrandTour(raceName) {
		return grandTourStages
	}
	return 0
}
