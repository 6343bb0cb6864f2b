package usecase

import (
	"context"
	"fmt"

	"github.com/wielerspel/peloton-api/internal/domain/baseline"
	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
)

// MarginalGainsService recomputes the differential game family: each rider
// scores the gain between their live season points and a fixed baseline
// captured when the season opened.
type MarginalGainsService struct {
	games        game.Repository
	participants participant.Repository
	rosters      roster.Repository
	baselines    baseline.Repository
	season       *SeasonService
	logger       *logging.Logger
}

func NewMarginalGainsService(
	games game.Repository,
	participants participant.Repository,
	rosters roster.Repository,
	baselines baseline.Repository,
	seasonSvc *SeasonService,
	logger *logging.Logger,
) *MarginalGainsService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MarginalGainsService{
		games:        games,
		participants: participants,
		rosters:      rosters,
		baselines:    baselines,
		season:       seasonSvc,
		logger:       logger,
	}
}

// Recalculate refreshes every active differential game for the given season
// year.
func (s *MarginalGainsService) Recalculate(ctx context.Context, year int) error {
	ctx, span := startUsecaseSpan(ctx, "MarginalGainsService.Recalculate")
	defer span.End()

	games, err := s.games.ListByTypeAndStatuses(ctx, game.TypeMarginalGains, []game.Status{game.StatusActive})
	if err != nil {
		return fmt.Errorf("list differential games: %w", err)
	}

	var failed int
	for i := range games {
		g := &games[i]
		if g.SeasonYear != year {
			continue
		}
		if err := s.recalculateGame(ctx, g, year); err != nil {
			s.logger.WarnContext(ctx, "differential game recalculation failed", "error", err, "gameID", g.ID)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d differential games failed to recalculate", failed)
	}
	return nil
}

func (s *MarginalGainsService) recalculateGame(ctx context.Context, g *game.Game, year int) error {
	participants, err := s.participants.ListActiveByGame(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}

	for i := range participants {
		p := &participants[i]
		total, err := s.recalculateParticipant(ctx, g, p, year)
		if err != nil {
			return fmt.Errorf("participant %s: %w", p.ID, err)
		}
		if err := s.participants.UpdateTotalPoints(ctx, p.ID, total); err != nil {
			return fmt.Errorf("update participant total: %w", err)
		}
		p.TotalPoints = total
	}

	// Differential games rank sequentially 1..N, no tie sharing.
	ranks := sequentialRanks(participants)
	for i := range participants {
		p := &participants[i]
		rank := ranks[p.ID]
		if rank == p.Placing {
			continue
		}
		if err := s.participants.UpdatePlacing(ctx, p.ID, rank); err != nil {
			return fmt.Errorf("update placing for %s: %w", p.ID, err)
		}
		p.Placing = rank
	}
	return nil
}

func (s *MarginalGainsService) recalculateParticipant(ctx context.Context, g *game.Game, p *participant.Participant, year int) (int, error) {
	entries, err := s.rosters.ListActiveByParticipant(ctx, g.ID, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("list roster: %w", err)
	}

	total := 0
	for i := range entries {
		e := &entries[i]
		gain, err := s.riderGain(ctx, e.RiderID, year)
		if err != nil {
			return 0, err
		}
		// Overwrite, never accumulate: the gain is recomputed in full on
		// every pass.
		if e.PointsScored != gain {
			e.PointsScored = gain
			if err := s.rosters.Save(ctx, e); err != nil {
				return 0, fmt.Errorf("save roster entry %s: %w", e.ID, err)
			}
		}
		total += gain
	}
	return total, nil
}

func (s *MarginalGainsService) riderGain(ctx context.Context, riderID string, year int) (int, error) {
	current, err := s.season.CurrentPoints(ctx, riderID, year)
	if err != nil {
		return 0, fmt.Errorf("current season points for %s: %w", riderID, err)
	}
	base, found, err := s.baselines.Get(ctx, riderID, year)
	if err != nil {
		return 0, fmt.Errorf("baseline for %s: %w", riderID, err)
	}
	if !found {
		// Riders without a snapshot score their full season total.
		return current, nil
	}
	return current - base.StartingPoints, nil
}
