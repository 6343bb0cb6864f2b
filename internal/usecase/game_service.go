package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/wielerspel/peloton-api/internal/domain/game"
	"github.com/wielerspel/peloton-api/internal/domain/participant"
	"github.com/wielerspel/peloton-api/internal/domain/roster"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
)

// GameService serves the read side: game listings, standings, and team
// detail.
type GameService struct {
	games        game.Repository
	participants participant.Repository
	rosters      roster.Repository
	logger       *logging.Logger
}

func NewGameService(games game.Repository, participants participant.Repository, rosters roster.Repository, logger *logging.Logger) *GameService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GameService{games: games, participants: participants, rosters: rosters, logger: logger}
}

func (s *GameService) List(ctx context.Context) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.List")
	defer span.End()

	games, err := s.games.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Standings returns a game's participants ordered by placing.
func (s *GameService) Standings(ctx context.Context, gameID string) (*game.Game, []participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.Standings")
	defer span.End()

	g, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	participants, err := s.participants.ListByGame(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("list participants: %w", err)
	}
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].Placing != participants[j].Placing {
			return participants[i].Placing < participants[j].Placing
		}
		return participants[i].TotalPoints > participants[j].TotalPoints
	})
	return g, participants, nil
}

// Team returns one participant's roster within a game.
func (s *GameService) Team(ctx context.Context, gameID, userID string) ([]roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.Team")
	defer span.End()

	_, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	entries, err := s.rosters.ListByParticipant(ctx, gameID, userID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no team for user %s in game %s", ErrNotFound, userID, gameID)
	}
	return entries, nil
}
