package participant

import "context"

type Repository interface {
	ListActiveByGame(ctx context.Context, gameID string) ([]Participant, error)
	ListByGame(ctx context.Context, gameID string) ([]Participant, error)
	UpdateTotalPoints(ctx context.Context, id string, totalPoints int) error
	UpdatePlacing(ctx context.Context, id string, placing int) error
}
