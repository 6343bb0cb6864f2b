package game

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Game, bool, error)
	List(ctx context.Context) ([]Game, error)
	// ListByTypeAndStatuses returns games of one family whose status is in
	// the given set, the eligibility query of the fan-out pass.
	ListByTypeAndStatuses(ctx context.Context, gameType Type, statuses []Status) ([]Game, error)
}
