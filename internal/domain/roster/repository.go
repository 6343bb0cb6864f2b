package roster

import "context"

type Repository interface {
	ListByParticipant(ctx context.Context, gameID, userID string) ([]Entry, error)
	ListActiveByParticipant(ctx context.Context, gameID, userID string) ([]Entry, error)
	// Save persists the entry's score fields (pointsScored,
	// stagesParticipated, racePoints) as a full overwrite.
	Save(ctx context.Context, entry *Entry) error
}
