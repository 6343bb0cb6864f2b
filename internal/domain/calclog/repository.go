package calclog

import "context"

type Repository interface {
	// FindSuccess returns the authoritative success entry for the given
	// input fingerprint, or false when none exists.
	FindSuccess(ctx context.Context, raceName, stage string, year int, inputHash string) (*Entry, bool, error)
	Append(ctx context.Context, entry *Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
