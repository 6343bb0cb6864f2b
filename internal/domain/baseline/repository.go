package baseline

import "context"

// Repository reads the year-scoped baseline snapshots. The capture job that
// writes them lives outside this service.
type Repository interface {
	Get(ctx context.Context, riderID string, year int) (*Baseline, bool, error)
}
