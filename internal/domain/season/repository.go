package season

import "context"

type Repository interface {
	Get(ctx context.Context, riderID string, year int) (*Record, bool, error)
	Upsert(ctx context.Context, record *Record) error
	TopRiders(ctx context.Context, year, limit int) ([]Record, error)
}
