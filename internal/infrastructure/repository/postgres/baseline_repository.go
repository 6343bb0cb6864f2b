package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/baseline"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type baselineTableModel struct {
	RiderNameID    string `db:"rider_name_id"`
	SeasonYear     int    `db:"season_year"`
	StartingPoints int    `db:"starting_points"`
	CapturedAt     int64  `db:"captured_at"`
}

// BaselineRepository reads the year-scoped starting-points snapshots.
type BaselineRepository struct {
	db *sqlx.DB
}

func NewBaselineRepository(db *sqlx.DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

func (r *BaselineRepository) Get(ctx context.Context, riderID string, year int) (*baseline.Baseline, bool, error) {
	query, args, err := qb.Select("*").
		From("rider_baselines").
		Where(qb.Eq("rider_name_id", riderID), qb.Eq("season_year", year)).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get baseline query: %w", err)
	}

	var row baselineTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get baseline: %w", err)
	}
	return &baseline.Baseline{
		RiderID:        row.RiderNameID,
		Year:           row.SeasonYear,
		StartingPoints: row.StartingPoints,
		CapturedAt:     unixToTime(row.CapturedAt),
	}, true, nil
}
