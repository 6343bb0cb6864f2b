package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/season"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type seasonTableModel struct {
	RiderNameID string `db:"rider_name_id"`
	SeasonYear  int    `db:"season_year"`
	TotalPoints int    `db:"total_points"`
	Races       []byte `db:"races"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (m seasonTableModel) toDomain() (season.Record, error) {
	r := season.Record{
		RiderID:     m.RiderNameID,
		Year:        m.SeasonYear,
		TotalPoints: m.TotalPoints,
		UpdatedAt:   unixToTime(m.UpdatedAt),
	}
	if err := fromJSONText(m.Races, &r.Races); err != nil {
		return season.Record{}, fmt.Errorf("decode season races %s/%d: %w", m.RiderNameID, m.SeasonYear, err)
	}
	return r, nil
}

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Get(ctx context.Context, riderID string, year int) (*season.Record, bool, error) {
	query, args, err := qb.Select("*").
		From("season_points").
		Where(qb.Eq("rider_name_id", riderID), qb.Eq("season_year", year)).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get season record query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get season record: %w", err)
	}
	record, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (r *SeasonRepository) Upsert(ctx context.Context, record *season.Record) error {
	races, err := jsonText(record.Races)
	if err != nil {
		return fmt.Errorf("encode season races: %w", err)
	}

	model := seasonTableModel{
		RiderNameID: record.RiderID,
		SeasonYear:  record.Year,
		TotalPoints: record.TotalPoints,
		Races:       races,
		UpdatedAt:   timeToUnix(record.UpdatedAt),
	}
	query, args, err := qb.InsertModel("season_points", model, `ON CONFLICT (rider_name_id, season_year)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    races = EXCLUDED.races,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert season record query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season record: %w", err)
	}
	return nil
}

func (r *SeasonRepository) TopRiders(ctx context.Context, year, limit int) ([]season.Record, error) {
	query, args, err := qb.Select("*").
		From("season_points").
		Where(qb.Eq("season_year", year)).
		OrderBy("total_points DESC", "rider_name_id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build top riders query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list top riders: %w", err)
	}

	out := make([]season.Record, 0, len(rows))
	for _, row := range rows {
		record, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
