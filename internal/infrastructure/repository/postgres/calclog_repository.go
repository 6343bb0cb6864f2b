package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/wielerspel/peloton-api/internal/domain/calclog"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type calcLogTableModel struct {
	ID                 string         `db:"id"`
	RaceName           string         `db:"race_name"`
	Stage              string         `db:"stage"`
	Year               int            `db:"year"`
	InputHash          string         `db:"input_hash"`
	Status             string         `db:"status"`
	GamesAffected      pq.StringArray `db:"games_affected"`
	TotalPointsAwarded int            `db:"total_points_awarded"`
	Validation         []byte         `db:"validation"`
	Errors             pq.StringArray `db:"errors"`
	DurationMS         int64          `db:"duration_ms"`
	CreatedAt          int64          `db:"created_at"`
}

func (m calcLogTableModel) toDomain() (calclog.Entry, error) {
	e := calclog.Entry{
		ID:                 m.ID,
		RaceName:           m.RaceName,
		Stage:              m.Stage,
		Year:               m.Year,
		InputHash:          m.InputHash,
		Status:             calclog.Status(m.Status),
		GamesAffected:      []string(m.GamesAffected),
		TotalPointsAwarded: m.TotalPointsAwarded,
		Errors:             []string(m.Errors),
		Duration:           time.Duration(m.DurationMS) * time.Millisecond,
		CreatedAt:          unixToTime(m.CreatedAt),
	}
	if err := fromJSONText(m.Validation, &e.Validation); err != nil {
		return calclog.Entry{}, fmt.Errorf("decode validation summary %s: %w", m.ID, err)
	}
	return e, nil
}

type CalcLogRepository struct {
	db *sqlx.DB
}

func NewCalcLogRepository(db *sqlx.DB) *CalcLogRepository {
	return &CalcLogRepository{db: db}
}

func (r *CalcLogRepository) FindSuccess(ctx context.Context, raceName, stage string, year int, inputHash string) (*calclog.Entry, bool, error) {
	query, args, err := qb.Select("*").
		From("points_calculation_logs").
		Where(
			qb.Eq("race_name", raceName),
			qb.Eq("stage", stage),
			qb.Eq("year", year),
			qb.Eq("input_hash", inputHash),
			qb.Eq("status", string(calclog.StatusSuccess)),
		).
		OrderBy("created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build find success log query: %w", err)
	}

	var row calcLogTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find success log: %w", err)
	}
	e, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

func (r *CalcLogRepository) Append(ctx context.Context, entry *calclog.Entry) error {
	validation, err := jsonText(entry.Validation)
	if err != nil {
		return fmt.Errorf("encode validation summary: %w", err)
	}

	model := calcLogTableModel{
		ID:                 entry.ID,
		RaceName:           entry.RaceName,
		Stage:              entry.Stage,
		Year:               entry.Year,
		InputHash:          entry.InputHash,
		Status:             string(entry.Status),
		GamesAffected:      pq.StringArray(entry.GamesAffected),
		TotalPointsAwarded: entry.TotalPointsAwarded,
		Validation:         validation,
		Errors:             pq.StringArray(entry.Errors),
		DurationMS:         entry.Duration.Milliseconds(),
		CreatedAt:          timeToUnix(entry.CreatedAt),
	}
	query, args, err := qb.InsertModel("points_calculation_logs", model, "")
	if err != nil {
		return fmt.Errorf("build append calculation log query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append calculation log: %w", err)
	}
	return nil
}

func (r *CalcLogRepository) ListRecent(ctx context.Context, limit int) ([]calclog.Entry, error) {
	query, args, err := qb.Select("*").
		From("points_calculation_logs").
		OrderBy("created_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list calculation logs query: %w", err)
	}

	var rows []calcLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list calculation logs: %w", err)
	}

	out := make([]calclog.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
