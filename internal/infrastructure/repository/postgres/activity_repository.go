package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/activity"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type activityTableModel struct {
	ID        string `db:"id"`
	Action    string `db:"action"`
	Actor     string `db:"actor"`
	Detail    []byte `db:"detail"`
	CreatedAt int64  `db:"created_at"`
}

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	detail, err := jsonText(entry.Detail)
	if err != nil {
		return fmt.Errorf("encode activity detail: %w", err)
	}

	model := activityTableModel{
		ID:        entry.ID,
		Action:    entry.Action,
		Actor:     entry.Actor,
		Detail:    detail,
		CreatedAt: timeToUnix(entry.CreatedAt),
	}
	query, args, err := qb.InsertModel("activity_logs", model, "")
	if err != nil {
		return fmt.Errorf("build append activity query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}
