package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/roster"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type rosterTableModel struct {
	ID                 string `db:"id"`
	GameID             string `db:"game_id"`
	UserID             string `db:"user_id"`
	RiderNameID        string `db:"rider_name_id"`
	Status             string `db:"status"`
	PointsScored       int    `db:"points_scored"`
	StagesParticipated int    `db:"stages_participated"`
	RacePoints         []byte `db:"race_points"`
	UpdatedAt          int64  `db:"updated_at"`
	DeletedAt          *int64 `db:"deleted_at"`
}

func (m rosterTableModel) toDomain() (roster.Entry, error) {
	e := roster.Entry{
		ID:                 m.ID,
		GameID:             m.GameID,
		UserID:             m.UserID,
		RiderID:            m.RiderNameID,
		Status:             roster.Status(m.Status),
		PointsScored:       m.PointsScored,
		StagesParticipated: m.StagesParticipated,
		UpdatedAt:          unixToTime(m.UpdatedAt),
	}
	if err := fromJSONText(m.RacePoints, &e.RacePoints); err != nil {
		return roster.Entry{}, fmt.Errorf("decode race points %s: %w", m.ID, err)
	}
	return e, nil
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByParticipant(ctx context.Context, gameID, userID string) ([]roster.Entry, error) {
	return r.list(ctx, gameID, userID, false)
}

func (r *RosterRepository) ListActiveByParticipant(ctx context.Context, gameID, userID string) ([]roster.Entry, error) {
	return r.list(ctx, gameID, userID, true)
}

func (r *RosterRepository) list(ctx context.Context, gameID, userID string, activeOnly bool) ([]roster.Entry, error) {
	builder := qb.Select("*").
		From("player_teams").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("rider_name_id ASC")
	if activeOnly {
		builder.Where(qb.Eq("status", string(roster.StatusActive)))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Save overwrites the derived score fields. The racePoints document is always
// written whole; totals travel with it so a reader never sees them split.
func (r *RosterRepository) Save(ctx context.Context, entry *roster.Entry) error {
	racePoints, err := jsonText(entry.RacePoints)
	if err != nil {
		return fmt.Errorf("encode race points: %w", err)
	}

	query, args, err := qb.Update("player_teams").
		Set("points_scored", entry.PointsScored).
		Set("stages_participated", entry.StagesParticipated).
		Set("race_points", racePoints).
		Set("updated_at", time.Now().Unix()).
		Where(qb.Eq("id", entry.ID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save roster entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save roster entry: %w", err)
	}
	return nil
}
