package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/participant"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type participantTableModel struct {
	ID          string `db:"id"`
	GameID      string `db:"game_id"`
	UserID      string `db:"user_id"`
	Status      string `db:"status"`
	TotalPoints int    `db:"total_points"`
	Placing     int    `db:"placing"`
	UpdatedAt   int64  `db:"updated_at"`
	DeletedAt   *int64 `db:"deleted_at"`
}

func (m participantTableModel) toDomain() participant.Participant {
	return participant.Participant{
		ID:          m.ID,
		GameID:      m.GameID,
		UserID:      m.UserID,
		Status:      participant.Status(m.Status),
		TotalPoints: m.TotalPoints,
		Placing:     m.Placing,
		UpdatedAt:   unixToTime(m.UpdatedAt),
	}
}

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) ListActiveByGame(ctx context.Context, gameID string) ([]participant.Participant, error) {
	return r.list(ctx, gameID, true)
}

func (r *ParticipantRepository) ListByGame(ctx context.Context, gameID string) ([]participant.Participant, error) {
	return r.list(ctx, gameID, false)
}

func (r *ParticipantRepository) list(ctx context.Context, gameID string, activeOnly bool) ([]participant.Participant, error) {
	builder := qb.Select("*").
		From("game_participants").
		Where(qb.Eq("game_id", gameID), qb.IsNull("deleted_at")).
		OrderBy("placing ASC", "total_points DESC")
	if activeOnly {
		builder.Where(qb.Eq("status", string(participant.StatusActive)))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ParticipantRepository) UpdateTotalPoints(ctx context.Context, id string, totalPoints int) error {
	query, args, err := qb.Update("game_participants").
		Set("total_points", totalPoints).
		Set("updated_at", time.Now().Unix()).
		Where(qb.Eq("id", id), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update participant points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update participant points: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) UpdatePlacing(ctx context.Context, id string, placing int) error {
	query, args, err := qb.Update("game_participants").
		Set("placing", placing).
		Set("updated_at", time.Now().Unix()).
		Where(qb.Eq("id", id), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update participant placing query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update participant placing: %w", err)
	}
	return nil
}
