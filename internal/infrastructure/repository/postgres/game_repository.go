package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/game"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type gameTableModel struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	GameType   string `db:"game_type"`
	Status     string `db:"status"`
	RaceType   string `db:"race_type"`
	SeasonYear int    `db:"season_year"`
	Config     []byte `db:"config"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
	DeletedAt  *int64 `db:"deleted_at"`
}

func (m gameTableModel) toDomain() (game.Game, error) {
	g := game.Game{
		ID:         m.ID,
		Name:       m.Name,
		Type:       game.Type(m.GameType),
		Status:     game.Status(m.Status),
		RaceType:   game.RaceType(m.RaceType),
		SeasonYear: m.SeasonYear,
		CreatedAt:  unixToTime(m.CreatedAt),
		UpdatedAt:  unixToTime(m.UpdatedAt),
	}
	if err := fromJSONText(m.Config, &g.Config); err != nil {
		return game.Game{}, fmt.Errorf("decode game config %s: %w", m.ID, err)
	}
	return g, nil
}

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (*game.Game, bool, error) {
	query, args, err := qb.Select("*").
		From("games").
		Where(qb.Eq("id", id), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get game: %w", err)
	}
	g, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}
	return &g, true, nil
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("*").
		From("games").
		Where(qb.IsNull("deleted_at")).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return gamesToDomain(rows)
}

func (r *GameRepository) ListByTypeAndStatuses(ctx context.Context, gameType game.Type, statuses []game.Status) ([]game.Game, error) {
	statusValues := make([]any, 0, len(statuses))
	for _, s := range statuses {
		statusValues = append(statusValues, string(s))
	}

	query, args, err := qb.Select("*").
		From("games").
		Where(
			qb.Eq("game_type", string(gameType)),
			qb.In("status", statusValues),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list eligible games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list eligible games: %w", err)
	}
	return gamesToDomain(rows)
}

func gamesToDomain(rows []gameTableModel) ([]game.Game, error) {
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		g, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
