package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wielerspel/peloton-api/internal/domain/result"
	qb "github.com/wielerspel/peloton-api/internal/platform/querybuilder"
)

type resultTableModel struct {
	Key                     string `db:"key"`
	StageResults            []byte `db:"stage_results"`
	GeneralClassification   []byte `db:"general_classification"`
	PointsClassification    []byte `db:"points_classification"`
	MountainsClassification []byte `db:"mountains_classification"`
	YouthClassification     []byte `db:"youth_classification"`
	UpdatedAt               int64  `db:"updated_at"`
}

// ResultRepository reads scraper_data rows. The scraper owns all writes.
type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) GetByKey(ctx context.Context, key string) (*result.Document, bool, error) {
	query, args, err := qb.Select("*").
		From("scraper_data").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get result query: %w", err)
	}

	var row resultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get result document: %w", err)
	}

	doc := &result.Document{
		Key:       row.Key,
		UpdatedAt: unixToTime(row.UpdatedAt),
	}
	lists := []struct {
		raw []byte
		dst *result.RiderList
	}{
		{row.StageResults, &doc.StageResults},
		{row.GeneralClassification, &doc.GeneralClassification},
		{row.PointsClassification, &doc.PointsClassification},
		{row.MountainsClassification, &doc.MountainsClassification},
		{row.YouthClassification, &doc.YouthClassification},
	}
	for _, l := range lists {
		if err := fromJSONText(l.raw, l.dst); err != nil {
			return nil, false, fmt.Errorf("decode result document %s: %w", key, err)
		}
	}
	return doc, true, nil
}
