package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/scorecard/core/scoring"
)

type scoringRepository struct {
	db *sqlx.DB
}

var _ scoring.Repository = (*scoringRepository)(nil) // interface compliance check

func NewScoringRepository(db *sqlx.DB) scoring.Repository {
	return &scoringRepository{db: db}
}

type scoringRow struct {
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (repo *scoringRepository) GetTable(ctx context.Context) (scoring.Table, error) {
	var row scoringRow
	if err := repo.db.GetContext(ctx, &row, `SELECT data, updated_at FROM scoring_table WHERE id = 1`); err != nil {
		if err == sql.ErrNoRows {
			return scoring.Table{}, scoring.ErrNotFound
		}
		return scoring.Table{}, errors.Wrap(err, "getting scoring table")
	}

	var t scoring.Table
	if err := json.Unmarshal(row.Data, &t); err != nil {
		return scoring.Table{}, errors.Wrap(err, "decoding scoring table")
	}
	t.UpdatedAt = row.UpdatedAt
	return t, nil
}

func (repo *scoringRepository) SaveTable(ctx context.Context, t scoring.Table) (scoring.Table, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return scoring.Table{}, errors.Wrap(err, "encoding scoring table")
	}

	query := `
INSERT INTO scoring_table (id, data, updated_at)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err = repo.db.ExecContext(ctx, query, data, t.UpdatedAt.UTC()); err != nil {
		return scoring.Table{}, errors.Wrap(err, "saving scoring table")
	}
	return t, nil
}
