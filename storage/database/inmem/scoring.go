package inmemdb

import (
	"context"

	"github.com/trezcool/scorecard/core/scoring"
)

type scoringRepository struct {
	db *scoringTable
}

var _ scoring.Repository = (*scoringRepository)(nil) // interface compliance check

func NewScoringRepository(db *DB) scoring.Repository {
	return &scoringRepository{db: db.scoring}
}

func (repo *scoringRepository) GetTable(ctx context.Context) (scoring.Table, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.table == nil {
		return scoring.Table{}, scoring.ErrNotFound
	}
	return *repo.db.table, nil
}

func (repo *scoringRepository) SaveTable(ctx context.Context, t scoring.Table) (scoring.Table, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table = &t
	return t, nil
}
