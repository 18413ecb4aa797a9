package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/scorecard/core/personnel"
)

type personnelRepository struct {
	db *personnelTable
}

var _ personnel.Repository = (*personnelRepository)(nil) // interface compliance check

func NewPersonnelRepository(db *DB) personnel.Repository {
	return &personnelRepository{db: db.personnel}
}

func (repo *personnelRepository) query() []personnel.Entry {
	entries := make([]personnel.Entry, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EntryTime != entries[j].EntryTime {
			return entries[i].EntryTime < entries[j].EntryTime
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

func (repo *personnelRepository) CreateEntries(ctx context.Context, entries ...personnel.Entry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, entry := range entries {
		entry := entry
		repo.db.table[entry.ID] = &entry
	}
	return nil
}

func (repo *personnelRepository) QueryEntries(ctx context.Context, filter *personnel.QueryFilter) ([]personnel.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := repo.query()
	if filter == nil {
		return entries, nil
	}

	matches := make([]personnel.Entry, 0, len(entries))
	for _, entry := range entries {
		if filter.ProjectID != "" && entry.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Person != "" && entry.Person != filter.Person {
			continue
		}
		if filter.CreatedBy != "" && entry.CreatedBy != filter.CreatedBy {
			continue
		}
		matches = append(matches, entry)
	}
	return matches, nil
}

func (repo *personnelRepository) GetEntryByID(ctx context.Context, id string) (personnel.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if entry, ok := repo.db.table[id]; ok {
		return *entry, nil
	}
	return personnel.Entry{}, personnel.ErrNotFound
}

func (repo *personnelRepository) DeleteEntriesByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *personnelRepository) DeleteEntriesByProjectID(ctx context.Context, projectIDs ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, pid := range projectIDs {
		for id, entry := range repo.db.table {
			if entry.ProjectID == pid {
				delete(repo.db.table, id)
			}
		}
	}
	return nil
}
