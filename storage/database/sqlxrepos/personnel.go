package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/scorecard/core/personnel"
)

type personnelRepository struct {
	db *sqlx.DB
}

var _ personnel.Repository = (*personnelRepository)(nil) // interface compliance check

func NewPersonnelRepository(db *sqlx.DB) personnel.Repository {
	return &personnelRepository{db: db}
}

type entryRow struct {
	ID        string  `db:"id"`
	Person    string  `db:"person"`
	ProjectID string  `db:"project_id"`
	EntryTime string  `db:"entry_time"`
	Score     float64 `db:"score"`
	Content   string  `db:"content"`
	WorkDays  float64 `db:"work_days"`
	CreatedBy string  `db:"created_by"`
}

const entryCols = `id, person, project_id, entry_time, score, content, work_days, created_by`

func packEntry(e personnel.Entry) entryRow {
	return entryRow(e)
}

func (r entryRow) unpack() personnel.Entry {
	return personnel.Entry(r)
}

func unpackEntryRows(rows []entryRow) []personnel.Entry {
	entries := make([]personnel.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.unpack())
	}
	return entries
}

func (repo *personnelRepository) CreateEntries(ctx context.Context, entries ...personnel.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, packEntry(e))
	}

	query := `
INSERT INTO personnel_entry (` + entryCols + `)
VALUES (:id, :person, :project_id, :entry_time, :score, :content, :work_days, :created_by)`
	if _, err := repo.db.NamedExecContext(ctx, query, rows); err != nil {
		return errors.Wrap(err, "inserting personnel entries")
	}
	return nil
}

func (repo *personnelRepository) QueryEntries(ctx context.Context, filter *personnel.QueryFilter) ([]personnel.Entry, error) {
	query := `SELECT ` + entryCols + ` FROM personnel_entry`
	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.ProjectID != "" {
			where = append(where, "project_id = "+arg(filter.ProjectID))
		}
		if filter.Person != "" {
			where = append(where, "person = "+arg(filter.Person))
		}
		if filter.CreatedBy != "" {
			where = append(where, "created_by = "+arg(filter.CreatedBy))
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY entry_time, id"

	var rows []entryRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying personnel entries")
	}
	return unpackEntryRows(rows), nil
}

func (repo *personnelRepository) GetEntryByID(ctx context.Context, id string) (personnel.Entry, error) {
	var row entryRow
	query := `SELECT ` + entryCols + ` FROM personnel_entry WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return personnel.Entry{}, personnel.ErrNotFound
		}
		return personnel.Entry{}, errors.Wrap(err, "getting personnel entry")
	}
	return row.unpack(), nil
}

func (repo *personnelRepository) DeleteEntriesByID(ctx context.Context, ids ...string) error {
	return repo.deleteWhereIn(ctx, "id", ids)
}

func (repo *personnelRepository) DeleteEntriesByProjectID(ctx context.Context, projectIDs ...string) error {
	return repo.deleteWhereIn(ctx, "project_id", projectIDs)
}

func (repo *personnelRepository) deleteWhereIn(ctx context.Context, col string, vals []string) error {
	if len(vals) == 0 {
		return nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("DELETE FROM personnel_entry WHERE %s IN (?)", col), vals)
	if err != nil {
		return errors.Wrap(err, "deleting personnel entries")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting personnel entries")
	}
	return nil
}
