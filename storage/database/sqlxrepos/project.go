package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/scorecard/core/personnel"
	"github.com/trezcool/scorecard/core/project"
)

const pqUniqueViolation = "23505"

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) project.Repository {
	return &projectRepository{db: db}
}

type projectRow struct {
	ID                string  `db:"id"`
	Kind              string  `db:"kind"`
	Name              string  `db:"name"`
	Content           string  `db:"content"`
	EntryTime         string  `db:"entry_time"`
	Score             float64 `db:"score"`
	ResponsiblePerson string  `db:"responsible_person"`
	Status            string  `db:"status"`
	ScoringParts      []byte  `db:"scoring_parts"`
	TotalWorkDays     float64 `db:"total_work_days"`
	CreatedBy         string  `db:"created_by"`
	CreatorName       string  `db:"creator_name"`
	RawSelections     []byte  `db:"raw_selections"`
}

const projectCols = `id, kind, name, content, entry_time, score, responsible_person, status,
	scoring_parts, total_work_days, created_by, creator_name, raw_selections`

func packProject(p project.Project) (projectRow, error) {
	parts, err := json.Marshal(p.ScoringParts)
	if err != nil {
		return projectRow{}, errors.Wrap(err, "encoding scoring parts")
	}
	sels, err := json.Marshal(p.RawSelections)
	if err != nil {
		return projectRow{}, errors.Wrap(err, "encoding selections")
	}
	return projectRow{
		ID:                p.ID,
		Kind:              p.Kind,
		Name:              p.Name,
		Content:           p.Content,
		EntryTime:         p.EntryTime,
		Score:             p.Score,
		ResponsiblePerson: p.ResponsiblePerson,
		Status:            p.Status,
		ScoringParts:      parts,
		TotalWorkDays:     p.TotalWorkDays,
		CreatedBy:         p.CreatedBy,
		CreatorName:       p.CreatorName,
		RawSelections:     sels,
	}, nil
}

func (r projectRow) unpack() (project.Project, error) {
	p := project.Project{
		ID:                r.ID,
		Kind:              r.Kind,
		Name:              r.Name,
		Content:           r.Content,
		EntryTime:         r.EntryTime,
		Score:             r.Score,
		ResponsiblePerson: r.ResponsiblePerson,
		Status:            r.Status,
		TotalWorkDays:     r.TotalWorkDays,
		CreatedBy:         r.CreatedBy,
		CreatorName:       r.CreatorName,
	}
	if len(r.ScoringParts) > 0 {
		if err := json.Unmarshal(r.ScoringParts, &p.ScoringParts); err != nil {
			return project.Project{}, errors.Wrap(err, "decoding scoring parts")
		}
	}
	if len(r.RawSelections) > 0 {
		if err := json.Unmarshal(r.RawSelections, &p.RawSelections); err != nil {
			return project.Project{}, errors.Wrap(err, "decoding selections")
		}
	}
	return p, nil
}

func (repo *projectRepository) NextProjectID(ctx context.Context) (string, error) {
	var next int
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 2) AS INTEGER)), 0) + 1 FROM project`
	if err := repo.db.GetContext(ctx, &next, query); err != nil {
		return "", errors.Wrap(err, "getting next project id")
	}
	return fmt.Sprintf("P%04d", next), nil
}

func (repo *projectRepository) CreateProjectWithEntries(ctx context.Context, p project.Project, entries []personnel.Entry) (project.Project, error) {
	row, err := packProject(p)
	if err != nil {
		return project.Project{}, err
	}

	err = repo.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
INSERT INTO project (` + projectCols + `)
VALUES (:id, :kind, :name, :content, :entry_time, :score, :responsible_person, :status,
	:scoring_parts, :total_work_days, :created_by, :creator_name, :raw_selections)`
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
				return project.ErrIDTaken
			}
			return errors.Wrap(err, "inserting project")
		}
		return insertEntries(ctx, tx, entries)
	})
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (repo *projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter) ([]project.Project, error) {
	query := `SELECT ` + projectCols + ` FROM project`
	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Status != "" {
			where = append(where, "status = "+arg(filter.Status))
		}
		if filter.CreatedBy != "" {
			where = append(where, "created_by = "+arg(filter.CreatedBy))
		}
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			where = append(where, fmt.Sprintf("(name ILIKE %[1]s OR content ILIKE %[1]s OR responsible_person ILIKE %[1]s)", p))
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}

	projects := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.unpack()
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	var row projectRow
	query := `SELECT ` + projectCols + ` FROM project WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return row.unpack()
}

func (repo *projectRepository) UpdateProjectWithEntries(ctx context.Context, p project.Project, entries []personnel.Entry) (project.Project, error) {
	row, err := packProject(p)
	if err != nil {
		return project.Project{}, err
	}

	err = repo.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
UPDATE project
SET kind = :kind, name = :name, content = :content, score = :score,
	responsible_person = :responsible_person, scoring_parts = :scoring_parts,
	total_work_days = :total_work_days, raw_selections = :raw_selections
WHERE id = :id`
		res, err := tx.NamedExecContext(ctx, query, row)
		if err != nil {
			return errors.Wrap(err, "updating project")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return project.ErrNotFound
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM personnel_entry WHERE project_id = $1`, p.ID); err != nil {
			return errors.Wrap(err, "replacing personnel entries")
		}
		return insertEntries(ctx, tx, entries)
	})
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (repo *projectRepository) UpdateProjectStatus(ctx context.Context, id, status string) (project.Project, error) {
	var row projectRow
	query := `UPDATE project SET status = $1 WHERE id = $2 RETURNING ` + projectCols
	if err := repo.db.GetContext(ctx, &row, query, status, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "updating project status")
	}
	return row.unpack()
}

// DeleteProjectsByID cascades to personnel entries via the FK constraint.
func (repo *projectRepository) DeleteProjectsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM project WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting projects")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting projects")
	}
	return nil
}

func (repo *projectRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func insertEntries(ctx context.Context, tx *sqlx.Tx, entries []personnel.Entry) error {
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
	if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
		return errors.Wrap(err, "inserting personnel entries")
	}
	return nil
}
