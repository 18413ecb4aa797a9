package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/scorecard/core/personnel"
	"github.com/trezcool/scorecard/core/project"
)

type projectRepository struct {
	db      *projectTable
	entries *personnelTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db.project, entries: db.personnel}
}

func (repo *projectRepository) query() []project.Project {
	projects := make([]project.Project, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects
}

func (repo *projectRepository) NextProjectID(ctx context.Context) (string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var max int
	for id := range repo.db.table {
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "P")); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("P%04d", max+1), nil
}

func (repo *projectRepository) CreateProjectWithEntries(ctx context.Context, p project.Project, entries []personnel.Entry) (project.Project, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[p.ID]; ok {
		return project.Project{}, project.ErrIDTaken
	}
	repo.db.table[p.ID] = &p
	repo.saveEntries(p.ID, entries)
	return p, nil
}

func (repo *projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter) ([]project.Project, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	projects := repo.query()
	if filter == nil {
		return projects, nil
	}

	matches := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != "" && p.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.Search != "" && !projectMatchesSearch(p, filter.Search) {
			continue
		}
		matches = append(matches, p)
	}
	return matches, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) UpdateProjectWithEntries(ctx context.Context, p project.Project, entries []personnel.Entry) (project.Project, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return project.Project{}, project.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	repo.deleteEntries(p.ID)
	repo.saveEntries(p.ID, entries)
	return p, nil
}

func (repo *projectRepository) UpdateProjectStatus(ctx context.Context, id, status string) (project.Project, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p, ok := repo.db.table[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	p.Status = status
	return *p, nil
}

func (repo *projectRepository) DeleteProjectsByID(ctx context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
		repo.deleteEntries(id)
	}
	return nil
}

func projectMatchesSearch(p project.Project, search string) bool {
	search = strings.ToLower(search)
	for _, s := range []string{p.Name, p.Content, p.ResponsiblePerson} {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func (repo *projectRepository) saveEntries(projectID string, entries []personnel.Entry) {
	repo.entries.mutex.Lock()
	defer repo.entries.mutex.Unlock()
	for _, entry := range entries {
		entry := entry
		entry.ProjectID = projectID
		repo.entries.table[entry.ID] = &entry
	}
}

func (repo *projectRepository) deleteEntries(projectID string) {
	repo.entries.mutex.Lock()
	defer repo.entries.mutex.Unlock()
	for id, entry := range repo.entries.table {
		if entry.ProjectID == projectID {
			delete(repo.entries.table, id)
		}
	}
}
