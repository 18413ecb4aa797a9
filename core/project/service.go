package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/scorecard/core"
	"github.com/trezcool/scorecard/core/personnel"
	"github.com/trezcool/scorecard/core/scoring"
	"github.com/trezcool/scorecard/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("project not found")
	ErrIDTaken            = errors.New("project id already taken")
	ErrCompletedImmutable = errors.New("completed projects cannot be modified")
)

// maxIDRetries bounds the id-collision retry loop on create.
const maxIDRetries = 10

type (
	// Repository persists a Project and its derived personnel entry set as
	// a single logical unit: create/update/delete apply both or neither.
	Repository interface {
		// NextProjectID allocates the next P#### id (max existing suffix + 1).
		NextProjectID(ctx context.Context) (string, error)
		// CreateProjectWithEntries atomically inserts the project and its
		// entries; returns ErrIDTaken when the id is already in use.
		CreateProjectWithEntries(ctx context.Context, p Project, entries []personnel.Entry) (Project, error)
		QueryProjects(ctx context.Context, filter *QueryFilter) ([]Project, error)
		GetProjectByID(ctx context.Context, id string) (Project, error)
		// UpdateProjectWithEntries atomically replaces the project record and
		// its whole personnel entry set.
		UpdateProjectWithEntries(ctx context.Context, p Project, entries []personnel.Entry) (Project, error)
		UpdateProjectStatus(ctx context.Context, id, status string) (Project, error)
		// DeleteProjectsByID cascades to all personnel entries of the projects.
		DeleteProjectsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		// Preview computes the live pre-commit score of a submission.
		Preview(ctx context.Context, sel scoring.Selections) (scoring.Result, error)
		Create(ctx context.Context, actor user.User, np NewProject) (Project, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Project, error)
		GetByID(ctx context.Context, actor user.User, id string) (Project, error)
		Update(ctx context.Context, actor user.User, id string, up UpdateProject) (Project, error)
		SetStatus(ctx context.Context, actor user.User, id, status string) (Project, error)
		Delete(ctx context.Context, actor user.User, ids ...string) error
		// ResyncScores recomputes every project's denormalized score and
		// personnel entry set from its raw selections against the current
		// rule table. It is run after every rule-table update.
		ResyncScores(ctx context.Context) error
	}

	service struct {
		repo     Repository
		tableSvc scoring.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, tableSvc scoring.Service) Service {
	return &service{
		repo:     repo,
		tableSvc: tableSvc,
	}
}

func (svc *service) Preview(ctx context.Context, sel scoring.Selections) (scoring.Result, error) {
	table, err := svc.tableSvc.Get(ctx)
	if err != nil {
		return scoring.Result{}, errors.Wrap(err, "getting scoring table")
	}
	return scoring.Compute(sel, table), nil
}

func (svc *service) Create(ctx context.Context, actor user.User, np NewProject) (Project, error) {
	table, err := svc.tableSvc.Get(ctx)
	if err != nil {
		return Project{}, errors.Wrap(err, "getting scoring table")
	}

	res := scoring.Compute(np.Selections, table)
	p := Project{
		Kind:              np.Selections.Kind(),
		Name:              np.Name,
		Content:           ComposedContent(np.Selections),
		EntryTime:         time.Now().Format("2006-01-02"),
		Score:             res.Total,
		ResponsiblePerson: scoring.ResponsiblePerson(np.Selections),
		Status:            StatusInProgress,
		ScoringParts:      res.Breakdown,
		TotalWorkDays:     res.TotalWorkDays,
		CreatedBy:         actor.ID,
		CreatorName:       actor.Username,
		RawSelections:     np.Selections,
	}

	// collisions are retried with a freshly recomputed id before giving up
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		p.ID, err = svc.repo.NextProjectID(ctx)
		if err != nil {
			return Project{}, errors.Wrap(err, "allocating project id")
		}
		created, err := svc.repo.CreateProjectWithEntries(ctx, p, materializeCredits(res.Credits, p))
		if errors.Cause(err) == ErrIDTaken {
			continue
		}
		return created, errors.Wrap(err, "creating project")
	}
	return Project{}, errors.Wrapf(ErrIDTaken, "giving up after %d attempts", maxIDRetries)
}

// Query lists projects visible to the actor: admins see all records,
// standard users only the ones they created.
func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Project, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if !actor.IsAdmin() {
		filter.CreatedBy = actor.ID
	}
	return svc.repo.QueryProjects(ctx, filter)
}

func (svc *service) GetByID(ctx context.Context, actor user.User, id string) (Project, error) {
	p, err := svc.repo.GetProjectByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if !actor.IsAdmin() && !p.IsOwnedBy(actor) {
		return Project{}, core.ErrPermissionDenied
	}
	return p, nil
}

// Update fully replaces a project's selections: the score and the personnel
// entry set are re-derived from the current rule table, the previous entry
// set is discarded. Completed projects are immutable.
func (svc *service) Update(ctx context.Context, actor user.User, id string, up UpdateProject) (Project, error) {
	orig, err := svc.GetByID(ctx, actor, id)
	if err != nil {
		return Project{}, err
	}
	if orig.IsCompleted() {
		return Project{}, ErrCompletedImmutable
	}

	table, err := svc.tableSvc.Get(ctx)
	if err != nil {
		return Project{}, errors.Wrap(err, "getting scoring table")
	}

	res := scoring.Compute(up.Selections, table)
	p := orig
	p.Kind = up.Selections.Kind()
	p.Name = up.Name
	p.Content = ComposedContent(up.Selections)
	p.Score = res.Total
	p.ResponsiblePerson = scoring.ResponsiblePerson(up.Selections)
	p.ScoringParts = res.Breakdown
	p.TotalWorkDays = res.TotalWorkDays
	p.RawSelections = up.Selections

	return svc.repo.UpdateProjectWithEntries(ctx, p, materializeCredits(res.Credits, p))
}

func (svc *service) SetStatus(ctx context.Context, actor user.User, id, status string) (Project, error) {
	if _, err := svc.GetByID(ctx, actor, id); err != nil {
		return Project{}, err
	}
	return svc.repo.UpdateProjectStatus(ctx, id, status)
}

// Delete removes projects and cascades to their personnel entries. The
// ownership check covers every id before any mutation is applied: a
// mixed-ownership batch is rejected as a whole.
func (svc *service) Delete(ctx context.Context, actor user.User, ids ...string) error {
	for _, id := range ids {
		p, err := svc.repo.GetProjectByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !p.IsOwnedBy(actor) {
			return core.ErrPermissionDenied
		}
	}
	return svc.repo.DeleteProjectsByID(ctx, ids...)
}

func (svc *service) ResyncScores(ctx context.Context) error {
	table, err := svc.tableSvc.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "getting scoring table")
	}

	projects, err := svc.repo.QueryProjects(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}

	for _, p := range projects {
		res := scoring.Compute(p.RawSelections, table)
		p.Score = res.Total
		p.ScoringParts = res.Breakdown
		p.TotalWorkDays = res.TotalWorkDays
		if _, err = svc.repo.UpdateProjectWithEntries(ctx, p, materializeCredits(res.Credits, p)); err != nil {
			return errors.Wrap(err, fmt.Sprintf("resyncing project %s", p.ID))
		}
	}
	return nil
}

// materializeCredits turns the engine's credits into the project's
// personnel entry set.
func materializeCredits(credits []scoring.Credit, p Project) []personnel.Entry {
	entries := make([]personnel.Entry, 0, len(credits))
	for _, c := range credits {
		entries = append(entries, personnel.Entry{
			ID:        uuid.New().String(),
			Person:    c.Person,
			ProjectID: p.ID,
			EntryTime: p.EntryTime,
			Score:     c.Score,
			Content:   c.Content,
			WorkDays:  c.WorkDays,
			CreatedBy: p.CreatedBy,
		})
	}
	return entries
}
