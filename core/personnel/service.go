package personnel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/scorecard/core"
	"github.com/trezcool/scorecard/core/user"
)

// ErrNotFound is returned when a referenced entry does not exist.
var ErrNotFound = errors.New("personnel entry not found")

type (
	Repository interface {
		CreateEntries(ctx context.Context, entries ...Entry) error
		QueryEntries(ctx context.Context, filter *QueryFilter) ([]Entry, error)
		GetEntryByID(ctx context.Context, id string) (Entry, error)
		DeleteEntriesByID(ctx context.Context, ids ...string) error
		DeleteEntriesByProjectID(ctx context.Context, projectIDs ...string) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, ne NewEntry) (Entry, error)
		BatchCreate(ctx context.Context, actor user.User, nes []NewEntry) ([]Entry, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Entry, error)
		QueryByProject(ctx context.Context, actor user.User, projectID string) ([]Entry, error)
		GetByID(ctx context.Context, actor user.User, id string) (Entry, error)
		Delete(ctx context.Context, actor user.User, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Materialize turns a NewEntry into a persistable Entry owned by the actor.
func Materialize(ne NewEntry, actor user.User) Entry {
	return Entry{
		ID:        uuid.New().String(),
		Person:    ne.Person,
		ProjectID: ne.ProjectID,
		EntryTime: time.Now().Format("2006-01-02"),
		Score:     ne.Score,
		Content:   ne.Content,
		WorkDays:  ne.WorkDays,
		CreatedBy: actor.ID,
	}
}

func (svc *service) Create(ctx context.Context, actor user.User, ne NewEntry) (Entry, error) {
	entry := Materialize(ne, actor)
	if err := svc.repo.CreateEntries(ctx, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (svc *service) BatchCreate(ctx context.Context, actor user.User, nes []NewEntry) ([]Entry, error) {
	entries := make([]Entry, 0, len(nes))
	for _, ne := range nes {
		entries = append(entries, Materialize(ne, actor))
	}
	if err := svc.repo.CreateEntries(ctx, entries...); err != nil {
		return nil, err
	}
	return entries, nil
}

// Query lists entries visible to the actor: admins see all records,
// standard users only the ones they created.
func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Entry, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if !actor.IsAdmin() {
		filter.CreatedBy = actor.ID
	}
	return svc.repo.QueryEntries(ctx, filter)
}

func (svc *service) QueryByProject(ctx context.Context, actor user.User, projectID string) ([]Entry, error) {
	return svc.Query(ctx, actor, &QueryFilter{ProjectID: projectID})
}

func (svc *service) GetByID(ctx context.Context, actor user.User, id string) (Entry, error) {
	entry, err := svc.repo.GetEntryByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if !actor.IsAdmin() && entry.CreatedBy != actor.ID {
		return Entry{}, core.ErrPermissionDenied
	}
	return entry, nil
}

// Delete removes entries by id. The ownership check covers every id before
// any mutation is applied: a mixed-ownership batch is rejected as a whole.
func (svc *service) Delete(ctx context.Context, actor user.User, ids ...string) error {
	for _, id := range ids {
		entry, err := svc.repo.GetEntryByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && entry.CreatedBy != actor.ID {
			return core.ErrPermissionDenied
		}
	}
	return svc.repo.DeleteEntriesByID(ctx, ids...)
}
