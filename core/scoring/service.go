package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorecard/core"
	"github.com/trezcool/scorecard/core/user"
)

// ErrNotFound is returned when no table has been persisted yet.
var ErrNotFound = errors.New("scoring table not found")

type (
	Repository interface {
		GetTable(ctx context.Context) (Table, error)
		SaveTable(ctx context.Context, t Table) (Table, error)
	}

	Service interface {
		Get(ctx context.Context) (Table, error)
		Update(ctx context.Context, actor user.User, t Table) (Table, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Get returns the current table snapshot, seeding the default table on
// first access.
func (svc *service) Get(ctx context.Context) (Table, error) {
	t, err := svc.repo.GetTable(ctx)
	if err == ErrNotFound {
		return svc.repo.SaveTable(ctx, DefaultTable())
	}
	return t, err
}

// Update replaces the whole table. Only admins may mutate the table; no
// history is kept, overwritten values are unrecoverable. Triggering the
// project resync after an update is the caller's responsibility.
func (svc *service) Update(ctx context.Context, actor user.User, t Table) (Table, error) {
	if !actor.IsAdmin() {
		return Table{}, core.ErrPermissionDenied
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.SaveTable(ctx, t)
}

// Validate checks an incoming table replacement.
func (t *Table) Validate(validate *validator.Validate) error {
	if err := validate.Struct(t); err != nil {
		return err
	}

	seen := make(map[string]bool, len(t.Addons))
	for _, a := range t.Addons {
		if seen[a.ID] {
			return core.NewValidationError(
				errors.New("duplicate addon id"),
				core.FieldError{Field: "addons", Error: "addon ids must be unique: " + a.ID},
			)
		}
		seen[a.ID] = true
	}

	seen = make(map[string]bool, len(t.Packages))
	for _, p := range t.Packages {
		if seen[p.Type] {
			return core.NewValidationError(
				errors.New("duplicate package type"),
				core.FieldError{Field: "package", Error: "package types must be unique: " + p.Type},
			)
		}
		seen[p.Type] = true
	}

	seen = make(map[string]bool, len(t.Manuals))
	for _, m := range t.Manuals {
		if seen[m.Type] {
			return core.NewValidationError(
				errors.New("duplicate manual type"),
				core.FieldError{Field: "manual", Error: "manual types must be unique: " + m.Type},
			)
		}
		seen[m.Type] = true
	}
	return nil
}
