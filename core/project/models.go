package project

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorecard/core"
	"github.com/trezcool/scorecard/core/scoring"
	"github.com/trezcool/scorecard/core/user"
)

// Statuses. The toggle is freely reversible: completion gates edits,
// not deletion or a toggle back to in-progress.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var Statuses = []string{StatusInProgress, StatusCompleted}

var errNoCategorySelected = errors.New("at least one project category must be selected")

// Project is the authoritative record of one scored submission. Score,
// ScoringParts and TotalWorkDays are denormalized caches of the engine's
// output; RawSelections is kept so they can be recomputed against a new
// rule table.
type Project struct {
	ID                string             `json:"id"` // P#### (zero-padded, monotonically allocated)
	Kind              string             `json:"kind"`
	Name              string             `json:"name"`
	Content           string             `json:"content"`
	EntryTime         string             `json:"entry_time"` // calendar day, YYYY-MM-DD
	Score             float64            `json:"score"`
	ResponsiblePerson string             `json:"responsible_person"`
	Status            string             `json:"status"`
	ScoringParts      []scoring.Part     `json:"scoring_parts"`
	TotalWorkDays     float64            `json:"total_work_days"`
	CreatedBy         string             `json:"created_by"`
	CreatorName       string             `json:"creator_name"`
	RawSelections     scoring.Selections `json:"raw_selections"`
}

func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted
}

func (p *Project) IsOwnedBy(usr user.User) bool {
	return p.CreatedBy == usr.ID
}

// NewProject contains information needed to submit a new Project.
type NewProject struct {
	Name       string             `json:"name" validate:"required"`
	Selections scoring.Selections `json:"selections"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	if np.Selections.IsEmpty() {
		return core.NewValidationError(
			errNoCategorySelected,
			core.FieldError{Field: "selections", Error: errNoCategorySelected.Error()},
		)
	}
	return validate.Struct(np)
}

// UpdateProject defines a full replacement of a Project's selections;
// the score and the personnel entry set are re-derived from it.
type UpdateProject struct {
	Name       string             `json:"name" validate:"required"`
	Selections scoring.Selections `json:"selections"`
}

func (up *UpdateProject) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	if up.Selections.IsEmpty() {
		return core.NewValidationError(
			errNoCategorySelected,
			core.FieldError{Field: "selections", Error: errNoCategorySelected.Error()},
		)
	}
	return validate.Struct(up)
}

// UpdateProjectStatus carries a status transition request.
type UpdateProjectStatus struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed"`
}

func (us *UpdateProjectStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

// QueryFilter applies an AND operation on its set fields.
// Search does a case-insensitive match on one of Project.Name,
// Project.Content or Project.ResponsiblePerson.
type QueryFilter struct {
	Search    string `json:"search" query:"search"`
	Status    string `json:"status" query:"status"`
	CreatedBy string `json:"-"`
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Status = core.CleanString(f.Status, true)
}

// ComposedContent joins the selected category labels for display.
func ComposedContent(sel scoring.Selections) string {
	return strings.Join(sel.Categories(), " + ")
}
