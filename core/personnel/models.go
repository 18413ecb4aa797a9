package personnel

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorecard/core"
)

// Entry is one row of attributed credit (person, points, work-days) derived
// from a project's scoring breakdown. Entries are owned by the creator of
// the parent project.
type Entry struct {
	ID        string  `json:"id"`
	Person    string  `json:"person"`
	ProjectID string  `json:"project_id"`
	EntryTime string  `json:"entry_time"` // calendar day, YYYY-MM-DD
	Score     float64 `json:"score"`
	Content   string  `json:"content"`
	WorkDays  float64 `json:"work_days"`
	CreatedBy string  `json:"created_by"`
}

// NewEntry contains information needed to record a standalone credit row.
type NewEntry struct {
	Person    string  `json:"person" validate:"required"`
	ProjectID string  `json:"project_id" validate:"required"`
	Score     float64 `json:"score" validate:"min=0"`
	Content   string  `json:"content" validate:"required"`
	WorkDays  float64 `json:"work_days" validate:"min=0"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Person = core.CleanString(ne.Person)
	ne.Content = core.CleanString(ne.Content)
	return validate.Struct(ne)
}

// QueryFilter applies an AND operation on its set fields.
type QueryFilter struct {
	ProjectID string `json:"project_id" query:"project_id"`
	Person    string `json:"person" query:"person"`
	CreatedBy string `json:"-"`
}
