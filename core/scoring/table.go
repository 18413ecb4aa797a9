package scoring

import (
	"time"
)

// CMFP modes
const (
	ModeWithSupport    = "with_support"
	ModeWithoutSupport = "without_support"
)

// historical CMFP defaults, used when the table has no matching mode
var defaultCMFPModes = map[string]CMFPMode{
	ModeWithSupport:    {Mode: ModeWithSupport, Main: 1.0, Support: 0.5},
	ModeWithoutSupport: {Mode: ModeWithoutSupport, Main: 1.5, Support: 0},
}

type (
	// Tier is one selectable point value with its display label.
	Tier struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// CMFPMode holds the main/support point split for one CMFP mode.
	// Support is 0 when the mode has no support role.
	CMFPMode struct {
		Mode    string  `json:"mode" validate:"required,oneof=with_support without_support"`
		Main    float64 `json:"main" validate:"min=0"`
		Support float64 `json:"support" validate:"min=0"`
	}

	// Addon is an optional stackable bonus, applicable to innovation projects only.
	Addon struct {
		ID    string  `json:"id" validate:"required"`
		Label string  `json:"label" validate:"required"`
		Score float64 `json:"score" validate:"min=0"`
	}

	PackageType struct {
		Type  string  `json:"type" validate:"required"`
		Score float64 `json:"score" validate:"min=0"`
	}

	ManualType struct {
		Type  string  `json:"type" validate:"required"`
		Score float64 `json:"score" validate:"min=0"`
	}

	// Table holds all scoring parameters. It is a single shared record,
	// replaced as a whole on update; every score ever computed resolves
	// against some entry of this table at computation time, and unknown
	// keys resolve to 0 points rather than an error.
	Table struct {
		CMFTiers  []Tier        `json:"cmf" validate:"dive"`
		CMFPModes []CMFPMode    `json:"cmfp" validate:"dive"`
		Base4     []Tier        `json:"base4" validate:"dive"`
		Base5     []Tier        `json:"base5" validate:"dive"`
		Addons    []Addon       `json:"addons" validate:"dive"`
		Packages  []PackageType `json:"package" validate:"dive"`
		Manuals   []ManualType  `json:"manual" validate:"dive"`
		UpdatedAt time.Time     `json:"updated_at"`
	}
)

// DefaultTable returns the scoring parameters the app ships with;
// it seeds the store on first access.
func DefaultTable() Table {
	return Table{
		CMFTiers: []Tier{
			{Label: "With category visual guidance", Value: 0.5},
			{Label: "Without category visual guidance", Value: 1.0},
		},
		CMFPModes: []CMFPMode{
			{Mode: ModeWithSupport, Main: 1.0, Support: 0.5},
			{Mode: ModeWithoutSupport, Main: 1.5, Support: 0},
		},
		Base4: []Tier{
			{Label: "+1.0", Value: 1.0},
			{Label: "+1.5", Value: 1.5},
		},
		Base5: []Tier{
			{Label: "+1.5", Value: 1.5},
			{Label: "+2.0", Value: 2.0},
		},
		Addons: []Addon{
			{ID: "light_illu", Label: "Lightweight illustration", Score: 0.5},
			{ID: "medium_illu", Label: "Medium illustration", Score: 1.0},
			{ID: "high_illu", Label: "Advanced illustration", Score: 2.0},
			{ID: "light_struct", Label: "Lightweight structure", Score: 0.5},
			{ID: "medium_struct", Label: "Medium structure", Score: 1.0},
		},
		Packages: []PackageType{
			{Type: "Basic packaging", Score: 0.5},
			{Type: "Micro-innovation packaging", Score: 1.0},
			{Type: "Innovative packaging", Score: 2.0},
		},
		Manuals: []ManualType{
			{Type: "Lightweight manual content", Score: 0.2},
			{Type: "Medium manual content", Score: 0.4},
			{Type: "Original manual content", Score: 1.0},
		},
	}
}

// CMFTier looks a tier up by its point value (not by index).
func (t Table) CMFTier(value float64) (Tier, bool) {
	for _, tier := range t.CMFTiers {
		if tier.Value == value {
			return tier, true
		}
	}
	return Tier{}, false
}

// LookupCMFPMode returns the configured main/support split for a mode,
// falling back to the historical defaults when the mode is not configured.
// A mode without support never yields support points.
func (t Table) LookupCMFPMode(mode string) CMFPMode {
	for _, m := range t.CMFPModes {
		if m.Mode == mode {
			if m.Mode == ModeWithoutSupport {
				m.Support = 0
			}
			return m
		}
	}
	if m, ok := defaultCMFPModes[mode]; ok {
		return m
	}
	return defaultCMFPModes[ModeWithSupport]
}

// BaseTier looks an innovation base tier up by its point value.
func (t Table) BaseTier(variant string, value float64) (Tier, bool) {
	tiers := t.Base4
	if variant == DesignInnovation5 {
		tiers = t.Base5
	}
	for _, tier := range tiers {
		if tier.Value == value {
			return tier, true
		}
	}
	return Tier{}, false
}

func (t Table) AddonByID(id string) (Addon, bool) {
	for _, a := range t.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

// PackageScore returns the configured score for a package type, 0 if unmatched.
func (t Table) PackageScore(typ string) float64 {
	for _, p := range t.Packages {
		if p.Type == typ {
			return p.Score
		}
	}
	return 0
}

// ManualScore returns the configured score for a manual type, 0 if unmatched.
func (t Table) ManualScore(typ string) float64 {
	for _, m := range t.Manuals {
		if m.Type == typ {
			return m.Score
		}
	}
	return 0
}
