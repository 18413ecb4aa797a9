package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// default person placeholders, used when a name field is left empty
const (
	PersonUnnamed      = "unnamed"
	PersonLead         = "lead"
	PersonSupport      = "support"
	PersonMainCreator  = "main creator"
	PersonCollaborator = "collaborator"
)

type (
	// Part is one scoring contribution of the breakdown. The breakdown is a
	// derived, denormalized cache of the computation: the Table and the raw
	// Selections remain the source of truth for recomputation.
	Part struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// Credit is one row of attributed work derived from a selection; the
	// record store materializes each credit into a personnel entry.
	Credit struct {
		Person   string  `json:"person"`
		Content  string  `json:"content"`
		Score    float64 `json:"score"`
		WorkDays float64 `json:"work_days"`
	}

	Result struct {
		Total         float64  `json:"total"`
		Breakdown     []Part   `json:"breakdown"`
		Description   string   `json:"description"`
		TotalWorkDays float64  `json:"total_work_days"`
		Credits       []Credit `json:"credits"`
	}
)

func (res *Result) addPart(label string, value float64) {
	res.Breakdown = append(res.Breakdown, Part{Label: label, Value: value})
	res.Total += value
}

func (res *Result) addCredit(person, content string, score, workDays float64) {
	res.Credits = append(res.Credits, Credit{
		Person:   person,
		Content:  content,
		Score:    score,
		WorkDays: workDays,
	})
	res.TotalWorkDays += workDays
}

// Compute maps a submission's selections and a rule-table snapshot to a
// total score, its breakdown and the attributed credits. It is pure and
// deterministic: identical inputs always yield identical results. Unknown
// rule-table lookups contribute 0 rather than failing the computation.
func Compute(sel Selections, table Table) Result {
	var res Result
	var desc []string

	if d := sel.Design; d != nil {
		label := DesignLabel(d.Variant)

		switch d.Variant {
		case DesignCMF:
			cmf := d.CMF
			partLabel := "CMF"
			if tier, ok := table.CMFTier(cmf.Value); ok {
				partLabel = tier.Label
			}
			res.addPart(partLabel, cmf.Value)
			res.addCredit(orName(cmf.Person, PersonUnnamed), label, cmf.Value, cmf.WorkDays)
			desc = append(desc, fmt.Sprintf("%s(%s)", partLabel, fmtScore(cmf.Value)))

		case DesignCMFP:
			cmfp := d.CMFP
			mode := table.LookupCMFPMode(cmfp.Mode)
			res.addCredit(orName(cmfp.MainPerson, PersonLead), label, mode.Main, cmfp.MainWorkDays)
			if cmfp.Mode == ModeWithSupport {
				res.addPart("CMFP (main)", mode.Main)
				res.addPart("CMFP (support)", mode.Support)
				res.addCredit(
					orName(cmfp.SupportPerson, PersonSupport),
					label+" (illustration support)",
					mode.Support, cmfp.SupportWorkDays,
				)
			} else {
				res.addPart("CMFP", mode.Main)
			}
			desc = append(desc, fmt.Sprintf("CMFP(%s)", fmtScore(mode.Main+mode.Support)))

		case DesignInnovation4, DesignInnovation5:
			inn := d.Innovation
			baseLabel := "Base score"
			if tier, ok := table.BaseTier(d.Variant, inn.BaseValue); ok {
				baseLabel = tier.Label
			}
			res.addPart(baseLabel, inn.BaseValue)
			mainCreator := orName(inn.MainCreator, PersonMainCreator)
			res.addCredit(mainCreator, label+" (base)", inn.BaseValue, inn.BaseWorkDays)

			variantScore := inn.BaseValue
			for _, a := range inn.Addons {
				addon, ok := table.AddonByID(a.ID)
				if !ok {
					continue // unknown addon contributes nothing
				}
				res.addPart(addon.Label, addon.Score)
				variantScore += addon.Score

				person := mainCreator
				if !inn.Independent {
					person = orName(a.Person, PersonCollaborator)
				}
				res.addCredit(person, label+" ("+addon.Label+")", addon.Score, a.WorkDays)
			}
			desc = append(desc, fmt.Sprintf("Innovation(%s)", fmtScore(variantScore)))
		}
	}

	if p := sel.Package; p != nil {
		score := table.PackageScore(p.Type)
		res.addPart(p.Type, score)
		res.addCredit(orName(p.Person, PersonUnnamed), p.Type, score, p.WorkDays)
		desc = append(desc, fmt.Sprintf("Package(%s)", fmtScore(score)))
	}

	if m := sel.Manual; m != nil {
		score := table.ManualScore(m.Type)
		res.addPart(m.Type, score)
		res.addCredit(orName(m.Person, PersonUnnamed), m.Type, score, m.WorkDays)
		desc = append(desc, fmt.Sprintf("Manual(%s)", fmtScore(score)))
	}

	res.Description = strings.Join(desc, " + ")
	return res
}

// ResponsiblePerson derives a project's display owner from its selections:
// the first named contributor, "multiple" when nobody was named.
func ResponsiblePerson(sel Selections) string {
	var names []string
	if d := sel.Design; d != nil {
		switch d.Variant {
		case DesignCMF:
			names = append(names, d.CMF.Person)
		case DesignCMFP:
			names = append(names, d.CMFP.MainPerson)
		default:
			names = append(names, d.Innovation.MainCreator)
		}
	}
	if sel.Package != nil {
		names = append(names, sel.Package.Person)
	}
	if sel.Manual != nil {
		names = append(names, sel.Manual.Person)
	}
	for _, name := range names {
		if name != "" {
			return name
		}
	}
	return "multiple"
}

func orName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func fmtScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
