package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCMF(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name      string
		sel       CMFSelection
		wantTotal float64
		wantLabel string
	}{
		{
			name:      "known tier uses its label",
			sel:       CMFSelection{Value: 0.5, Person: "Alice", WorkDays: 2},
			wantTotal: 0.5,
			wantLabel: "With category visual guidance",
		},
		{
			name:      "unknown value still scores, label falls back",
			sel:       CMFSelection{Value: 0.7, Person: "Alice", WorkDays: 2},
			wantTotal: 0.7,
			wantLabel: "CMF",
		},
		{
			name:      "empty person gets placeholder",
			sel:       CMFSelection{Value: 1.0},
			wantTotal: 1.0,
			wantLabel: "Without category visual guidance",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := tt.sel
			res := Compute(Selections{Design: &DesignSelection{Variant: DesignCMF, CMF: &sel}}, table)

			assert.Equal(t, tt.wantTotal, res.Total)
			if assert.Len(t, res.Breakdown, 1) {
				assert.Equal(t, tt.wantLabel, res.Breakdown[0].Label)
				assert.Equal(t, tt.wantTotal, res.Breakdown[0].Value)
			}
			if assert.Len(t, res.Credits, 1) {
				c := res.Credits[0]
				if sel.Person == "" {
					assert.Equal(t, PersonUnnamed, c.Person)
				} else {
					assert.Equal(t, sel.Person, c.Person)
				}
				assert.Equal(t, "Series 3 - CMF", c.Content)
				assert.Equal(t, tt.wantTotal, c.Score)
				assert.Equal(t, sel.WorkDays, c.WorkDays)
			}
			assert.Equal(t, sel.WorkDays, res.TotalWorkDays)
		})
	}
}

func TestComputeCMFP(t *testing.T) {
	table := DefaultTable()

	t.Run("with support splits main and support", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant: DesignCMFP,
			CMFP: &CMFPSelection{
				Mode:            ModeWithSupport,
				MainPerson:      "Bob",
				MainWorkDays:    3,
				SupportPerson:   "Carol",
				SupportWorkDays: 1,
			},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 1.5, res.Total)
		assert.Equal(t, []Part{
			{Label: "CMFP (main)", Value: 1.0},
			{Label: "CMFP (support)", Value: 0.5},
		}, res.Breakdown)
		assert.Equal(t, []Credit{
			{Person: "Bob", Content: "Series 3 - CMFP", Score: 1.0, WorkDays: 3},
			{Person: "Carol", Content: "Series 3 - CMFP (illustration support)", Score: 0.5, WorkDays: 1},
		}, res.Credits)
		assert.Equal(t, 4.0, res.TotalWorkDays)
		assert.Equal(t, "CMFP(1.5)", res.Description)
	})

	t.Run("without support yields a single part and credit", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant: DesignCMFP,
			CMFP:    &CMFPSelection{Mode: ModeWithoutSupport, MainPerson: "Bob", MainWorkDays: 3},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 1.5, res.Total)
		assert.Equal(t, []Part{{Label: "CMFP", Value: 1.5}}, res.Breakdown)
		if assert.Len(t, res.Credits, 1) {
			assert.Equal(t, "Bob", res.Credits[0].Person)
			assert.Equal(t, 1.5, res.Credits[0].Score)
		}
	})

	t.Run("configured table values override the defaults", func(t *testing.T) {
		tbl := DefaultTable()
		tbl.CMFPModes = []CMFPMode{{Mode: ModeWithSupport, Main: 2.0, Support: 1.0}}

		sel := Selections{Design: &DesignSelection{
			Variant: DesignCMFP,
			CMFP:    &CMFPSelection{Mode: ModeWithSupport},
		}}
		res := Compute(sel, tbl)

		assert.Equal(t, 3.0, res.Total)
		if assert.Len(t, res.Credits, 2) {
			assert.Equal(t, PersonLead, res.Credits[0].Person)
			assert.Equal(t, PersonSupport, res.Credits[1].Person)
		}
	})

	t.Run("unconfigured mode falls back to historical values", func(t *testing.T) {
		tbl := DefaultTable()
		tbl.CMFPModes = nil

		sel := Selections{Design: &DesignSelection{
			Variant: DesignCMFP,
			CMFP:    &CMFPSelection{Mode: ModeWithoutSupport},
		}}
		res := Compute(sel, tbl)
		assert.Equal(t, 1.5, res.Total)
	})
}

func TestComputeInnovation(t *testing.T) {
	table := DefaultTable()

	t.Run("collaborative addons credit their own person", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant: DesignInnovation4,
			Innovation: &InnovationSelection{
				BaseValue:    1.0,
				MainCreator:  "Alice",
				BaseWorkDays: 5,
				Addons: []AddonSelection{
					{ID: "light_illu", Person: "Bob", WorkDays: 1},
					{ID: "medium_struct", WorkDays: 2},
				},
			},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 2.5, res.Total)
		assert.Equal(t, []Credit{
			{Person: "Alice", Content: "Series 4 - Innovation (base)", Score: 1.0, WorkDays: 5},
			{Person: "Bob", Content: "Series 4 - Innovation (Lightweight illustration)", Score: 0.5, WorkDays: 1},
			{Person: PersonCollaborator, Content: "Series 4 - Innovation (Medium structure)", Score: 1.0, WorkDays: 2},
		}, res.Credits)
		assert.Equal(t, 8.0, res.TotalWorkDays)
	})

	t.Run("independent work credits everything to the main creator", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant: DesignInnovation4,
			Innovation: &InnovationSelection{
				BaseValue:   1.5,
				MainCreator: "Alice",
				Independent: true,
				Addons: []AddonSelection{
					{ID: "high_illu", Person: "Bob"}, // person ignored when independent
				},
			},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 3.5, res.Total)
		for _, c := range res.Credits {
			assert.Equal(t, "Alice", c.Person)
		}
	})

	t.Run("unknown addon is skipped entirely", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant: DesignInnovation4,
			Innovation: &InnovationSelection{
				BaseValue: 1.0,
				Addons:    []AddonSelection{{ID: "nope", WorkDays: 4}},
			},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 1.0, res.Total)
		assert.Len(t, res.Breakdown, 1)
		assert.Len(t, res.Credits, 1)
		assert.Equal(t, 0.0, res.TotalWorkDays)
	})

	t.Run("tooling innovation reads the series 5 base tiers", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant:    DesignInnovation5,
			Innovation: &InnovationSelection{BaseValue: 2.0, MainCreator: "Alice"},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 2.0, res.Total)
		if assert.Len(t, res.Breakdown, 1) {
			assert.Equal(t, "+2.0", res.Breakdown[0].Label)
		}
	})

	t.Run("unknown base value keeps the fallback label", func(t *testing.T) {
		sel := Selections{Design: &DesignSelection{
			Variant:    DesignInnovation4,
			Innovation: &InnovationSelection{BaseValue: 0.3},
		}}
		res := Compute(sel, table)

		assert.Equal(t, 0.3, res.Total)
		assert.Equal(t, "Base score", res.Breakdown[0].Label)
		assert.Equal(t, PersonMainCreator, res.Credits[0].Person)
	})
}

func TestComputeCombined(t *testing.T) {
	table := DefaultTable()

	sel := Selections{
		Design: &DesignSelection{
			Variant: DesignCMF,
			CMF:     &CMFSelection{Value: 1.0, Person: "Alice", WorkDays: 2},
		},
		Package: &PackageSelection{Type: "Innovative packaging", Person: "Bob", WorkDays: 3},
		Manual:  &ManualSelection{Type: "Original manual content", WorkDays: 1},
	}
	res := Compute(sel, table)

	assert.Equal(t, 4.0, res.Total)
	assert.Len(t, res.Breakdown, 3)
	assert.Len(t, res.Credits, 3)
	assert.Equal(t, 6.0, res.TotalWorkDays)
	assert.Equal(t, "Without category visual guidance(1) + Package(2) + Manual(1)", res.Description)

	t.Run("unmatched package and manual score zero", func(t *testing.T) {
		res := Compute(Selections{
			Package: &PackageSelection{Type: "Nope"},
			Manual:  &ManualSelection{Type: "Nope either"},
		}, table)
		assert.Equal(t, 0.0, res.Total)
		assert.Len(t, res.Breakdown, 2)
	})

	t.Run("empty selections yield an empty result", func(t *testing.T) {
		res := Compute(Selections{}, table)
		assert.Equal(t, 0.0, res.Total)
		assert.Empty(t, res.Breakdown)
		assert.Empty(t, res.Credits)
		assert.Empty(t, res.Description)
	})

	t.Run("computation is deterministic", func(t *testing.T) {
		assert.Equal(t, Compute(sel, table), Compute(sel, table))
	})
}

func TestResponsiblePerson(t *testing.T) {
	tests := []struct {
		name string
		sel  Selections
		want string
	}{
		{
			name: "design person wins",
			sel: Selections{
				Design:  &DesignSelection{Variant: DesignCMF, CMF: &CMFSelection{Person: "Alice"}},
				Package: &PackageSelection{Person: "Bob"},
			},
			want: "Alice",
		},
		{
			name: "falls through to the first named contributor",
			sel: Selections{
				Design: &DesignSelection{Variant: DesignCMFP, CMFP: &CMFPSelection{Mode: ModeWithSupport}},
				Manual: &ManualSelection{Person: "Carol"},
			},
			want: "Carol",
		},
		{
			name: "nobody named",
			sel:  Selections{Package: &PackageSelection{}},
			want: "multiple",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResponsiblePerson(tt.sel))
		})
	}
}
