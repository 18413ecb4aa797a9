package scoring

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorecard/core"
)

// Design variants, mutually exclusive.
const (
	DesignCMF         = "cmf"
	DesignCMFP        = "cmfp"
	DesignInnovation4 = "innovation4"
	DesignInnovation5 = "innovation5"
)

var designLabels = map[string]string{
	DesignCMF:         "Series 3 - CMF",
	DesignCMFP:        "Series 3 - CMFP",
	DesignInnovation4: "Series 4 - Innovation",
	DesignInnovation5: "Series 5 - Tooling Innovation",
}

// DesignLabel returns the display label for a design variant.
func DesignLabel(variant string) string {
	if label, ok := designLabels[variant]; ok {
		return label
	}
	return variant
}

type (
	CMFSelection struct {
		Value    float64 `json:"value" validate:"min=0"`
		Person   string  `json:"person"`
		WorkDays float64 `json:"work_days" validate:"min=0"`
	}

	CMFPSelection struct {
		Mode            string  `json:"mode" validate:"required,oneof=with_support without_support"`
		MainPerson      string  `json:"main_person"`
		MainWorkDays    float64 `json:"main_work_days" validate:"min=0"`
		SupportPerson   string  `json:"support_person"`
		SupportWorkDays float64 `json:"support_work_days" validate:"min=0"`
	}

	AddonSelection struct {
		ID       string  `json:"id" validate:"required"`
		Person   string  `json:"person"`
		WorkDays float64 `json:"work_days" validate:"min=0"`
	}

	InnovationSelection struct {
		BaseValue    float64          `json:"base_value" validate:"min=0"`
		MainCreator  string           `json:"main_creator"`
		BaseWorkDays float64          `json:"base_work_days" validate:"min=0"`
		Independent  bool             `json:"independent"`
		Addons       []AddonSelection `json:"addons" validate:"dive"`
	}

	// DesignSelection is a tagged union: exactly the payload field matching
	// Variant must be set. CMF and CMFP use their own payloads; both
	// innovation variants share the Innovation payload.
	DesignSelection struct {
		Variant    string               `json:"variant" validate:"required,oneof=cmf cmfp innovation4 innovation5"`
		CMF        *CMFSelection        `json:"cmf,omitempty"`
		CMFP       *CMFPSelection       `json:"cmfp,omitempty"`
		Innovation *InnovationSelection `json:"innovation,omitempty"`
	}

	PackageSelection struct {
		Type     string  `json:"type" validate:"required"`
		Person   string  `json:"person"`
		WorkDays float64 `json:"work_days" validate:"min=0"`
	}

	ManualSelection struct {
		Type     string  `json:"type" validate:"required"`
		Person   string  `json:"person"`
		WorkDays float64 `json:"work_days" validate:"min=0"`
	}

	// Selections is the full form-state snapshot of a submission; it is
	// persisted raw with the project so scores can be recomputed after a
	// rule-table change.
	Selections struct {
		Design  *DesignSelection  `json:"design,omitempty" validate:"omitempty"`
		Package *PackageSelection `json:"package,omitempty" validate:"omitempty"`
		Manual  *ManualSelection  `json:"manual,omitempty" validate:"omitempty"`
	}
)

// IsEmpty reports whether no category at all was selected.
func (s Selections) IsEmpty() bool {
	return s.Design == nil && s.Package == nil && s.Manual == nil
}

// Categories returns the display labels of the selected categories, in
// Design, Package, Manual order.
func (s Selections) Categories() []string {
	var cats []string
	if s.Design != nil {
		cats = append(cats, DesignLabel(s.Design.Variant))
	}
	if s.Package != nil {
		cats = append(cats, s.Package.Type)
	}
	if s.Manual != nil {
		cats = append(cats, s.Manual.Type)
	}
	return cats
}

// Kind returns the project type label: the design variant's label when a
// design category is selected, "Combined" otherwise.
func (s Selections) Kind() string {
	if s.Design != nil {
		return DesignLabel(s.Design.Variant)
	}
	return "Combined"
}

var (
	designPayloadTag  = "designpayload"
	designPayloadText = "selection payload does not match the design variant"
)

// RegisterValidators registers the scoring domain's custom validators.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(designSelectionStructValidation, DesignSelection{})
	core.RegisterCustomTranslation(validate, translator, designPayloadTag, designPayloadText)
}

// designSelectionStructValidation checks that exactly the payload matching
// the selected variant is set.
func designSelectionStructValidation(sl validator.StructLevel) {
	d := sl.Current().Interface().(DesignSelection)

	var ok bool
	switch d.Variant {
	case DesignCMF:
		ok = d.CMF != nil && d.CMFP == nil && d.Innovation == nil
	case DesignCMFP:
		ok = d.CMFP != nil && d.CMF == nil && d.Innovation == nil
	case DesignInnovation4, DesignInnovation5:
		ok = d.Innovation != nil && d.CMF == nil && d.CMFP == nil
	}
	if !ok {
		sl.ReportError(d.Variant, "variant", "Variant", designPayloadTag, "")
	}
}
