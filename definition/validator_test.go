package definition

import (
	"testing"

	"github.com/andyoucreate/rilaykit/flow"
	"github.com/andyoucreate/rilaykit/model"
)

func validDef() model.FlowDefinition {
	return model.FlowDefinition{
		ID:        "checkout",
		StartPage: "cart",
		Pages: []model.PageDefinition{
			{ID: "cart", Type: model.PageTypeConfigurable},
			{ID: "payment", Type: model.PageTypeSchema, SchemaRef: "payment-schema"},
		},
		Rules: []model.NavigationRule{
			{From: "cart", To: "payment", Default: true},
		},
	}
}

func codesOf(errs []VError) map[string]int {
	codes := make(map[string]int)
	for _, e := range errs {
		codes[e.Code]++
	}
	return codes
}

func TestValidator_ValidDefinition(t *testing.T) {
	errs := NewValidator().Validate([]model.FlowDefinition{validDef()})
	if len(errs) != 0 {
		t.Errorf("valid definition produced errors: %+v", errs)
	}
}

func TestValidator_MissingRequiredFields(t *testing.T) {
	errs := NewValidator().Validate([]model.FlowDefinition{{}})
	codes := codesOf(errs)
	if codes["REQUIRED"] < 3 {
		t.Errorf("empty definition errors = %+v", errs)
	}
}

func TestValidator_StartPageRef(t *testing.T) {
	def := validDef()
	def.StartPage = "ghost"

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["REF_NOT_FOUND"] != 1 {
		t.Errorf("codes = %v, want one REF_NOT_FOUND", codes)
	}
}

func TestValidator_DuplicatePageIDs(t *testing.T) {
	def := validDef()
	def.Pages = append(def.Pages, model.PageDefinition{ID: "cart", Type: model.PageTypeConfigurable})

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["DUPLICATE"] != 1 {
		t.Errorf("codes = %v, want one DUPLICATE", codes)
	}
}

func TestValidator_RuleEndpoints(t *testing.T) {
	def := validDef()
	def.Rules = append(def.Rules,
		model.NavigationRule{From: "ghost", To: "cart", Default: true},
		model.NavigationRule{From: "cart", To: "nowhere", Default: true},
	)

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["REF_NOT_FOUND"] != 2 {
		t.Errorf("codes = %v, want two REF_NOT_FOUND", codes)
	}
}

func TestValidator_DeadRule(t *testing.T) {
	def := validDef()
	def.Rules = append(def.Rules, model.NavigationRule{From: "cart", To: "payment"})

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["DEAD_RULE"] != 1 {
		t.Errorf("codes = %v, want one DEAD_RULE", codes)
	}
}

func TestValidator_UnknownOperator(t *testing.T) {
	def := validDef()
	def.Rules[0] = model.NavigationRule{
		From: "cart", To: "payment",
		Condition: &model.Condition{Field: "total", Operator: "equalz", Value: 0},
	}

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["INVALID_ENUM"] != 1 {
		t.Errorf("codes = %v, want one INVALID_ENUM", codes)
	}
}

func TestValidator_NestedConditionOperators(t *testing.T) {
	def := validDef()
	def.Rules[0] = model.NavigationRule{
		From: "cart", To: "payment",
		Condition: &model.Condition{
			Field: "total", Operator: model.OpGreaterThan, Value: 0,
			Logic: "and",
			Conditions: []model.Condition{
				{Field: "currency", Operator: "iz", Value: "EUR"},
			},
		},
	}

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["INVALID_ENUM"] != 1 {
		t.Errorf("codes = %v, want one INVALID_ENUM from the nested condition", codes)
	}
}

func TestValidator_SchemaPageNeedsRef(t *testing.T) {
	def := validDef()
	def.Pages[1].SchemaRef = ""

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["REQUIRED"] != 1 {
		t.Errorf("codes = %v, want one REQUIRED", codes)
	}
}

func TestValidator_FieldConstraints(t *testing.T) {
	def := validDef()
	def.Pages[0].Fields = []model.FieldDefinition{
		{ID: "a", Pattern: "("},
		{ID: "b", MinLength: 10, MaxLength: 5},
		{ID: "a"},
	}

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["INVALID_PATTERN"] != 1 || codes["RANGE"] != 1 || codes["DUPLICATE"] != 1 {
		t.Errorf("codes = %v", codes)
	}
}

func TestValidator_InvalidPageType(t *testing.T) {
	def := validDef()
	def.Pages[0].Type = "widget"

	codes := codesOf(NewValidator().Validate([]model.FlowDefinition{def}))
	if codes["INVALID_ENUM"] != 1 {
		t.Errorf("codes = %v, want one INVALID_ENUM", codes)
	}
}

func TestValidator_Warnings(t *testing.T) {
	def := validDef()
	def.Pages = append(def.Pages, model.PageDefinition{ID: "orphan", Type: model.PageTypeConfigurable})

	warnings := NewValidator().Warnings([]model.FlowDefinition{def})
	found := false
	for _, w := range warnings {
		if w.Code == flow.WarnUnreachablePage && w.PageID == "orphan" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %+v, want UNREACHABLE_PAGE for orphan", warnings)
	}
}
