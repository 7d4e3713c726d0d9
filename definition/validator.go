package definition

import (
	"fmt"
	"regexp"

	"github.com/andyoucreate/rilaykit/flow"
	"github.com/andyoucreate/rilaykit/model"
)

// VError describes a single validation error in a definition.
type VError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e VError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validator validates flow definitions structurally and referentially.
// Graph-level findings (unreachable pages, missing defaults) are advisory
// and reported separately by Warnings.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks all definitions and returns every structural error found.
func (v *Validator) Validate(defs []model.FlowDefinition) []VError {
	var errs []VError
	for i, def := range defs {
		prefix := fmt.Sprintf("flows[%d]", i)
		errs = append(errs, v.validateFlow(prefix, def)...)
	}
	return errs
}

// Warnings runs the Navigator's static graph analysis over every definition.
func (v *Validator) Warnings(defs []model.FlowDefinition) []flow.Warning {
	var warnings []flow.Warning
	for _, def := range defs {
		nav := flow.NewNavigatorForDefinition(def)
		warnings = append(warnings, nav.Analyze()...)
	}
	return warnings
}

var validPageTypes = map[model.PageType]bool{
	model.PageTypeSchema:       true,
	model.PageTypeConfigurable: true,
}

func (v *Validator) validateFlow(prefix string, def model.FlowDefinition) []VError {
	var errs []VError

	if def.ID == "" {
		errs = append(errs, VError{Path: prefix + ".id", Code: "REQUIRED", Message: "id is required"})
	}
	if def.StartPage == "" {
		errs = append(errs, VError{Path: prefix + ".start_page", Code: "REQUIRED", Message: "start_page is required"})
	}
	if len(def.Pages) == 0 {
		errs = append(errs, VError{Path: prefix + ".pages", Code: "REQUIRED", Message: "at least one page is required"})
	}

	pageIDs := make(map[string]bool, len(def.Pages))
	for i, p := range def.Pages {
		pp := fmt.Sprintf("%s.pages[%d]", prefix, i)
		if p.ID == "" {
			errs = append(errs, VError{Path: pp + ".id", Code: "REQUIRED", Message: "page id is required"})
		} else if pageIDs[p.ID] {
			errs = append(errs, VError{Path: pp + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate page id %q", p.ID)})
		}
		pageIDs[p.ID] = true
		errs = append(errs, v.validatePage(pp, p)...)
	}

	if def.StartPage != "" && !pageIDs[def.StartPage] {
		errs = append(errs, VError{
			Path:    prefix + ".start_page",
			Code:    "REF_NOT_FOUND",
			Message: fmt.Sprintf("start_page %q not found in pages", def.StartPage),
		})
	}

	for i, r := range def.Rules {
		rp := fmt.Sprintf("%s.rules[%d]", prefix, i)
		if r.From == "" {
			errs = append(errs, VError{Path: rp + ".from", Code: "REQUIRED", Message: "rule from is required"})
		} else if !pageIDs[r.From] {
			errs = append(errs, VError{Path: rp + ".from", Code: "REF_NOT_FOUND", Message: fmt.Sprintf("page %q not found", r.From)})
		}
		if r.To == "" {
			errs = append(errs, VError{Path: rp + ".to", Code: "REQUIRED", Message: "rule to is required"})
		} else if !pageIDs[r.To] {
			errs = append(errs, VError{Path: rp + ".to", Code: "REF_NOT_FOUND", Message: fmt.Sprintf("page %q not found", r.To)})
		}
		// A rule is either conditional or the default fallback; an
		// unconditional non-default rule would never fire.
		if r.Condition == nil && !r.Default {
			errs = append(errs, VError{Path: rp, Code: "DEAD_RULE", Message: "rule needs a condition or default: true"})
		}
		if r.Condition != nil {
			errs = append(errs, v.validateCondition(rp+".when", *r.Condition)...)
		}
	}

	return errs
}

func (v *Validator) validatePage(prefix string, p model.PageDefinition) []VError {
	var errs []VError

	if p.Type == "" {
		errs = append(errs, VError{Path: prefix + ".type", Code: "REQUIRED", Message: "page type is required"})
	} else if !validPageTypes[p.Type] {
		errs = append(errs, VError{Path: prefix + ".type", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid page type %q", p.Type)})
	}

	if p.Type == model.PageTypeSchema && p.SchemaRef == "" {
		errs = append(errs, VError{Path: prefix + ".schema_ref", Code: "REQUIRED", Message: "schema_ref is required for schema pages"})
	}

	fieldIDs := make(map[string]bool, len(p.Fields))
	for i, f := range p.Fields {
		fp := fmt.Sprintf("%s.fields[%d]", prefix, i)
		if f.ID == "" {
			errs = append(errs, VError{Path: fp + ".id", Code: "REQUIRED", Message: "field id is required"})
		} else if fieldIDs[f.ID] {
			errs = append(errs, VError{Path: fp + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate field id %q", f.ID)})
		}
		fieldIDs[f.ID] = true

		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				errs = append(errs, VError{Path: fp + ".pattern", Code: "INVALID_PATTERN", Message: fmt.Sprintf("invalid pattern: %v", err)})
			}
		}
		if f.MinLength < 0 || f.MaxLength < 0 {
			errs = append(errs, VError{Path: fp, Code: "RANGE", Message: "length constraints must be non-negative"})
		}
		if f.MaxLength > 0 && f.MinLength > f.MaxLength {
			errs = append(errs, VError{Path: fp, Code: "RANGE", Message: "min_length exceeds max_length"})
		}
	}

	return errs
}

// validateCondition recursively checks operator membership in the closed
// enum. Typos that would silently evaluate to false at runtime are caught
// here instead.
func (v *Validator) validateCondition(prefix string, c model.Condition) []VError {
	var errs []VError

	if !c.Operator.Valid() {
		errs = append(errs, VError{
			Path:    prefix + ".operator",
			Code:    "INVALID_ENUM",
			Message: fmt.Sprintf("unknown operator %q", string(c.Operator)),
		})
	}
	if c.Field == "" {
		errs = append(errs, VError{Path: prefix + ".field", Code: "REQUIRED", Message: "condition field is required"})
	}
	if c.Logic != "" && c.Logic != model.LogicAnd && c.Logic != model.LogicOr {
		errs = append(errs, VError{
			Path:    prefix + ".logic",
			Code:    "INVALID_ENUM",
			Message: fmt.Sprintf("unknown logic %q", string(c.Logic)),
		})
	}
	for i, nested := range c.Conditions {
		errs = append(errs, v.validateCondition(fmt.Sprintf("%s.conditions[%d]", prefix, i), nested)...)
	}
	return errs
}
