package flow

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/andyoucreate/rilaykit/model"
)

// ConfigFromDefinition converts a YAML-loaded flow definition into a runtime
// Config. Schema pages reference named schemas by SchemaRef; the host
// supplies them in schemas (values are whatever the resolver registry
// supports). Field constraints of configurable pages are compiled into
// validator functions.
func ConfigFromDefinition(def model.FlowDefinition, schemas map[string]any) (Config, error) {
	pages := make([]model.Page, 0, len(def.Pages))
	for _, pd := range def.Pages {
		page := model.Page{ID: pd.ID, Title: pd.Title, Type: pd.Type}

		switch pd.Type {
		case model.PageTypeSchema:
			schema, ok := schemas[pd.SchemaRef]
			if !ok {
				return Config{}, model.NewConfigurationError(
					fmt.Sprintf("page %q references unknown schema %q", pd.ID, pd.SchemaRef))
			}
			page.Schema = schema
		case model.PageTypeConfigurable:
			for _, fd := range pd.Fields {
				field, err := fieldFromDefinition(fd)
				if err != nil {
					return Config{}, err
				}
				page.Fields = append(page.Fields, field)
			}
		}
		pages = append(pages, page)
	}

	return Config{
		ID:        def.ID,
		StartPage: def.StartPage,
		Pages:     pages,
		Rules:     def.Rules,
		AllowBack: def.AllowBack,
	}, nil
}

// fieldFromDefinition compiles a field definition's declarative constraints
// into a PageField with a validator closure.
func fieldFromDefinition(fd model.FieldDefinition) (model.PageField, error) {
	field := model.PageField{ID: fd.ID, Label: fd.Label, Required: fd.Required}

	var pattern *regexp.Regexp
	if fd.Pattern != "" {
		compiled, err := regexp.Compile(fd.Pattern)
		if err != nil {
			return model.PageField{}, model.NewConfigurationError(
				fmt.Sprintf("field %q has invalid pattern %q: %v", fd.ID, fd.Pattern, err))
		}
		pattern = compiled
	}

	if pattern == nil && fd.MinLength == 0 && fd.MaxLength == 0 {
		return field, nil
	}

	fieldID := fd.ID
	minLen, maxLen := fd.MinLength, fd.MaxLength
	field.Validator = func(_ context.Context, value any, _ *model.ValidationContext) (model.ValidationResult, error) {
		// Absent values are the required check's concern; constraints
		// only apply to values that were actually supplied.
		if value == nil {
			return model.ValidResult(), nil
		}
		str, _ := value.(string)
		if str == "" {
			str = fmt.Sprint(value)
		}

		if minLen > 0 && utf8.RuneCountInString(str) < minLen {
			return model.InvalidResult(model.ValidationError{
				Code:    model.CodeMinLength,
				Message: fmt.Sprintf("field %q must be at least %d characters", fieldID, minLen),
				Path:    fieldID,
			}), nil
		}
		if maxLen > 0 && utf8.RuneCountInString(str) > maxLen {
			return model.InvalidResult(model.ValidationError{
				Code:    model.CodeMaxLength,
				Message: fmt.Sprintf("field %q must be at most %d characters", fieldID, maxLen),
				Path:    fieldID,
			}), nil
		}
		if pattern != nil && !pattern.MatchString(str) {
			return model.InvalidResult(model.ValidationError{
				Code:    model.CodePattern,
				Message: fmt.Sprintf("field %q does not match the expected format", fieldID),
				Path:    fieldID,
			}), nil
		}
		return model.ValidResult(), nil
	}
	return field, nil
}
