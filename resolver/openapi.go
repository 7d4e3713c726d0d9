package resolver

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/andyoucreate/rilaykit/model"
)

// OpenAPIResolver wraps kin-openapi schemas into the validator contract.
// Validation is pass/fail from the engine's point of view: a schema
// violation becomes a single schema_invalid error carrying the library's
// message.
type OpenAPIResolver struct{}

// Supports implements Resolver.
func (OpenAPIResolver) Supports(schema any) bool {
	switch schema.(type) {
	case *openapi3.Schema, *openapi3.SchemaRef:
		return true
	}
	return false
}

// Resolve implements Resolver.
func (OpenAPIResolver) Resolve(schema any) (model.ValidatorFunc, error) {
	var s *openapi3.Schema
	switch v := schema.(type) {
	case *openapi3.Schema:
		s = v
	case *openapi3.SchemaRef:
		s = v.Value
	default:
		return nil, model.NewConfigurationError(
			fmt.Sprintf("openapi resolver cannot wrap schema of type %T", schema))
	}
	if s == nil {
		return nil, model.NewConfigurationError("openapi schema ref has no value")
	}

	return func(ctx context.Context, value any, _ *model.ValidationContext) (model.ValidationResult, error) {
		if err := ctx.Err(); err != nil {
			return model.ValidationResult{}, err
		}
		if err := s.VisitJSON(value); err != nil {
			return model.InvalidResult(model.ValidationError{
				Code:    model.CodeSchemaInvalid,
				Message: err.Error(),
			}), nil
		}
		return model.ValidResult(), nil
	}, nil
}
