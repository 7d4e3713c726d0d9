// Package resolver maps arbitrary schema-like objects to the uniform
// validator function contract, so schema libraries can be plugged in without
// the engines depending on any one of them directly.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/andyoucreate/rilaykit/model"
)

// Resolver wraps one family of schema objects.
type Resolver interface {
	// Supports reports whether this resolver understands the schema.
	Supports(schema any) bool
	// Resolve wraps the schema into a validator function.
	Resolve(schema any) (model.ValidatorFunc, error)
}

// Registry holds resolvers in registration order; the first one whose
// Supports returns true wins.
type Registry struct {
	mu        sync.RWMutex
	resolvers []Resolver
}

// NewRegistry creates a registry pre-loaded with the built-in resolvers:
// plain validator functions and kin-openapi schemas.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(FuncResolver{})
	r.Register(OpenAPIResolver{})
	return r
}

// NewEmptyRegistry creates a registry with no resolvers.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Register appends a resolver. Later registrations act as fallbacks for
// earlier ones.
func (r *Registry) Register(res Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers = append(r.resolvers, res)
}

// Supports reports whether any registered resolver understands the schema.
func (r *Registry) Supports(schema any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.resolvers {
		if res.Supports(schema) {
			return true
		}
	}
	return false
}

// Resolve wraps schema via the first supporting resolver. An unknown schema
// with no fallback is a configuration error.
func (r *Registry) Resolve(schema any) (model.ValidatorFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.resolvers {
		if res.Supports(schema) {
			return res.Resolve(schema)
		}
	}
	return nil, model.NewConfigurationError(
		fmt.Sprintf("no resolver supports schema of type %T", schema))
}

// FuncResolver accepts schemas that already are validator functions, either
// the full contract or a plain func(any) error.
type FuncResolver struct{}

// Supports implements Resolver.
func (FuncResolver) Supports(schema any) bool {
	switch schema.(type) {
	case model.ValidatorFunc, func(ctx context.Context, value any, vctx *model.ValidationContext) (model.ValidationResult, error), func(any) error:
		return true
	}
	return false
}

// Resolve implements Resolver.
func (FuncResolver) Resolve(schema any) (model.ValidatorFunc, error) {
	switch fn := schema.(type) {
	case model.ValidatorFunc:
		return fn, nil
	case func(ctx context.Context, value any, vctx *model.ValidationContext) (model.ValidationResult, error):
		return model.ValidatorFunc(fn), nil
	case func(any) error:
		return func(_ context.Context, value any, _ *model.ValidationContext) (model.ValidationResult, error) {
			if err := fn(value); err != nil {
				return model.InvalidResult(model.ValidationError{
					Code:    model.CodeSchemaInvalid,
					Message: err.Error(),
				}), nil
			}
			return model.ValidResult(), nil
		}, nil
	}
	return nil, model.NewConfigurationError(
		fmt.Sprintf("func resolver cannot wrap schema of type %T", schema))
}
