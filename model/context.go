package model

import "context"

// ValidationContext carries the identifiers and data snapshot passed to every
// validator invocation. It is treated as read-only by validators.
type ValidationContext struct {
	FormID   string
	FieldID  string
	FormData map[string]any
	Metadata map[string]any
}

// ValidatorFunc is the uniform validator contract. Implementations report
// data problems through the returned ValidationResult; a non-nil error is
// reserved for unexpected execution failures and is converted by the engine
// into a validation_error-coded result.
//
// Validators that may run for a while should honour ctx cancellation; the
// async wrapper converts context.Canceled into a cancelled result.
type ValidatorFunc func(ctx context.Context, value any, vctx *ValidationContext) (ValidationResult, error)
