package model

// Error codes used in ValidationError entries.
const (
	CodeRequired        = "required"
	CodePattern         = "pattern"
	CodeMinLength       = "min_length"
	CodeMaxLength       = "max_length"
	CodeSchemaInvalid   = "schema_invalid"
	CodeValidationError = "validation_error"
)

// ValidationError describes a single field- or form-level failure.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// ValidationResult is the outcome of a validation run. It is an immutable
// value: results are never mutated after creation, only combined by
// concatenation via CombineResults.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Errors    []ValidationError `json:"errors"`
	Warnings  []ValidationError `json:"warnings,omitempty"`
	Cancelled bool              `json:"cancelled,omitempty"`
}

// ValidResult returns a passing result with no errors.
func ValidResult() ValidationResult {
	return ValidationResult{Valid: true, Errors: []ValidationError{}}
}

// InvalidResult returns a failing result carrying the given errors.
func InvalidResult(errs ...ValidationError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// CancelledResult returns the non-blocking result delivered to callers whose
// pending validation was superseded. Cancellation means "no opinion yet",
// not failure, so the result is valid.
func CancelledResult() ValidationResult {
	return ValidationResult{Valid: true, Errors: []ValidationError{}, Cancelled: true}
}

// ExecutionErrorResult converts an unexpected validator failure into a
// failing result rather than propagating it. Form-level validation always
// completes; it never surfaces a Go error for data problems.
func ExecutionErrorResult(msg string) ValidationResult {
	return InvalidResult(ValidationError{Code: CodeValidationError, Message: msg})
}

// CombineResults concatenates the errors and warnings of all sub-results.
// The combined result is valid iff no errors were accumulated.
func CombineResults(results ...ValidationResult) ValidationResult {
	combined := ValidationResult{Errors: []ValidationError{}}
	for _, r := range results {
		combined.Errors = append(combined.Errors, r.Errors...)
		combined.Warnings = append(combined.Warnings, r.Warnings...)
	}
	combined.Valid = len(combined.Errors) == 0
	return combined
}
