package model

import (
	"context"
	"testing"
)

func nopValidator(context.Context, any, *ValidationContext) (ValidationResult, error) {
	return ValidResult(), nil
}

func TestLayerBuilder_Build(t *testing.T) {
	layer, err := NewLayer("cross-field").
		Level(LevelGroup).
		Priority(5).
		Validator(nopValidator).
		DependsOn("password", "confirm").
		StopOnError().
		Meta("source", "test").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if layer.ID != "cross-field" {
		t.Errorf("ID = %q", layer.ID)
	}
	if layer.Level != LevelGroup || layer.Priority != 5 {
		t.Errorf("Level/Priority = %v/%d", layer.Level, layer.Priority)
	}
	if len(layer.Dependencies) != 2 {
		t.Errorf("Dependencies = %v", layer.Dependencies)
	}
	if !layer.StopOnError {
		t.Error("StopOnError not set")
	}
	if layer.Metadata["source"] != "test" {
		t.Errorf("Metadata = %v", layer.Metadata)
	}
}

func TestLayerBuilder_Defaults(t *testing.T) {
	layer, err := NewLayer("basic").Validator(nopValidator).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if layer.Level != LevelField {
		t.Errorf("default Level = %v, want LevelField", layer.Level)
	}
	if layer.Priority != 0 {
		t.Errorf("default Priority = %d, want 0", layer.Priority)
	}
}

func TestLayerBuilder_BuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *LayerBuilder
	}{
		{"missing id", NewLayer("").Validator(nopValidator)},
		{"missing validator", NewLayer("no-fn")},
		{"invalid level", NewLayer("bad-level").Level(Level(9)).Validator(nopValidator)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if !IsConfigurationError(err) {
				t.Errorf("Build = %v, want configuration error", err)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelField, "field"},
		{LevelGroup, "group"},
		{LevelPage, "page"},
		{LevelFlow, "flow"},
		{LevelGlobal, "global"},
		{Level(42), "level(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestCombineResults(t *testing.T) {
	combined := CombineResults(
		ValidResult(),
		InvalidResult(ValidationError{Code: CodeRequired, Message: "name is required"}),
		ValidationResult{Valid: true, Warnings: []ValidationError{{Code: "deprecated", Message: "old field"}}},
		InvalidResult(ValidationError{Code: CodePattern, Message: "bad email"}),
	)

	if combined.Valid {
		t.Error("combined result with errors should be invalid")
	}
	if len(combined.Errors) != 2 {
		t.Errorf("errors = %d, want 2", len(combined.Errors))
	}
	if len(combined.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(combined.Warnings))
	}

	allValid := CombineResults(ValidResult(), ValidResult())
	if !allValid.Valid {
		t.Error("combining valid results should stay valid")
	}

	empty := CombineResults()
	if !empty.Valid {
		t.Error("empty combination should be valid")
	}
}
