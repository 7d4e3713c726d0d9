package model

import "fmt"

// Level is the hierarchical validation level of a layer. Levels are totally
// ordered; whole-form validation runs Field before Group before Page before
// Flow before Global, because later levels assume earlier ones already ran.
// That dependency direction is a documented contract, not enforced
// programmatically.
type Level int

const (
	LevelField Level = iota + 1
	LevelGroup
	LevelPage
	LevelFlow
	LevelGlobal
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelField:
		return "field"
	case LevelGroup:
		return "group"
	case LevelPage:
		return "page"
	case LevelFlow:
		return "flow"
	case LevelGlobal:
		return "global"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelField && l <= LevelGlobal
}

// ValidationLayer is a single validation rule tagged with a hierarchical
// level. Layers are immutable after Build; replacing one requires
// remove-then-add on the owning engine or registry.
type ValidationLayer struct {
	ID           string
	Level        Level
	Priority     int // lower runs first within a level
	Validator    ValidatorFunc
	Async        bool
	StopOnError  bool
	Dependencies []string
	FieldID      string
	GroupID      string
	PageID       string
	Conditions   []Condition
	Metadata     map[string]any
}

// LayerBuilder accumulates a draft ValidationLayer. Build validates the
// draft and returns an immutable value.
type LayerBuilder struct {
	draft ValidationLayer
}

// NewLayer starts a builder for a layer with the given id. The level
// defaults to LevelField and priority to 0.
func NewLayer(id string) *LayerBuilder {
	return &LayerBuilder{draft: ValidationLayer{ID: id, Level: LevelField}}
}

// Level sets the hierarchical level.
func (b *LayerBuilder) Level(l Level) *LayerBuilder {
	b.draft.Level = l
	return b
}

// Priority sets the intra-level ordering; lower runs first.
func (b *LayerBuilder) Priority(p int) *LayerBuilder {
	b.draft.Priority = p
	return b
}

// Validator sets the validator function. Build fails without one.
func (b *LayerBuilder) Validator(fn ValidatorFunc) *LayerBuilder {
	b.draft.Validator = fn
	return b
}

// Async marks the layer's validator as potentially slow/asynchronous.
func (b *LayerBuilder) Async() *LayerBuilder {
	b.draft.Async = true
	return b
}

// StopOnError makes whole-form validation short-circuit when this layer
// fails.
func (b *LayerBuilder) StopOnError() *LayerBuilder {
	b.draft.StopOnError = true
	return b
}

// DependsOn declares the field ids this layer reads. Group-level layers run
// only when their dependencies intersect the validated field set.
func (b *LayerBuilder) DependsOn(fieldIDs ...string) *LayerBuilder {
	b.draft.Dependencies = append(b.draft.Dependencies, fieldIDs...)
	return b
}

// ForField scopes a field-level layer to a single field id.
func (b *LayerBuilder) ForField(fieldID string) *LayerBuilder {
	b.draft.FieldID = fieldID
	return b
}

// ForGroup scopes the layer to a group id.
func (b *LayerBuilder) ForGroup(groupID string) *LayerBuilder {
	b.draft.GroupID = groupID
	return b
}

// ForPage scopes the layer to a page id.
func (b *LayerBuilder) ForPage(pageID string) *LayerBuilder {
	b.draft.PageID = pageID
	return b
}

// When gates the layer on conditions evaluated against the form data.
func (b *LayerBuilder) When(conds ...Condition) *LayerBuilder {
	b.draft.Conditions = append(b.draft.Conditions, conds...)
	return b
}

// Meta attaches an arbitrary metadata entry.
func (b *LayerBuilder) Meta(key string, value any) *LayerBuilder {
	if b.draft.Metadata == nil {
		b.draft.Metadata = make(map[string]any)
	}
	b.draft.Metadata[key] = value
	return b
}

// Build validates the draft and returns the finished layer.
func (b *LayerBuilder) Build() (ValidationLayer, error) {
	if b.draft.ID == "" {
		return ValidationLayer{}, NewConfigurationError("layer id is required")
	}
	if b.draft.Validator == nil {
		return ValidationLayer{}, NewConfigurationError(
			fmt.Sprintf("layer %q has no validator function", b.draft.ID),
		)
	}
	if !b.draft.Level.Valid() {
		return ValidationLayer{}, NewConfigurationError(
			fmt.Sprintf("layer %q has invalid level %d", b.draft.ID, int(b.draft.Level)),
		)
	}
	return b.draft, nil
}
