// Package validation implements the layered validation engine: hierarchical
// layers across five levels, result caching, in-flight de-duplication,
// middleware composition, and a debounced async wrapper.
package validation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/andyoucreate/rilaykit/condition"
	"github.com/andyoucreate/rilaykit/model"
	"github.com/andyoucreate/rilaykit/observability"
)

// MiddlewareContext is handed to every middleware before a layer's validator
// runs.
type MiddlewareContext struct {
	Layer   model.ValidationLayer
	Value   any
	Context *model.ValidationContext
}

// Middleware runs before each layer's validator, in registration order. A
// middleware error aborts that layer's execution with a validation_error
// result; it never fails the surrounding form validation.
type Middleware func(ctx context.Context, mctx *MiddlewareContext) error

// Engine orchestrates validation layers per form. It caches field results,
// joins concurrent identical field validations onto one in-flight execution,
// and converts validator failures into structured results. Engines are
// explicitly constructed and dependency-injected; there is no hidden
// process-wide instance.
type Engine struct {
	mu         sync.Mutex
	layers     map[string][]model.ValidationLayer // per form, kept sorted
	pending    map[string]*pendingValidation      // key: form:field:serialized(value)
	middleware []Middleware
	cache      *Cache
	logger     *zap.Logger
}

// pendingValidation lets concurrent callers join an in-flight field
// validation. result is published before done is closed.
type pendingValidation struct {
	done   chan struct{}
	result model.ValidationResult
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache replaces the default result cache.
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a validation engine with a default cache unless one is
// injected.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		layers:  make(map[string][]model.ValidationLayer),
		pending: make(map[string]*pendingValidation),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewCache(CacheConfig{})
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Cache exposes the engine's result cache for host-driven invalidation.
func (e *Engine) Cache() *Cache { return e.cache }

// Use appends a middleware. Middleware run in registration order.
func (e *Engine) Use(mw Middleware) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.middleware = append(e.middleware, mw)
}

// AddLayer appends a layer to the form's list and re-sorts it by
// (level asc, priority asc).
func (e *Engine) AddLayer(formID string, layer model.ValidationLayer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layers[formID] = append(e.layers[formID], layer)
	sortLayers(e.layers[formID])
}

// RemoveLayer removes a layer by id, reporting whether it was present.
// Cached results for the form are cleared since they may depend on it.
func (e *Engine) RemoveLayer(formID, layerID string) bool {
	e.mu.Lock()
	layers := e.layers[formID]
	found := false
	for i, l := range layers {
		if l.ID == layerID {
			e.layers[formID] = append(layers[:i], layers[i+1:]...)
			found = true
			break
		}
	}
	e.mu.Unlock()

	if found {
		e.cache.ClearForm(formID)
	}
	return found
}

// Layers returns the form's layers in execution order.
func (e *Engine) Layers(formID string) []model.ValidationLayer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.ValidationLayer, len(e.layers[formID]))
	copy(out, e.layers[formID])
	return out
}

// ValidateField validates a single field value. The cache is consulted
// first; on a miss, concurrent calls for the same (form, field, value) join
// the same in-flight execution, guaranteeing at most one concurrent
// validator run per key. The pending key includes the serialized value, so
// different candidate values for one field never observe each other's
// results.
func (e *Engine) ValidateField(ctx context.Context, formID, fieldID string, value any, vctx *model.ValidationContext) model.ValidationResult {
	ctx, span := observability.StartSpan(ctx, "validation.field",
		observability.AttrFormID.String(formID),
		observability.AttrFieldID.String(fieldID))
	defer span.End()

	key := GenerateKey(formID, fieldID, value)

	if res, ok := e.cache.Get(key); ok {
		span.SetAttributes(observability.AttrCacheHit.Bool(true))
		e.logger.Debug("field validation cache hit",
			zap.String("form_id", formID), zap.String("field_id", fieldID))
		return res
	}
	span.SetAttributes(observability.AttrCacheHit.Bool(false))

	e.mu.Lock()
	if p, ok := e.pending[key]; ok {
		e.mu.Unlock()
		<-p.done
		return p.result
	}
	p := &pendingValidation{done: make(chan struct{})}
	e.pending[key] = p
	e.mu.Unlock()

	res := e.runFieldLayers(ctx, formID, fieldID, value, vctx)
	e.cache.Set(key, res)

	e.mu.Lock()
	delete(e.pending, key)
	e.mu.Unlock()

	p.result = res
	close(p.done)
	return res
}

// ValidateGroup validates each field individually (sequentially,
// accumulating), then runs group-level layers whose dependencies intersect
// the field set, and combines everything.
func (e *Engine) ValidateGroup(ctx context.Context, formID string, fieldIDs []string, values map[string]any, vctx *model.ValidationContext) model.ValidationResult {
	var results []model.ValidationResult
	for _, fieldID := range fieldIDs {
		results = append(results, e.ValidateField(ctx, formID, fieldID, values[fieldID], vctx))
	}

	fieldSet := make(map[string]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		fieldSet[id] = true
	}

	for _, layer := range e.formLayers(formID) {
		if layer.Level != model.LevelGroup || !dependsOnAny(layer, fieldSet) {
			continue
		}
		results = append(results, e.executeLayer(ctx, layer, values, e.contextFor(vctx, formID, "")))
	}

	return model.CombineResults(results...)
}

// ValidateForm runs every layer registered for the form in sorted order.
// A failing layer with StopOnError set short-circuits the run; everything
// accumulated so far is still combined into the result.
func (e *Engine) ValidateForm(ctx context.Context, formID string, data map[string]any, vctx *model.ValidationContext) model.ValidationResult {
	ctx, span := observability.StartSpan(ctx, "validation.form",
		observability.AttrFormID.String(formID))
	defer span.End()

	vctx = e.contextFor(vctx, formID, "")
	if vctx.FormData == nil {
		vctx.FormData = data
	}

	var results []model.ValidationResult
	for _, layer := range e.formLayers(formID) {
		value := any(data)
		if layer.Level == model.LevelField && layer.FieldID != "" {
			value = data[layer.FieldID]
		}

		res := e.executeLayer(ctx, layer, value, vctx)
		results = append(results, res)

		if !res.Valid && layer.StopOnError {
			e.logger.Debug("form validation short-circuit",
				zap.String("form_id", formID), zap.String("layer_id", layer.ID))
			break
		}
	}

	combined := model.CombineResults(results...)
	e.logger.Debug("form validation complete",
		zap.String("form_id", formID),
		zap.Bool("valid", combined.Valid),
		zap.Int("errors", len(combined.Errors)))
	return combined
}

// CombineResults concatenates errors and warnings from all sub-results; the
// outcome is valid iff no errors remain.
func (e *Engine) CombineResults(results []model.ValidationResult) model.ValidationResult {
	return model.CombineResults(results...)
}

// runFieldLayers executes the field-level layers applicable to one field.
func (e *Engine) runFieldLayers(ctx context.Context, formID, fieldID string, value any, vctx *model.ValidationContext) model.ValidationResult {
	vctx = e.contextFor(vctx, formID, fieldID)

	var results []model.ValidationResult
	for _, layer := range e.formLayers(formID) {
		if layer.Level != model.LevelField {
			continue
		}
		if layer.FieldID != "" && layer.FieldID != fieldID {
			continue
		}
		results = append(results, e.executeLayer(ctx, layer, value, vctx))
	}
	return model.CombineResults(results...)
}

// executeLayer runs one layer through the middleware chain and its
// validator. Conditional layers whose conditions do not hold are skipped
// (no opinion). Panics and validator errors are converted into
// validation_error results; a layer failure never becomes a Go error.
func (e *Engine) executeLayer(ctx context.Context, layer model.ValidationLayer, value any, vctx *model.ValidationContext) (result model.ValidationResult) {
	if len(layer.Conditions) > 0 && !condition.EvaluateAll(layer.Conditions, vctx.FormData) {
		return model.ValidResult()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("validator panicked",
				zap.String("layer_id", layer.ID), zap.Any("panic", r))
			result = model.ExecutionErrorResult(fmt.Sprintf("layer %q panicked", layer.ID))
		}
	}()

	mctx := &MiddlewareContext{Layer: layer, Value: value, Context: vctx}
	for _, mw := range e.middlewareChain() {
		if err := mw(ctx, mctx); err != nil {
			e.logger.Warn("middleware aborted layer",
				zap.String("layer_id", layer.ID), zap.Error(err))
			return model.ExecutionErrorResult(
				fmt.Sprintf("layer %q aborted by middleware: %v", layer.ID, err))
		}
	}

	res, err := layer.Validator(ctx, value, vctx)
	if err != nil {
		e.logger.Warn("validator failed",
			zap.String("layer_id", layer.ID), zap.Error(err))
		return model.ExecutionErrorResult(
			fmt.Sprintf("layer %q failed: %v", layer.ID, err))
	}
	return res
}

func (e *Engine) formLayers(formID string) []model.ValidationLayer {
	e.mu.Lock()
	defer e.mu.Unlock()
	layers := make([]model.ValidationLayer, len(e.layers[formID]))
	copy(layers, e.layers[formID])
	return layers
}

func (e *Engine) middlewareChain() []Middleware {
	e.mu.Lock()
	defer e.mu.Unlock()
	chain := make([]Middleware, len(e.middleware))
	copy(chain, e.middleware)
	return chain
}

// contextFor fills in a validation context without mutating the caller's.
func (e *Engine) contextFor(vctx *model.ValidationContext, formID, fieldID string) *model.ValidationContext {
	if vctx == nil {
		return &model.ValidationContext{FormID: formID, FieldID: fieldID}
	}
	out := *vctx
	if out.FormID == "" {
		out.FormID = formID
	}
	if fieldID != "" {
		out.FieldID = fieldID
	}
	return &out
}

func dependsOnAny(layer model.ValidationLayer, fieldSet map[string]bool) bool {
	for _, dep := range layer.Dependencies {
		if fieldSet[dep] {
			return true
		}
	}
	return false
}
