// Package flow implements the multi-step navigation state machine: a
// directed graph of pages walked via conditional rules with default
// fallback, history-tracked back navigation, and page validation gating
// every forward transition.
package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andyoucreate/rilaykit/condition"
	"github.com/andyoucreate/rilaykit/model"
	"github.com/andyoucreate/rilaykit/observability"
	"github.com/andyoucreate/rilaykit/resolver"
)

// Config describes a flow: its pages, the navigation rules between them,
// and whether back navigation is allowed.
type Config struct {
	ID        string
	StartPage string
	Pages     []model.Page
	Rules     []model.NavigationRule
	AllowBack bool
}

// Engine is the stateful flow walker. It is NOT safe for concurrent
// GoNext/GoBack calls on the same instance; callers must serialize
// navigation (for example by disabling navigation UI while a transition is
// outstanding).
type Engine struct {
	cfg       Config
	resolvers *resolver.Registry
	store     Store
	logger    *zap.Logger
	now       func() time.Time

	state          model.FlowState
	stepData       map[string]map[string]any
	lastValidation model.ValidationResult
	schemaFns      map[string]model.ValidatorFunc
}

// EngineOption configures a flow Engine.
type EngineOption func(*Engine)

// WithResolverRegistry sets the registry used to resolve schema-page
// schemas. Defaults to the built-in registry.
func WithResolverRegistry(r *resolver.Registry) EngineOption {
	return func(e *Engine) { e.resolvers = r }
}

// WithStore enables snapshot persistence after every successful transition.
func WithStore(s Store) EngineOption {
	return func(e *Engine) { e.store = s }
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine validates the config and creates an engine positioned at the
// start page.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	if cfg.StartPage == "" {
		return nil, model.NewConfigurationError("flow start page is required")
	}
	pageIDs := make(map[string]bool, len(cfg.Pages))
	for _, p := range cfg.Pages {
		pageIDs[p.ID] = true
	}
	if !pageIDs[cfg.StartPage] {
		return nil, model.NewConfigurationError(
			fmt.Sprintf("start page %q not found in pages", cfg.StartPage))
	}
	for i, r := range cfg.Rules {
		if r.From == "" {
			return nil, model.NewConfigurationError(
				fmt.Sprintf("rule %d has no from page", i))
		}
		if r.To == "" {
			return nil, model.NewConfigurationError(
				fmt.Sprintf("rule %d has no to page", i))
		}
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}

	e := &Engine{
		cfg:       cfg,
		logger:    zap.NewNop(),
		now:       time.Now,
		stepData:  make(map[string]map[string]any),
		schemaFns: make(map[string]model.ValidatorFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolvers == nil {
		e.resolvers = resolver.NewRegistry()
	}

	e.state = model.FlowState{
		ID:            cfg.ID,
		CurrentPageID: cfg.StartPage,
		History:       []string{},
		Data:          make(map[string]any),
		StartTime:     e.now(),
	}
	return e, nil
}

// CurrentPage returns the page the flow is positioned at.
func (e *Engine) CurrentPage() (model.Page, bool) {
	return e.page(e.state.CurrentPageID)
}

// NextPageID resolves the transition target from the current page:
// conditional rules in declaration order with first match winning, then the
// default rule, then "".
func (e *Engine) NextPageID() string {
	return e.nextFrom(e.state.CurrentPageID)
}

func (e *Engine) nextFrom(pageID string) string {
	var defaultTo string
	for _, r := range e.cfg.Rules {
		if r.From != pageID {
			continue
		}
		if r.Condition != nil {
			if condition.Evaluate(*r.Condition, e.state.Data) {
				return r.To
			}
			continue
		}
		if r.Default && defaultTo == "" {
			defaultTo = r.To
		}
	}
	return defaultTo
}

// CanGoNext reports whether a transition target currently resolves from the
// current page. Default rules count: a flow relying solely on a default
// rule is navigable, so it also reports CanGoNext.
func (e *Engine) CanGoNext() bool {
	return e.NextPageID() != ""
}

// CanGoBack reports whether back navigation is allowed and history is
// non-empty.
func (e *Engine) CanGoBack() bool {
	return e.cfg.AllowBack && len(e.state.History) > 0
}

// GoNext validates the current page's data and, on success, advances to the
// resolved next page. It returns false when no transition resolves or when
// validation fails; inspect LastValidation for the failure detail. The
// returned error is reserved for snapshot persistence failures, which occur
// after the transition has already been applied.
func (e *Engine) GoNext(ctx context.Context) (bool, error) {
	ctx, span := observability.StartSpan(ctx, "flow.go_next",
		observability.AttrFlowID.String(e.cfg.ID),
		observability.AttrPageID.String(e.state.CurrentPageID))
	defer span.End()

	next := e.NextPageID()
	if next == "" {
		return false, nil
	}

	res := e.validateCurrentPage(ctx)
	e.lastValidation = res
	if !res.Valid {
		e.logger.Debug("navigation blocked by validation",
			zap.String("flow_id", e.cfg.ID),
			zap.String("page_id", e.state.CurrentPageID),
			zap.Int("errors", len(res.Errors)))
		return false, nil
	}

	e.state.History = append(e.state.History, e.state.CurrentPageID)
	e.state.CurrentPageID = next
	e.state.Completed = false
	e.state.EndTime = nil

	if e.NextPageID() == "" {
		e.state.Completed = true
		end := e.now()
		e.state.EndTime = &end
	}

	e.logger.Info("flow advanced",
		zap.String("flow_id", e.cfg.ID),
		zap.String("page_id", next),
		zap.Bool("completed", e.state.Completed))

	if e.store != nil {
		if err := e.store.Save(ctx, e.Snapshot()); err != nil {
			observability.EndSpanWithError(span, err)
			return true, err
		}
	}
	return true, nil
}

// GoBack pops the history top into the current page and clears completion.
// It returns false when back navigation is disabled or history is empty.
func (e *Engine) GoBack() bool {
	if !e.CanGoBack() {
		return false
	}

	top := len(e.state.History) - 1
	e.state.CurrentPageID = e.state.History[top]
	e.state.History = e.state.History[:top]
	e.state.Completed = false
	e.state.EndTime = nil

	e.logger.Info("flow went back",
		zap.String("flow_id", e.cfg.ID),
		zap.String("page_id", e.state.CurrentPageID))
	return true
}

// UpdateData shallow-merges pageData into the flow data; later keys win.
// The merged keys are also recorded against the current page for the
// persisted snapshot's per-step data.
func (e *Engine) UpdateData(pageData map[string]any) {
	if e.state.Data == nil {
		e.state.Data = make(map[string]any)
	}
	step := e.stepData[e.state.CurrentPageID]
	if step == nil {
		step = make(map[string]any)
		e.stepData[e.state.CurrentPageID] = step
	}
	for k, v := range pageData {
		e.state.Data[k] = v
		step[k] = v
	}

	e.logger.Debug("flow data updated",
		zap.String("flow_id", e.cfg.ID),
		zap.Any("data", observability.RedactData(pageData, nil)))
}

// Data returns a copy of the merged flow data.
func (e *Engine) Data() map[string]any {
	out := make(map[string]any, len(e.state.Data))
	for k, v := range e.state.Data {
		out[k] = v
	}
	return out
}

// Progress returns (currentPageIndex+1)/totalPages, or 0 when the flow has
// no pages. This is index-based, not rule-graph-based: pages off the
// traversed path still count.
func (e *Engine) Progress() float64 {
	if len(e.cfg.Pages) == 0 {
		return 0
	}
	return float64(e.pageIndex(e.state.CurrentPageID)+1) / float64(len(e.cfg.Pages))
}

// Completed reports whether the flow reached a terminal page.
func (e *Engine) Completed() bool { return e.state.Completed }

// LastValidation returns the most recent page-validation result, letting
// callers inspect why GoNext returned false.
func (e *Engine) LastValidation() model.ValidationResult { return e.lastValidation }

// Reset restores the initial state: start page, empty history and data, not
// completed.
func (e *Engine) Reset() {
	e.state = model.FlowState{
		ID:            e.cfg.ID,
		CurrentPageID: e.cfg.StartPage,
		History:       []string{},
		Data:          make(map[string]any),
		StartTime:     e.now(),
	}
	e.stepData = make(map[string]map[string]any)
	e.lastValidation = model.ValidationResult{}
}

// State returns a copy of the flow state. Callers must not expect mutations
// of the copy to affect the engine.
func (e *Engine) State() model.FlowState {
	out := e.state
	out.History = append([]string(nil), e.state.History...)
	return out
}

// Snapshot builds the JSON-serializable flow state consumed by persistence
// adapters.
func (e *Engine) Snapshot() model.FlowSnapshot {
	visited := make([]string, 0, len(e.state.History)+1)
	seen := make(map[string]bool, len(e.state.History)+1)
	for _, id := range append(append([]string{}, e.state.History...), e.state.CurrentPageID) {
		if !seen[id] {
			seen[id] = true
			visited = append(visited, id)
		}
	}

	stepData := make(map[string]map[string]any, len(e.stepData))
	for page, data := range e.stepData {
		copied := make(map[string]any, len(data))
		for k, v := range data {
			copied[k] = v
		}
		stepData[page] = copied
	}

	return model.FlowSnapshot{
		WorkflowID:       e.cfg.ID,
		CurrentStepIndex: e.pageIndex(e.state.CurrentPageID),
		AllData:          e.Data(),
		StepData:         stepData,
		VisitedSteps:     visited,
		LastSaved:        e.now(),
	}
}

// Restore repositions the engine from a persisted snapshot. Completion is
// re-derived: a restored flow sitting on a page with no outgoing resolution
// reports completed.
func (e *Engine) Restore(snap model.FlowSnapshot) error {
	if snap.CurrentStepIndex < 0 || snap.CurrentStepIndex >= len(e.cfg.Pages) {
		return model.NewConfigurationError(
			fmt.Sprintf("snapshot step index %d out of range", snap.CurrentStepIndex))
	}

	current := e.cfg.Pages[snap.CurrentStepIndex].ID

	data := make(map[string]any, len(snap.AllData))
	for k, v := range snap.AllData {
		data[k] = v
	}

	history := make([]string, 0, len(snap.VisitedSteps))
	for _, id := range snap.VisitedSteps {
		if id != current {
			history = append(history, id)
		}
	}

	e.state.CurrentPageID = current
	e.state.History = history
	e.state.Data = data

	e.stepData = make(map[string]map[string]any, len(snap.StepData))
	for page, d := range snap.StepData {
		copied := make(map[string]any, len(d))
		for k, v := range d {
			copied[k] = v
		}
		e.stepData[page] = copied
	}

	e.state.Completed = e.NextPageID() == ""
	e.state.EndTime = nil
	if e.state.Completed {
		end := snap.LastSaved
		e.state.EndTime = &end
	}
	return nil
}

// validateCurrentPage gates forward navigation. Schema pages parse the
// entire flow data through the resolved schema validator and surface only
// pass/fail; configurable pages run required-then-custom checks per field,
// with the first failing field aborting the page.
func (e *Engine) validateCurrentPage(ctx context.Context) model.ValidationResult {
	page, ok := e.CurrentPage()
	if !ok {
		return model.InvalidResult(model.ValidationError{
			Code:    model.CodeValidationError,
			Message: fmt.Sprintf("page %q not found", e.state.CurrentPageID),
		})
	}

	switch page.Type {
	case model.PageTypeSchema:
		return e.validateSchemaPage(ctx, page)
	case model.PageTypeConfigurable:
		return e.validateConfigurablePage(ctx, page)
	}
	// Pages without declared validation pass.
	return model.ValidResult()
}

func (e *Engine) validateSchemaPage(ctx context.Context, page model.Page) model.ValidationResult {
	if page.Schema == nil {
		return model.ValidResult()
	}

	fn, ok := e.schemaFns[page.ID]
	if !ok {
		resolved, err := e.resolvers.Resolve(page.Schema)
		if err != nil {
			return model.InvalidResult(model.ValidationError{
				Code:    model.CodeValidationError,
				Message: err.Error(),
				Path:    page.ID,
			})
		}
		fn = resolved
		e.schemaFns[page.ID] = fn
	}

	vctx := &model.ValidationContext{FormID: e.cfg.ID, FormData: e.state.Data}
	res, err := fn(ctx, e.state.Data, vctx)
	if err != nil || !res.Valid {
		// Pass/fail only: partial error detail stays with the schema
		// library, not the engine.
		return model.InvalidResult(model.ValidationError{
			Code:    model.CodeSchemaInvalid,
			Message: fmt.Sprintf("page %q failed schema validation", page.ID),
			Path:    page.ID,
		})
	}
	return model.ValidResult()
}

func (e *Engine) validateConfigurablePage(ctx context.Context, page model.Page) model.ValidationResult {
	for _, field := range page.Fields {
		value := e.state.Data[field.ID]

		if field.Required && isFalsy(value) {
			return model.InvalidResult(model.ValidationError{
				Code:    model.CodeRequired,
				Message: fmt.Sprintf("field %q is required", field.ID),
				Path:    field.ID,
			})
		}

		if field.Validator != nil {
			vctx := &model.ValidationContext{
				FormID:   e.cfg.ID,
				FieldID:  field.ID,
				FormData: e.state.Data,
			}
			res, err := field.Validator(ctx, value, vctx)
			if err != nil {
				return model.ExecutionErrorResult(
					fmt.Sprintf("field %q validator failed: %v", field.ID, err))
			}
			if !res.Valid {
				return res
			}
		}
	}
	return model.ValidResult()
}

// isFalsy mirrors the emptiness rule for required fields: nil, empty string,
// false, and numeric zero all count as empty.
func isFalsy(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case string:
		return n == ""
	case bool:
		return !n
	case int:
		return n == 0
	case int64:
		return n == 0
	case float64:
		return n == 0
	case float32:
		return n == 0
	}
	return false
}

func (e *Engine) page(id string) (model.Page, bool) {
	for _, p := range e.cfg.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return model.Page{}, false
}

func (e *Engine) pageIndex(id string) int {
	for i, p := range e.cfg.Pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}
