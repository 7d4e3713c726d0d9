package validation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andyoucreate/rilaykit/model"
)

// AsyncValidator wraps a potentially slow validator with keyed debouncing
// and cancellation. Issuing a new Validate for a key that has a pending
// timer or in-flight execution cancels the prior operation; the superseded
// caller receives a cancelled (non-failing) result rather than an error.
//
// Cancellation is non-preemptive for already-started work: the wrapped
// validator is expected to cooperate with ctx cancellation. Callers must not
// assume hard preemption.
type AsyncValidator struct {
	id    string
	fn    model.ValidatorFunc
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*asyncOp
}

type asyncOp struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	result model.ValidationResult
}

func (op *asyncOp) finish(result model.ValidationResult) {
	op.once.Do(func() {
		op.result = result
		close(op.done)
	})
}

// NewAsyncValidator wraps fn with the given debounce delay. A delay of zero
// executes immediately.
func NewAsyncValidator(id string, fn model.ValidatorFunc, delay time.Duration) *AsyncValidator {
	return &AsyncValidator{
		id:      id,
		fn:      fn,
		delay:   delay,
		pending: make(map[string]*asyncOp),
	}
}

// ID returns the validator's registry id.
func (a *AsyncValidator) ID() string { return a.id }

// Validate runs the wrapped validator for value, debounced per key. When key
// is empty it is derived from the context's form/field ids and the
// serialized value. The call blocks until the operation resolves; a
// superseded operation resolves to a cancelled result.
func (a *AsyncValidator) Validate(ctx context.Context, value any, vctx *model.ValidationContext, key string) model.ValidationResult {
	if key == "" {
		key = deriveAsyncKey(vctx, value)
	}

	runCtx, cancel := context.WithCancel(ctx)
	op := &asyncOp{cancel: cancel, done: make(chan struct{})}

	a.mu.Lock()
	if prev, ok := a.pending[key]; ok {
		// Cancel the prior pending operation for this key: its timer
		// wait or in-flight execution resolves to a cancelled result.
		prev.cancel()
	}
	a.pending[key] = op
	a.mu.Unlock()

	go a.run(runCtx, op, key, value, vctx)

	<-op.done
	return op.result
}

func (a *AsyncValidator) run(ctx context.Context, op *asyncOp, key string, value any, vctx *model.ValidationContext) {
	defer a.clear(key, op)
	// The validator runs on a goroutine the wrapper owns, so a panic here
	// would be unrecoverable for the caller. Convert it to a result, like
	// the engine does at its layer boundary.
	defer func() {
		if r := recover(); r != nil {
			op.finish(model.ExecutionErrorResult(
				fmt.Sprintf("async validator %q panicked: %v", a.id, r)))
		}
	}()

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			op.finish(model.CancelledResult())
			return
		}
	} else if ctx.Err() != nil {
		op.finish(model.CancelledResult())
		return
	}

	res, err := a.fn(ctx, value, vctx)
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		op.finish(model.CancelledResult())
	case err != nil:
		op.finish(model.ExecutionErrorResult(
			fmt.Sprintf("async validator %q failed: %v", a.id, err)))
	case ctx.Err() != nil:
		// The validator ignored cancellation; its result is stale.
		op.finish(model.CancelledResult())
	default:
		op.finish(res)
	}
}

func (a *AsyncValidator) clear(key string, op *asyncOp) {
	a.mu.Lock()
	if a.pending[key] == op {
		delete(a.pending, key)
	}
	a.mu.Unlock()
}

// Cancel aborts the pending operation for key, if any.
func (a *AsyncValidator) Cancel(key string) {
	a.mu.Lock()
	op, ok := a.pending[key]
	a.mu.Unlock()
	if ok {
		op.cancel()
	}
}

// CancelAll aborts every pending operation.
func (a *AsyncValidator) CancelAll() {
	a.mu.Lock()
	ops := make([]*asyncOp, 0, len(a.pending))
	for _, op := range a.pending {
		ops = append(ops, op)
	}
	a.mu.Unlock()

	for _, op := range ops {
		op.cancel()
	}
}

// PendingCount returns the number of keys with an outstanding operation.
func (a *AsyncValidator) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func deriveAsyncKey(vctx *model.ValidationContext, value any) string {
	formID, fieldID := "", ""
	if vctx != nil {
		formID, fieldID = vctx.FormID, vctx.FieldID
	}
	return GenerateKey(formID, fieldID, value)
}

// AsyncRegistry tracks async validators by id for bulk cancellation and
// stats.
type AsyncRegistry struct {
	mu         sync.RWMutex
	validators map[string]*AsyncValidator
}

// AsyncStats summarizes registry contents.
type AsyncStats struct {
	Validators int
	Pending    int
}

// NewAsyncRegistry creates an empty registry.
func NewAsyncRegistry() *AsyncRegistry {
	return &AsyncRegistry{validators: make(map[string]*AsyncValidator)}
}

// Register wraps fn and stores it under id. Registering a duplicate id is a
// configuration error.
func (r *AsyncRegistry) Register(id string, fn model.ValidatorFunc, delay time.Duration) (*AsyncValidator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.validators[id]; exists {
		return nil, model.NewConflictError(fmt.Sprintf("async validator %q already registered", id))
	}
	v := NewAsyncValidator(id, fn, delay)
	r.validators[id] = v
	return v, nil
}

// Get returns the validator registered under id.
func (r *AsyncRegistry) Get(id string) (*AsyncValidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[id]
	return v, ok
}

// Unregister cancels and removes the validator with the given id.
func (r *AsyncRegistry) Unregister(id string) bool {
	r.mu.Lock()
	v, ok := r.validators[id]
	delete(r.validators, id)
	r.mu.Unlock()

	if ok {
		v.CancelAll()
	}
	return ok
}

// CancelAll aborts pending operations across every registered validator.
func (r *AsyncRegistry) CancelAll() {
	r.mu.RLock()
	vs := make([]*AsyncValidator, 0, len(r.validators))
	for _, v := range r.validators {
		vs = append(vs, v)
	}
	r.mu.RUnlock()

	for _, v := range vs {
		v.CancelAll()
	}
}

// Stats returns validator and pending-operation counts.
func (r *AsyncRegistry) Stats() AsyncStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := AsyncStats{Validators: len(r.validators)}
	for _, v := range r.validators {
		stats.Pending += v.PendingCount()
	}
	return stats
}
