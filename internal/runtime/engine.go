package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
	"github.com/aretw0/formstate/pkg/schema"
)

// Config is the construction input of an Engine.
type Config struct {
	Descriptors []domain.FieldDescriptor

	// DirtyFieldsToCheck and SaveableFieldsToCheck restrict the predicates.
	// Nil infers them from the descriptors; an empty slice checks nothing.
	DirtyFieldsToCheck    []string
	SaveableFieldsToCheck []string
}

// Listener is notified after a recomputation pass flipped a derived flag.
type Listener func(ctx context.Context, event *domain.FlagEvent)

// Engine owns a FormState and applies transitions to it one at a time.
// After each data-affecting transition it recomputes the derived flags and
// issues SetDirty/SetSaveable only for the flags whose value changed.
//
// Hooks and listeners observe transitions in the order they were applied.
// Notifications are queued under the state lock and delivered outside it by
// one dispatching goroutine at a time, so a dispatch that finds another one
// delivering may return before its own notifications have run.
type Engine struct {
	mu    sync.Mutex
	state domain.FormState

	pending  []notification
	draining bool

	dirtyKeys    []string
	saveableKeys []string

	listeners map[int]Listener
	nextID    int

	name   string
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine builds the initial state from the descriptors and runs the first
// recomputation pass.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	for i, d := range cfg.Descriptors {
		if d.Key == "" {
			return nil, &schema.ValidationError{Key: fmt.Sprintf("[%d].key", i), Reason: "required"}
		}
	}

	dirtyKeys := cloneKeys(cfg.DirtyFieldsToCheck)
	if dirtyKeys == nil {
		dirtyKeys = fields.InferDirtyFields(cfg.Descriptors)
	}
	saveableKeys := cloneKeys(cfg.SaveableFieldsToCheck)
	if saveableKeys == nil {
		saveableKeys = fields.InferSaveableFields(cfg.Descriptors)
	}

	state := domain.NewFormState(fields.TransformInitialData(cfg.Descriptors))
	return newEngine(state, dirtyKeys, saveableKeys, opts...), nil
}

// NewEngineFromState restores an engine from a persisted snapshot. Nil subset
// lists default to every field of the state. The stored flags are recomputed
// immediately, so a stale snapshot is corrected on load.
func NewEngineFromState(state domain.FormState, dirtyKeys, saveableKeys []string, opts ...EngineOption) *Engine {
	state = state.Clone()
	if dirtyKeys == nil {
		dirtyKeys = state.Keys()
	}
	if saveableKeys == nil {
		saveableKeys = state.Keys()
	}
	return newEngine(state, cloneKeys(dirtyKeys), cloneKeys(saveableKeys), opts...)
}

func newEngine(state domain.FormState, dirtyKeys, saveableKeys []string, opts ...EngineOption) *Engine {
	e := &Engine{
		state:        state,
		dirtyKeys:    dirtyKeys,
		saveableKeys: saveableKeys,
		listeners:    make(map[int]Listener),
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.name != "" {
		e.logger = e.logger.With("form", e.name)
	}

	e.warnUnknownKeys("dirty_fields_to_check", dirtyKeys)
	e.warnUnknownKeys("saveable_fields_to_check", saveableKeys)

	// Construction counts as a data change: the freshly built state carries
	// cleared flags that may not match the predicates (e.g. an acceptable baseline).
	prev := e.state
	issued := e.recompute()
	e.emit(context.Background(), prev, issued, e.state.Clone())

	return e
}

// notification is the deferred outcome of one dispatched action.
type notification struct {
	ctx        context.Context
	action     domain.Action
	prev, next domain.FormState
	err        error
	issued     []domain.Action
	result     domain.FormState
}

// Dispatch applies an action, recomputes the derived flags when field data
// changed and returns a copy of the resulting state.
func (e *Engine) Dispatch(ctx context.Context, action domain.Action) (domain.FormState, error) {
	e.mu.Lock()
	prev := e.state
	next, err := Reduce(prev, action)
	e.state = next

	var issued []domain.Action
	if action.AffectsData() {
		issued = e.recompute()
	}
	result := e.state.Clone()

	e.pending = append(e.pending, notification{
		ctx:    ctx,
		action: action,
		prev:   prev,
		next:   next,
		err:    err,
		issued: issued,
		result: result.Clone(),
	})
	deliver := !e.draining
	e.draining = true
	e.mu.Unlock()

	if deliver {
		e.drain()
	}
	return result, err
}

// drain delivers queued notifications in dispatch order until the queue is
// empty. Only the goroutine that set e.draining runs it, so a hook that
// dispatches again only enqueues.
func (e *Engine) drain() {
	finished := false
	defer func() {
		// A panicking hook must not leave the queue without a drainer.
		if !finished {
			e.mu.Lock()
			e.draining = false
			e.mu.Unlock()
		}
	}()

	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.draining = false
			finished = true
			e.mu.Unlock()
			return
		}
		n := e.pending[0]
		e.pending[0] = notification{}
		e.pending = e.pending[1:]
		e.mu.Unlock()

		e.report(n.ctx, n.action, n.prev, n.next, n.err)
		e.emit(n.ctx, n.next, n.issued, n.result)
	}
}

// ChangeValue sets the current value of a field.
func (e *Engine) ChangeValue(ctx context.Context, key string, value domain.Value) error {
	_, err := e.Dispatch(ctx, domain.ChangeValue(key, value))
	return err
}

// Reset restores every field to its baseline.
func (e *Engine) Reset(ctx context.Context) error {
	_, err := e.Dispatch(ctx, domain.Reset())
	return err
}

// Reinitialize replaces value and baseline for the given fields. Unknown keys
// are never added; they are reported as an error after the known keys were applied.
func (e *Engine) Reinitialize(ctx context.Context, data map[string]domain.Value) error {
	_, err := e.Dispatch(ctx, domain.Reinitialize(data))
	return err
}

// State returns a copy of the current state.
func (e *Engine) State() domain.FormState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Values returns the current value of every field.
func (e *Engine) Values() map[string]domain.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Values()
}

// IsDirty reports the stored dirty flag.
func (e *Engine) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.IsDirty
}

// IsSaveable reports the stored saveable flag.
func (e *Engine) IsSaveable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.IsSaveable
}

// DirtyFieldsToCheck returns the keys considered by the dirty predicate.
func (e *Engine) DirtyFieldsToCheck() []string {
	return cloneKeys(e.dirtyKeys)
}

// SaveableFieldsToCheck returns the keys considered by the saveable predicate.
func (e *Engine) SaveableFieldsToCheck() []string {
	return cloneKeys(e.saveableKeys)
}

// Name returns the engine label (possibly empty).
func (e *Engine) Name() string {
	return e.name
}

// Subscribe registers a listener for flag changes. The returned function removes it.
func (e *Engine) Subscribe(l Listener) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// recompute evaluates both predicates against the current state and applies
// SetDirty/SetSaveable for the flags that changed. Callers must hold e.mu
// (or own the engine exclusively during construction).
func (e *Engine) recompute() []domain.Action {
	var issued []domain.Action

	if dirty := IsDirty(e.state, e.dirtyKeys); dirty != e.state.IsDirty {
		issued = append(issued, domain.SetDirty(dirty))
	}
	if saveable := IsSaveable(e.state, e.saveableKeys); saveable != e.state.IsSaveable {
		issued = append(issued, domain.SetSaveable(saveable))
	}

	for _, action := range issued {
		e.state, _ = Reduce(e.state, action)
	}
	return issued
}

// report logs the outcome of a dispatched action and fires the transition hooks.
func (e *Engine) report(ctx context.Context, action domain.Action, prev, next domain.FormState, err error) {
	diff := domain.Diff(&prev, &next)
	event := &domain.TransitionEvent{
		EventBase: e.base(domain.EventTransition),
		Action:    action.Type,
		Diff:      diff,
		Err:       err,
	}

	if err != nil {
		e.logger.Warn("transition rejected", "action", action.Type, "err", err)
		if e.hooks.OnRejected != nil {
			rejected := *event
			rejected.Type = domain.EventRejected
			e.hooks.OnRejected(ctx, &rejected)
		}
		if diff == nil {
			return
		}
	}

	e.logger.Debug("transition applied", "action", action.Type, "changed", diff != nil)
	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, event)
	}
}

// emit publishes the flag transitions issued by a recomputation pass.
// Hooks and listeners run outside the lock so they may call back into the engine.
func (e *Engine) emit(ctx context.Context, before domain.FormState, issued []domain.Action, snapshot domain.FormState) {
	if len(issued) == 0 {
		return
	}

	e.mu.Lock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	state := before
	for _, action := range issued {
		next, _ := Reduce(state, action)

		if e.hooks.OnTransition != nil {
			e.hooks.OnTransition(ctx, &domain.TransitionEvent{
				EventBase: e.base(domain.EventTransition),
				Action:    action.Type,
				Diff:      domain.Diff(&state, &next),
			})
		}

		flag := domain.FlagDirty
		if action.Type == domain.ActionSetSaveable {
			flag = domain.FlagSaveable
		}
		e.logger.Debug("flag changed", "flag", flag, "value", action.Flag)

		event := &domain.FlagEvent{
			EventBase: e.base(domain.EventFlagChange),
			Flag:      flag,
			Value:     action.Flag,
			State:     snapshot,
		}
		if e.hooks.OnFlagChange != nil {
			e.hooks.OnFlagChange(ctx, event)
		}
		for _, l := range listeners {
			l(ctx, event)
		}
		state = next
	}
}

func (e *Engine) base(typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      typ,
		FormName:  e.name,
	}
}

func (e *Engine) warnUnknownKeys(list string, keys []string) {
	for _, key := range keys {
		if !e.state.Has(key) {
			e.logger.Warn("subset list references unknown field", "list", list, "key", key)
		}
	}
}

func cloneKeys(keys []string) []string {
	if keys == nil {
		return nil
	}
	return append([]string{}, keys...)
}
