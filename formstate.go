package formstate

import (
	"context"
	"log/slog"

	"github.com/aretw0/formstate/internal/runtime"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
)

// Listener is notified whenever a recomputation pass flips a derived flag.
type Listener func(ctx context.Context, event *domain.FlagEvent)

// Form is the high-level entry point for the formstate library.
// It wraps the internal runtime and exposes the public form surface.
type Form struct {
	engine *runtime.Engine

	dirtyKeys    []string
	saveableKeys []string
	listeners    []Listener
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	Name         string
}

// Option defines a functional option for configuring a Form.
type Option func(*Form)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Form) {
		f.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the form.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// WithName labels the form in logs and events.
func WithName(name string) Option {
	return func(f *Form) {
		f.Name = name
	}
}

// WithDirtyFields restricts the dirty check to the given keys.
// Calling it with no keys disables the check (the form is never dirty).
func WithDirtyFields(keys ...string) Option {
	return func(f *Form) {
		f.dirtyKeys = append([]string{}, keys...)
	}
}

// WithSaveableFields restricts the saveable check to the given keys.
// Calling it with no keys makes the form always saveable.
func WithSaveableFields(keys ...string) Option {
	return func(f *Form) {
		f.saveableKeys = append([]string{}, keys...)
	}
}

// WithListener subscribes l before the initial recomputation pass, so it also
// observes the flags settled at construction.
func WithListener(l Listener) Option {
	return func(f *Form) {
		f.listeners = append(f.listeners, l)
	}
}

// New builds a form from a descriptor list.
// Subset lists not set through options are inferred from the descriptor flags.
func New(descriptors []domain.FieldDescriptor, opts ...Option) (*Form, error) {
	f := configure(opts)

	engine, err := runtime.NewEngine(runtime.Config{
		Descriptors:           descriptors,
		DirtyFieldsToCheck:    f.dirtyKeys,
		SaveableFieldsToCheck: f.saveableKeys,
	}, f.runtimeOptions()...)
	if err != nil {
		return nil, err
	}

	f.engine = engine
	return f, nil
}

// FromDefinition builds a form from a decoded definition document.
// Options take precedence over the definition's name and subset lists.
func FromDefinition(def domain.FormDefinition, opts ...Option) (*Form, error) {
	base := []Option{WithName(def.Name)}
	if def.DirtyFieldsToCheck != nil {
		base = append(base, WithDirtyFields(def.DirtyFieldsToCheck...))
	}
	if def.SaveableFieldsToCheck != nil {
		base = append(base, WithSaveableFields(def.SaveableFieldsToCheck...))
	}
	return New(def.Fields, append(base, opts...)...)
}

// Load reads a YAML or JSON form definition from path and builds the form.
func Load(path string, opts ...Option) (*Form, error) {
	def, err := fields.LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return FromDefinition(def, opts...)
}

// Restore rebuilds a form from a persisted session. The stored flags are
// recomputed, so a stale snapshot is corrected on load.
func Restore(sess *domain.Session, opts ...Option) *Form {
	base := []Option{WithName(sess.Name)}
	if sess.DirtyFieldsToCheck != nil {
		base = append(base, WithDirtyFields(sess.DirtyFieldsToCheck...))
	}
	if sess.SaveableFieldsToCheck != nil {
		base = append(base, WithSaveableFields(sess.SaveableFieldsToCheck...))
	}
	f := configure(append(base, opts...))

	f.engine = runtime.NewEngineFromState(sess.State, f.dirtyKeys, f.saveableKeys, f.runtimeOptions()...)
	return f
}

func configure(opts []Option) *Form {
	f := &Form{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) runtimeOptions() []runtime.EngineOption {
	hooks := f.hooks
	if len(f.listeners) > 0 {
		// Listeners from options must observe the construction pass, which
		// runs before Subscribe could be called.
		listeners, next := f.listeners, hooks.OnFlagChange
		hooks.OnFlagChange = func(ctx context.Context, ev *domain.FlagEvent) {
			if next != nil {
				next(ctx, ev)
			}
			for _, l := range listeners {
				l(ctx, ev)
			}
		}
	}

	return []runtime.EngineOption{
		runtime.WithLogger(f.logger),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithName(f.Name),
	}
}

// Dispatch applies a raw transition and returns the resulting state.
func (f *Form) Dispatch(ctx context.Context, action domain.Action) (domain.FormState, error) {
	return f.engine.Dispatch(ctx, action)
}

// ChangeValue sets the current value of a field.
// An unknown key is rejected with an error wrapping domain.ErrUnknownField.
func (f *Form) ChangeValue(ctx context.Context, key string, value domain.Value) error {
	return f.engine.ChangeValue(ctx, key, value)
}

// Set is ChangeValue for native Go scalars (string, number, bool or nil).
func (f *Form) Set(ctx context.Context, key string, value any) error {
	v, err := domain.ValueOf(value)
	if err != nil {
		return err
	}
	return f.engine.ChangeValue(ctx, key, v)
}

// Reset restores every field to its baseline.
func (f *Form) Reset(ctx context.Context) error {
	return f.engine.Reset(ctx)
}

// Reinitialize replaces both value and baseline of the given fields.
// Unknown keys are never added; they are reported after the known keys were applied.
func (f *Form) Reinitialize(ctx context.Context, data map[string]domain.Value) error {
	return f.engine.Reinitialize(ctx, data)
}

// Values returns the current value of every field.
func (f *Form) Values() map[string]domain.Value {
	return f.engine.Values()
}

// IsDirty reports whether any checked field differs from its baseline.
func (f *Form) IsDirty() bool {
	return f.engine.IsDirty()
}

// IsSaveable reports whether every checked field differs from its baseline
// or has an acceptable baseline.
func (f *Form) IsSaveable() bool {
	return f.engine.IsSaveable()
}

// State returns a copy of the full form state.
func (f *Form) State() domain.FormState {
	return f.engine.State()
}

// DirtyFieldsToCheck returns the keys considered by the dirty check.
func (f *Form) DirtyFieldsToCheck() []string {
	return f.engine.DirtyFieldsToCheck()
}

// SaveableFieldsToCheck returns the keys considered by the saveable check.
func (f *Form) SaveableFieldsToCheck() []string {
	return f.engine.SaveableFieldsToCheck()
}

// Subscribe registers a flag-change listener. The returned function removes it.
func (f *Form) Subscribe(l Listener) func() {
	return f.engine.Subscribe(runtime.Listener(l))
}

// Snapshot captures the form as a session record for host persistence.
// Timestamps are left to the caller (see pkg/session).
func (f *Form) Snapshot(id string) *domain.Session {
	return &domain.Session{
		ID:                    id,
		Name:                  f.Name,
		State:                 f.engine.State(),
		DirtyFieldsToCheck:    f.engine.DirtyFieldsToCheck(),
		SaveableFieldsToCheck: f.engine.SaveableFieldsToCheck(),
	}
}
