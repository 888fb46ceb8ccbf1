package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/formstate/pkg/domain"
)

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Nil keeps the no-op default.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithName labels the engine in events and logs.
func WithName(name string) EngineOption {
	return func(e *Engine) {
		e.name = name
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
