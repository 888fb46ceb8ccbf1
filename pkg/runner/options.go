package runner

import (
	"log/slog"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithForm edits an in-memory form. Nothing is persisted.
func WithForm(form *formstate.Form) Option {
	return func(r *Runner) {
		r.form = form
	}
}

// WithSession edits a stored session; every command is persisted.
func WithSession(manager *session.Manager, sessionID string) Option {
	return func(r *Runner) {
		r.Manager = manager
		r.SessionID = sessionID
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSignals makes Ctrl+C end the loop cleanly instead of killing the process.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.signals = enabled
	}
}
