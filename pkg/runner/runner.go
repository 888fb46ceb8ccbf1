package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/session"
)

// ErrNoForm is returned by Run when neither a form nor a session was configured.
var ErrNoForm = errors.New("runner: no form or session configured")

// Runner drives the edit loop: render, read a command, apply it, repeat.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Manager and SessionID select a stored session to edit.
	Manager   *session.Manager
	SessionID string

	form    *formstate.Form
	signals bool
}

// NewRunner creates a Runner from options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the input ends, a quit command arrives or ctx
// is cancelled. Failed commands are reported through the handler and do not
// stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.form == nil && (r.Manager == nil || r.SessionID == "") {
		return ErrNoForm
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}

	loopCtx := ctx
	var signals *SignalManager
	if r.signals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		loopCtx = signals.Context()
	}

	view, err := r.apply(loopCtx, Command{Op: OpShow})
	if err != nil {
		return err
	}

	for {
		if err := r.Handler.Output(loopCtx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		cmd, err := r.Handler.Input(loopCtx)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				view.Err = err
				continue
			}
			if signals != nil {
				signals.CheckRace()
				if signals.Context().Err() != nil && ctx.Err() == nil {
					_ = r.Handler.SystemOutput(ctx, "Interrupted")
					return nil
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if cmd.Op == OpQuit {
			return nil
		}

		r.Logger.Debug("applying command", "op", cmd.Op, "key", cmd.Key)
		view, err = r.apply(loopCtx, cmd)
		if err != nil {
			return err
		}
	}
}

// apply runs cmd against the configured target and returns the new view.
// Transition errors land in View.Err; only storage failures are returned.
func (r *Runner) apply(ctx context.Context, cmd Command) (View, error) {
	if r.form != nil {
		cmdErr := execute(ctx, r.form, cmd)
		return viewOf(r.form.Snapshot(""), cmdErr), nil
	}

	sess, err := r.Manager.Apply(ctx, r.SessionID, func(f *formstate.Form) error {
		return execute(ctx, f, cmd)
	})
	if sess == nil {
		return View{}, fmt.Errorf("failed to apply %s to session %s: %w", cmd.Op, r.SessionID, err)
	}
	return viewOf(sess, err), nil
}

func execute(ctx context.Context, f *formstate.Form, cmd Command) error {
	switch cmd.Op {
	case OpSet:
		return f.ChangeValue(ctx, cmd.Key, cmd.Value)
	case OpReset:
		return f.Reset(ctx)
	case OpReinitialize:
		return f.Reinitialize(ctx, cmd.Values)
	case OpSave:
		return f.Reinitialize(ctx, f.Values())
	case OpShow:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}
}

func viewOf(sess *domain.Session, err error) View {
	return View{
		ID:                    sess.ID,
		Name:                  sess.Name,
		State:                 sess.State,
		DirtyFieldsToCheck:    sess.DirtyFieldsToCheck,
		SaveableFieldsToCheck: sess.SaveableFieldsToCheck,
		Err:                   err,
	}
}
