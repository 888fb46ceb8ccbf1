package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/internal/presentation/tui"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/observability"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/google/uuid"
)

// Sessions runs the session subcommands against a backend.
type Sessions struct {
	Manager *session.Manager
	Out     io.Writer
	JSON    bool
}

// NewSessions builds a session manager over the backend, logging form
// transitions when debug is set.
func NewSessions(b *Backend, out io.Writer, debug, jsonOut bool) *Sessions {
	logger := logging.ForCLI(debug, logging.FormatText)
	return &Sessions{
		Manager: session.NewManager(b.Store, managerOptions(b, logger, observability.LoggingHooks(logger))...),
		Out:     out,
		JSON:    jsonOut,
	}
}

func managerOptions(b *Backend, logger *slog.Logger, hooks domain.LifecycleHooks) []session.Option {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithFormOptions(
			formstate.WithLogger(logger),
			formstate.WithLifecycleHooks(hooks),
		),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return opts
}

// List prints the stored session IDs.
func (s *Sessions) List(ctx context.Context) error {
	ids, err := s.Manager.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}

	if s.JSON {
		if ids == nil {
			ids = []string{}
		}
		return json.NewEncoder(s.Out).Encode(ids)
	}
	if len(ids) == 0 {
		fmt.Fprintln(s.Out, "No stored sessions found.")
		return nil
	}
	fmt.Fprintln(s.Out, "Stored Sessions:")
	for _, id := range ids {
		fmt.Fprintln(s.Out, "- "+id)
	}
	return nil
}

// Create starts a session from a definition file. An empty id gets a random UUID.
func (s *Sessions) Create(ctx context.Context, definitionPath, id string) error {
	form, err := formstate.Load(definitionPath)
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}

	sess, err := s.Manager.Create(ctx, id, form)
	if err != nil {
		return err
	}
	if !s.JSON {
		printSystemMessage(s.Out, "Session '%s' created.", id)
	}
	return s.print(sess)
}

// Inspect prints one session.
func (s *Sessions) Inspect(ctx context.Context, id string) error {
	sess, err := s.Manager.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	return s.print(sess)
}

// Set applies ChangeValue for each assignment, in order.
func (s *Sessions) Set(ctx context.Context, id string, pairs []string) error {
	assignments, err := ParseAssignments(pairs)
	if err != nil {
		return err
	}
	return s.apply(ctx, id, func(f *formstate.Form) error {
		for _, a := range assignments {
			if err := f.ChangeValue(ctx, a.Key, a.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset restores every field of a session to its baseline.
func (s *Sessions) Reset(ctx context.Context, id string) error {
	return s.apply(ctx, id, func(f *formstate.Form) error {
		return f.Reset(ctx)
	})
}

// Reinitialize rebases the given fields of a session.
func (s *Sessions) Reinitialize(ctx context.Context, id string, pairs []string) error {
	assignments, err := ParseAssignments(pairs)
	if err != nil {
		return err
	}
	return s.apply(ctx, id, func(f *formstate.Form) error {
		return f.Reinitialize(ctx, AssignmentMap(assignments))
	})
}

// Remove deletes sessions. It reports every failure and returns the last one.
func (s *Sessions) Remove(ctx context.Context, ids []string) error {
	var lastErr error
	for _, id := range ids {
		if err := s.Manager.Delete(ctx, id); err != nil {
			fmt.Fprintf(s.Out, "Error removing '%s': %v\n", id, err)
			lastErr = err
			continue
		}
		fmt.Fprintf(s.Out, "Removed session '%s'\n", id)
	}
	return lastErr
}

func (s *Sessions) apply(ctx context.Context, id string, fn func(*formstate.Form) error) error {
	sess, err := s.Manager.Apply(ctx, id, fn)
	if sess == nil {
		return fmt.Errorf("error updating session '%s': %w", id, err)
	}
	if printErr := s.print(sess); printErr != nil {
		return printErr
	}
	return err
}

func (s *Sessions) print(sess *domain.Session) error {
	if s.JSON {
		enc := json.NewEncoder(s.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(formJSON{
			ID:         sess.ID,
			Name:       sess.Name,
			Values:     sess.State.Values(),
			IsDirty:    sess.State.IsDirty,
			IsSaveable: sess.State.IsSaveable,
		})
	}

	title := sess.ID
	if sess.Name != "" {
		title = fmt.Sprintf("%s (%s)", sess.Name, sess.ID)
	}
	return renderForm(s.Out, tui.FormView{
		Title:                 title,
		State:                 sess.State,
		DirtyFieldsToCheck:    sess.DirtyFieldsToCheck,
		SaveableFieldsToCheck: sess.SaveableFieldsToCheck,
	})
}
