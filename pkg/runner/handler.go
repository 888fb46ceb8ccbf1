package runner

import (
	"context"

	"github.com/aretw0/formstate/pkg/domain"
)

// View is what the runner presents after each step.
type View struct {
	ID                    string
	Name                  string
	State                 domain.FormState
	DirtyFieldsToCheck    []string
	SaveableFieldsToCheck []string

	// Err is the outcome of the last command, if it failed.
	Err error
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the current form.
	Output(ctx context.Context, view View) error

	// Input reads the next command. It returns io.EOF when the input ends.
	Input(ctx context.Context) (Command, error)

	// SystemOutput presents a meta-message to the user (e.g. status updates).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer turns a view into printable text.
type ContentRenderer func(View) (string, error)

// ParseError reports an input line that could not be read as a command.
// The runner shows it and keeps going.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }
