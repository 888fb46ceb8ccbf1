package cli

import (
	"context"
	"io"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/internal/presentation/tui"
	"github.com/aretw0/formstate/pkg/observability"
	"github.com/aretw0/formstate/pkg/runner"
)

// EditOptions configures an interactive edit of a definition file.
type EditOptions struct {
	DefinitionPath string
	JSON           bool
	Debug          bool
	In             io.Reader
	Out            io.Writer
}

// RunEdit loads a definition into an in-memory form and runs the edit loop on it.
func RunEdit(ctx context.Context, opts EditOptions) error {
	logger := logging.ForCLI(opts.Debug, logging.FormatText)
	form, err := formstate.Load(opts.DefinitionPath,
		formstate.WithLogger(logger),
		formstate.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	if err != nil {
		return err
	}

	r := runner.NewRunner(
		runner.WithForm(form),
		runner.WithLogger(logger),
		runner.WithInputHandler(editHandler(opts.In, opts.Out, opts.JSON)),
		runner.WithSignals(true),
	)
	return r.Run(ctx)
}

// Edit runs the edit loop on a stored session; each command is persisted.
func (s *Sessions) Edit(ctx context.Context, id string, in io.Reader) error {
	r := runner.NewRunner(
		runner.WithSession(s.Manager, id),
		runner.WithInputHandler(editHandler(in, s.Out, s.JSON)),
		runner.WithSignals(true),
	)
	return r.Run(ctx)
}

func editHandler(in io.Reader, out io.Writer, jsonOut bool) runner.IOHandler {
	if jsonOut {
		return runner.NewJSONHandler(in, out)
	}
	if !IsTerminal(out) {
		return runner.NewTextHandler(in, out)
	}

	render := tui.NewRenderer(terminalWidth(out))
	return runner.NewTextHandler(in, out, runner.WithTextHandlerRenderer(func(v runner.View) (string, error) {
		title := v.Name
		if v.ID != "" {
			title = v.ID
		}
		return render(tui.FormMarkdown(tui.FormView{
			Title:                 title,
			State:                 v.State,
			DirtyFieldsToCheck:    v.DirtyFieldsToCheck,
			SaveableFieldsToCheck: v.SaveableFieldsToCheck,
		}))
	}))
}
