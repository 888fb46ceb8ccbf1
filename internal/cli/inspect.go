package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/internal/presentation/tui"
	"github.com/aretw0/formstate/pkg/observability"
)

// InspectOptions configures RunInspect.
type InspectOptions struct {
	DefinitionPath string

	// Reinitialize is applied first, then Set, then Reset.
	Reinitialize []string
	Set          []string
	Reset        bool

	JSON  bool
	Debug bool
	Out   io.Writer
}

// RunInspect loads a form definition, replays the requested transitions and
// prints the resulting values and flags.
func RunInspect(ctx context.Context, opts InspectOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := logging.ForCLI(opts.Debug, logging.FormatText)

	reinit, err := ParseAssignments(opts.Reinitialize)
	if err != nil {
		return err
	}
	sets, err := ParseAssignments(opts.Set)
	if err != nil {
		return err
	}

	form, err := formstate.Load(opts.DefinitionPath,
		formstate.WithLogger(logger),
		formstate.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	if err != nil {
		return err
	}

	if len(reinit) > 0 {
		if err := form.Reinitialize(ctx, AssignmentMap(reinit)); err != nil {
			return err
		}
	}
	for _, a := range sets {
		if err := form.ChangeValue(ctx, a.Key, a.Value); err != nil {
			return err
		}
	}
	if opts.Reset {
		if err := form.Reset(ctx); err != nil {
			return err
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(formJSON{
			Name:       form.Name,
			Values:     form.Values(),
			IsDirty:    form.IsDirty(),
			IsSaveable: form.IsSaveable(),
		})
	}

	return renderForm(out, tui.FormView{
		Title:                 form.Name,
		State:                 form.State(),
		DirtyFieldsToCheck:    form.DirtyFieldsToCheck(),
		SaveableFieldsToCheck: form.SaveableFieldsToCheck(),
	})
}
