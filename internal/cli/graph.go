package cli

import (
	"context"
	"io"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/presentation/graph"
)

// RunGraph prints the Mermaid diagram of a form definition. With assignments
// the form state after applying them is drawn as an overlay.
func RunGraph(ctx context.Context, out io.Writer, definitionPath string, sets []string) error {
	assignments, err := ParseAssignments(sets)
	if err != nil {
		return err
	}

	form, err := formstate.Load(definitionPath)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if len(assignments) > 0 {
		for _, a := range assignments {
			if err := form.ChangeValue(ctx, a.Key, a.Value); err != nil {
				return err
			}
		}
		overlay = &graph.Overlay{State: form.State()}
	}

	state := form.State()
	_, err = io.WriteString(out, graph.GenerateMermaid(graph.Form{
		Keys:                  state.Keys(),
		DirtyFieldsToCheck:    form.DirtyFieldsToCheck(),
		SaveableFieldsToCheck: form.SaveableFieldsToCheck(),
	}, overlay))
	return err
}
