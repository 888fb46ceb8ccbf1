package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
)

// Form describes which fields feed which derived flag.
type Form struct {
	Keys                  []string
	DirtyFieldsToCheck    []string
	SaveableFieldsToCheck []string
}

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	State domain.FormState
}

// GenerateMermaid produces a Mermaid flowchart of the form: one node per field
// with an edge into each flag it takes part in.
// It applies semantic styling:
// - Field: [Rectangle]
// - Flag: ((Circle))
// - Subset key that is not a field: dashed edge from a [/Parallelogram/]
// It also applies overlay styles (changed, acceptable, flag set) if provided.
func GenerateMermaid(form Form, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    dirty((\"dirty\"))\n")
	sb.WriteString("    saveable((\"saveable\"))\n")

	keys := append([]string{}, form.Keys...)
	sort.Strings(keys)

	ids := make(map[string]string, len(keys))
	for i, key := range keys {
		ids[key] = fmt.Sprintf("f%d", i)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[key], escapeLabel(key)))
	}

	ghosts := make(map[string]string)
	edges := func(subset []string, flag string) {
		for _, key := range subset {
			if id, ok := ids[key]; ok {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, flag))
				continue
			}
			// Referenced by a subset list but not a field: ignored by the predicate.
			id, seen := ghosts[key]
			if !seen {
				id = fmt.Sprintf("g%d", len(ghosts))
				ghosts[key] = id
				sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", id, escapeLabel(key)))
			}
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", id, flag))
		}
	}
	edges(form.DirtyFieldsToCheck, "dirty")
	edges(form.SaveableFieldsToCheck, "saveable")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef changed fill:#ffeb3b,stroke:#fbc02d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef acceptable fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef on fill:#c8e6c9,stroke:#2e7d32,stroke-width:4px,color:#000;\n")

		for _, key := range keys {
			field, ok := overlay.State.Data[key]
			if !ok {
				continue
			}
			switch {
			case field.Changed():
				sb.WriteString(fmt.Sprintf("    class %s changed;\n", ids[key]))
			case field.InitialValueIsOk:
				sb.WriteString(fmt.Sprintf("    class %s acceptable;\n", ids[key]))
			}
		}
		if overlay.State.IsDirty {
			sb.WriteString("    class dirty on;\n")
		}
		if overlay.State.IsSaveable {
			sb.WriteString("    class saveable on;\n")
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
