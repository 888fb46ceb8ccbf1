package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
)

// FormView is what FormMarkdown renders.
type FormView struct {
	Title                 string
	State                 domain.FormState
	DirtyFieldsToCheck    []string
	SaveableFieldsToCheck []string
}

// FormMarkdown renders a form state as a markdown table, one row per field
// in key order, followed by the derived flags.
func FormMarkdown(v FormView) string {
	var b strings.Builder

	title := v.Title
	if title == "" {
		title = "Form"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	dirty := toSet(v.DirtyFieldsToCheck)
	saveable := toSet(v.SaveableFieldsToCheck)

	b.WriteString("| Field | Value | Baseline | Changed | Baseline OK | Checks |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, key := range v.State.Keys() {
		f := v.State.Data[key]
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s | %s |\n",
			key,
			escape(f.Value.String()),
			escape(f.InitialValue.String()),
			mark(f.Changed()),
			mark(f.InitialValueIsOk),
			checks(key, dirty, saveable),
		)
	}

	fmt.Fprintf(&b, "\n**Dirty:** %s  \n**Saveable:** %s\n", mark(v.State.IsDirty), mark(v.State.IsSaveable))
	return b.String()
}

func checks(key string, dirty, saveable map[string]bool) string {
	var out []string
	if dirty[key] {
		out = append(out, "dirty")
	}
	if saveable[key] {
		out = append(out, "saveable")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
