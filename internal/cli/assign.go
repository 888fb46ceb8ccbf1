package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/fields"
)

// Assignment is one parsed --set flag.
type Assignment struct {
	Key   string
	Value domain.Value
}

// ParseAssignments parses "key=value" pairs, keeping their order.
func ParseAssignments(pairs []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (want key=value)", pair)
		}
		out = append(out, Assignment{Key: key, Value: ParseValue(raw)})
	}
	return out, nil
}

// ParseValue reads a command-line value. JSON scalar literals (numbers,
// true, false, null and quoted strings) keep their type; anything else is
// taken as a plain string.
func ParseValue(raw string) domain.Value {
	return fields.ParseLiteral(raw)
}

// AssignmentMap folds assignments into a map; later keys win.
func AssignmentMap(assignments []Assignment) map[string]domain.Value {
	out := make(map[string]domain.Value, len(assignments))
	for _, a := range assignments {
		out[a.Key] = a.Value
	}
	return out
}
