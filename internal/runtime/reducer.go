package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/formstate/pkg/domain"
)

// Reduce applies a single transition and returns the resulting state.
//
// It never mutates its input: data-affecting transitions work on a copy of the
// field map, flag transitions share it. Unknown keys are reported as
// *domain.UnknownFieldError. For Reinitialize the known keys are still applied.
// An unknown action type is a programming error and panics.
func Reduce(state domain.FormState, action domain.Action) (domain.FormState, error) {
	switch action.Type {
	case domain.ActionChangeValue:
		field, ok := state.Data[action.Key]
		if !ok {
			return state, &domain.UnknownFieldError{Action: action.Type, Keys: []string{action.Key}}
		}
		next := state.Clone()
		field.Value = action.Value
		next.Data[action.Key] = field
		return next, nil

	case domain.ActionSetDirty:
		state.IsDirty = action.Flag
		return state, nil

	case domain.ActionSetSaveable:
		state.IsSaveable = action.Flag
		return state, nil

	case domain.ActionReset:
		next := state.Clone()
		for key, field := range next.Data {
			field.Value = field.InitialValue
			next.Data[key] = field
		}
		return next, nil

	case domain.ActionReinitialize:
		next := state.Clone()
		var unknown []string
		for key, value := range action.Data {
			field, ok := next.Data[key]
			if !ok {
				unknown = append(unknown, key)
				continue
			}
			field.Value = value
			field.InitialValue = value
			next.Data[key] = field
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return next, &domain.UnknownFieldError{Action: action.Type, Keys: unknown}
		}
		return next, nil

	default:
		panic(fmt.Sprintf("runtime: unknown action type %q", action.Type))
	}
}
