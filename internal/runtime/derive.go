package runtime

import "github.com/aretw0/formstate/pkg/domain"

// IsDirty reports whether at least one checked field differs from its baseline.
// Keys absent from the form are ignored; with nothing to check it is false.
func IsDirty(state domain.FormState, keys []string) bool {
	for _, key := range keys {
		if field, ok := state.Data[key]; ok && field.Changed() {
			return true
		}
	}
	return false
}

// IsSaveable reports whether every checked field either differs from its
// baseline or has an acceptable baseline. With nothing to check it is true.
func IsSaveable(state domain.FormState, keys []string) bool {
	for _, key := range keys {
		if field, ok := state.Data[key]; ok && !field.Acceptable() {
			return false
		}
	}
	return true
}
