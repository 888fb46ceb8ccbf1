package domain

// StateDiff represents the changes between two form states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// Values contains only the fields whose current value changed.
	Values map[string]Value `json:"values,omitempty"`

	// Baselines contains only the fields whose initial value changed (Reinitialize).
	Baselines map[string]Value `json:"baselines,omitempty"`

	IsDirty    *bool `json:"is_dirty,omitempty"`
	IsSaveable *bool `json:"is_saveable,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *FormState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		Values:    make(map[string]Value),
		Baselines: make(map[string]Value),
	}

	for k, nf := range newState.Data {
		var of FieldState
		var exists bool
		if oldState != nil {
			of, exists = oldState.Data[k]
		}
		if !exists || of.Value != nf.Value {
			diff.Values[k] = nf.Value
		}
		if !exists || of.InitialValue != nf.InitialValue {
			diff.Baselines[k] = nf.InitialValue
		}
	}

	if oldState == nil || oldState.IsDirty != newState.IsDirty {
		diff.IsDirty = &newState.IsDirty
	}
	if oldState == nil || oldState.IsSaveable != newState.IsSaveable {
		diff.IsSaveable = &newState.IsSaveable
	}

	if len(diff.Values) == 0 {
		diff.Values = nil
	}
	if len(diff.Baselines) == 0 {
		diff.Baselines = nil
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Values) == 0 &&
		len(d.Baselines) == 0 &&
		d.IsDirty == nil &&
		d.IsSaveable == nil
}
