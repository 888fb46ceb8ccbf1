package domain

import (
	"maps"
	"sort"
	"time"
)

// FormState is the aggregate snapshot owned by an engine.
//
// Snapshots are treated as immutable once published: transitions build a new
// FormState instead of editing Data in place, so a previously returned
// snapshot stays valid for comparison.
type FormState struct {
	Data       map[string]FieldState `json:"data"`
	IsDirty    bool                  `json:"is_dirty"`
	IsSaveable bool                  `json:"is_saveable"`
}

// NewFormState creates a state with both derived flags cleared.
func NewFormState(data map[string]FieldState) FormState {
	if data == nil {
		data = make(map[string]FieldState)
	}
	return FormState{Data: data}
}

// Clone returns a deep copy of the state.
func (s FormState) Clone() FormState {
	out := s
	out.Data = maps.Clone(s.Data)
	if out.Data == nil {
		out.Data = make(map[string]FieldState)
	}
	return out
}

// Values projects the state into a flat key to value mapping,
// dropping baseline and policy metadata.
func (s FormState) Values() map[string]Value {
	values := make(map[string]Value, len(s.Data))
	for k, f := range s.Data {
		values[k] = f.Value
	}
	return values
}

// Keys returns the field keys in sorted order.
func (s FormState) Keys() []string {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key belongs to the form.
func (s FormState) Has(key string) bool {
	_, ok := s.Data[key]
	return ok
}

// FormDefinition is the document form of an engine's construction input.
// A nil subset list means "infer from the descriptors"; an empty, non-nil
// list means "check nothing".
type FormDefinition struct {
	Name                  string            `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Fields                []FieldDescriptor `json:"fields" yaml:"fields" mapstructure:"fields"`
	DirtyFieldsToCheck    []string          `json:"dirty_fields_to_check" yaml:"dirty_fields_to_check" mapstructure:"dirty_fields_to_check"`
	SaveableFieldsToCheck []string          `json:"saveable_fields_to_check" yaml:"saveable_fields_to_check" mapstructure:"saveable_fields_to_check"`
}

// Session is a persisted engine snapshot, as stored by host adapters.
type Session struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name,omitempty"`
	State                 FormState `json:"state"`
	DirtyFieldsToCheck    []string  `json:"dirty_fields_to_check"`
	SaveableFieldsToCheck []string  `json:"saveable_fields_to_check"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.State = s.State.Clone()
	out.DirtyFieldsToCheck = cloneKeys(s.DirtyFieldsToCheck)
	out.SaveableFieldsToCheck = cloneKeys(s.SaveableFieldsToCheck)
	return &out
}

func cloneKeys(keys []string) []string {
	if keys == nil {
		return nil
	}
	return append([]string{}, keys...)
}
