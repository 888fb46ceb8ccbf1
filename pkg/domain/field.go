package domain

// FieldDescriptor is the declarative, external description of one form field.
//
// The policy flags are three-valued: nil means the flag was not supplied,
// which is different from an explicit false. See Flag.
type FieldDescriptor struct {
	Key   string `json:"key" yaml:"key" mapstructure:"key"`
	Value Value  `json:"value" yaml:"value" mapstructure:"value"`

	// InitialValueIsOk marks the baseline itself as an acceptable save target
	// (e.g. when editing an existing record). Absent means false.
	InitialValueIsOk *bool `json:"initial_value_is_ok,omitempty" yaml:"initial_value_is_ok,omitempty" mapstructure:"initial_value_is_ok"`

	// CheckForDirty and CheckForSaveable opt the field out of the default
	// subset lists. Absent means included.
	CheckForDirty    *bool `json:"check_for_dirty,omitempty" yaml:"check_for_dirty,omitempty" mapstructure:"check_for_dirty"`
	CheckForSaveable *bool `json:"check_for_saveable,omitempty" yaml:"check_for_saveable,omitempty" mapstructure:"check_for_saveable"`
}

// Flag returns a pointer to b, for filling the optional descriptor flags.
func Flag(b bool) *bool {
	return &b
}

// FieldState is the engine's internal record for a single field.
type FieldState struct {
	Value            Value `json:"value"`
	InitialValue     Value `json:"initial_value"`
	InitialValueIsOk bool  `json:"initial_value_is_ok"`
}

// Changed reports whether the current value differs from the baseline.
func (f FieldState) Changed() bool {
	return f.Value != f.InitialValue
}

// Acceptable reports whether the field satisfies the saveable predicate.
func (f FieldState) Acceptable() bool {
	return f.Changed() || f.InitialValueIsOk
}
