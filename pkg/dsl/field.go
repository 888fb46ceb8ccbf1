package dsl

import "github.com/aretw0/formstate/pkg/domain"

// FieldBuilder provides a fluent API for configuring a field.
type FieldBuilder struct {
	desc    domain.FieldDescriptor
	builder *Builder

	raw any
	err error
}

// Value sets the initial value from a native Go scalar (string, number, bool or nil).
// An unsupported type is reported by Build.
func (f *FieldBuilder) Value(v any) *FieldBuilder {
	f.raw = v
	f.desc.Value, f.err = domain.ValueOf(v)
	return f
}

// InitialValueIsOk marks the initial value as acceptable for saving.
func (f *FieldBuilder) InitialValueIsOk() *FieldBuilder {
	f.desc.InitialValueIsOk = domain.Flag(true)
	return f
}

// SkipDirty excludes the field from the inferred dirty subset.
func (f *FieldBuilder) SkipDirty() *FieldBuilder {
	f.desc.CheckForDirty = domain.Flag(false)
	return f
}

// SkipSaveable excludes the field from the inferred saveable subset.
func (f *FieldBuilder) SkipSaveable() *FieldBuilder {
	f.desc.CheckForSaveable = domain.Flag(false)
	return f
}

// Field continues with another field of the same form.
func (f *FieldBuilder) Field(key string) *FieldBuilder {
	return f.builder.Field(key)
}

// Done returns to the form builder.
func (f *FieldBuilder) Done() *Builder {
	return f.builder
}

// Build returns the underlying domain.FieldDescriptor.
// This is primarily used by the Builder, but exposed for advanced usage.
func (f *FieldBuilder) Build() domain.FieldDescriptor {
	return f.desc
}
