package dsl

import (
	"fmt"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
)

// Builder manages the form construction.
type Builder struct {
	name   string
	fields []*FieldBuilder
	index  map[string]*FieldBuilder

	dirty    []string
	saveable []string
}

// New creates a new form builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]*FieldBuilder),
	}
}

// Field adds a field to the form, in declaration order.
// If the field already exists, it returns the existing builder.
func (b *Builder) Field(key string) *FieldBuilder {
	if fb, ok := b.index[key]; ok {
		return fb
	}
	fb := &FieldBuilder{
		desc:    domain.FieldDescriptor{Key: key},
		builder: b,
	}
	b.fields = append(b.fields, fb)
	b.index[key] = fb
	return fb
}

// DirtyFields overrides the inferred dirty subset. No keys disables the check.
func (b *Builder) DirtyFields(keys ...string) *Builder {
	b.dirty = append([]string{}, keys...)
	return b
}

// SaveableFields overrides the inferred saveable subset. No keys makes the form always saveable.
func (b *Builder) SaveableFields(keys ...string) *Builder {
	b.saveable = append([]string{}, keys...)
	return b
}

// Definition compiles the builder into a form definition document.
func (b *Builder) Definition() (domain.FormDefinition, error) {
	def := domain.FormDefinition{
		Name:                  b.name,
		Fields:                make([]domain.FieldDescriptor, 0, len(b.fields)),
		DirtyFieldsToCheck:    b.dirty,
		SaveableFieldsToCheck: b.saveable,
	}

	var errs []error
	for i, fb := range b.fields {
		if fb.desc.Key == "" {
			errs = append(errs, &schema.ValidationError{Key: fmt.Sprintf("fields[%d].key", i), Reason: "required"})
		}
		if fb.err != nil {
			errs = append(errs, &schema.ValidationError{Key: fmt.Sprintf("fields[%d].value", i), Reason: fb.err.Error(), Value: fb.raw})
		}
		def.Fields = append(def.Fields, fb.desc)
	}
	if len(errs) > 0 {
		return domain.FormDefinition{}, &schema.AggregateError{Errors: errs}
	}
	return def, nil
}

// Build compiles the builder into a live form.
func (b *Builder) Build(opts ...formstate.Option) (*formstate.Form, error) {
	def, err := b.Definition()
	if err != nil {
		return nil, fmt.Errorf("failed to build form %q: %w", b.name, err)
	}
	return formstate.FromDefinition(def, opts...)
}
