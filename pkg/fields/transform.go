package fields

import (
	"sort"

	"github.com/aretw0/formstate/pkg/domain"
)

// TransformInitialData converts a descriptor list into the engine's keyed representation.
// Every field starts with value == initialValue. Duplicate keys silently
// overwrite earlier ones.
func TransformInitialData(descriptors []domain.FieldDescriptor) map[string]domain.FieldState {
	data := make(map[string]domain.FieldState, len(descriptors))
	for _, d := range descriptors {
		data[d.Key] = domain.FieldState{
			Value:            d.Value,
			InitialValue:     d.Value,
			InitialValueIsOk: resolve(d.InitialValueIsOk, false),
		}
	}
	return data
}

// InferDirtyFields returns the keys that take part in the dirty check.
// A field is included unless it explicitly sets CheckForDirty to false.
func InferDirtyFields(descriptors []domain.FieldDescriptor) []string {
	return include(descriptors, func(d domain.FieldDescriptor) *bool { return d.CheckForDirty })
}

// InferSaveableFields returns the keys that take part in the saveable check.
// A field is included unless it explicitly sets CheckForSaveable to false.
func InferSaveableFields(descriptors []domain.FieldDescriptor) []string {
	return include(descriptors, func(d domain.FieldDescriptor) *bool { return d.CheckForSaveable })
}

func include(descriptors []domain.FieldDescriptor, flag func(domain.FieldDescriptor) *bool) []string {
	keys := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if resolve(flag(d), true) {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// resolve implements the three-valued flag check: true, false, or absent (def).
func resolve(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}

// CreateBaseInitialData layers record data onto a static field template, for
// seeding "edit an existing record" forms. Descriptors whose key is present in
// overrides take the override as their value (and therefore their baseline);
// with isEdit they are also marked baseline-acceptable. The base slice is not modified.
func CreateBaseInitialData(base []domain.FieldDescriptor, overrides map[string]domain.Value, isEdit bool) []domain.FieldDescriptor {
	if len(overrides) == 0 {
		return base
	}

	out := make([]domain.FieldDescriptor, len(base))
	for i, d := range base {
		v, ok := overrides[d.Key]
		if !ok {
			out[i] = d
			continue
		}
		d.Value = v
		if isEdit {
			d.InitialValueIsOk = domain.Flag(true)
		}
		out[i] = d
	}
	return out
}

// GetInitialData projects a flat record into descriptors restricted to allowedKeys.
// Every produced descriptor is baseline-acceptable. Output is ordered by key.
func GetInitialData(record map[string]domain.Value, allowedKeys []string) []domain.FieldDescriptor {
	allowed := make(map[string]struct{}, len(allowedKeys))
	for _, k := range allowedKeys {
		allowed[k] = struct{}{}
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		if _, ok := allowed[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]domain.FieldDescriptor, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.FieldDescriptor{
			Key:              k,
			Value:            record[k],
			InitialValueIsOk: domain.Flag(true),
		})
	}
	return out
}

// Values extracts the current value of every field.
func Values(data map[string]domain.FieldState) map[string]domain.Value {
	return domain.FormState{Data: data}.Values()
}
