package schema

import (
	"fmt"
	"sort"
)

// Schema is a map of attribute names to their expected types.
type Schema map[string]Type

// Object describes the shape of a decoded document object.
type Object struct {
	Fields   Schema
	Required []string
	// Strict rejects attributes that are not declared in Fields.
	Strict bool
}

// Descriptor is the shape of a single field descriptor.
var Descriptor = Object{
	Fields: Schema{
		"key":                 Key(),
		"value":               Scalar(),
		"initial_value_is_ok": Bool(),
		"check_for_dirty":     Bool(),
		"check_for_saveable":  Bool(),
	},
	Required: []string{"key", "value"},
	Strict:   true,
}

// Definition is the shape of a form definition document, excluding its fields list.
var Definition = Object{
	Fields: Schema{
		"name":                     String(),
		"fields":                   nil, // validated element-wise with Descriptor
		"dirty_fields_to_check":    Slice(Key()),
		"saveable_fields_to_check": Slice(Key()),
	},
	Required: []string{"fields"},
	Strict:   true,
}

// Check validates data against the object shape, prefixing every reported key with path.
func (o Object) Check(path string, data map[string]any) []error {
	var errs []error

	for _, name := range o.Required {
		if _, exists := data[name]; !exists {
			errs = append(errs, &ValidationError{Key: join(path, name), Reason: "required"})
		}
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		typ, declared := o.Fields[name]
		if !declared {
			if o.Strict {
				errs = append(errs, &ValidationError{Key: join(path, name), Reason: "unknown attribute"})
			}
			continue
		}
		if typ == nil {
			continue
		}
		value := data[name]
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: join(path, name), Reason: err.Error(), Value: value})
		}
	}

	return errs
}

// ValidateDescriptors checks every element of an untyped descriptor list.
// It returns an *AggregateError carrying all failures found.
func ValidateDescriptors(raw []any) error {
	if errs := checkDescriptors("", raw); len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateDefinition checks an untyped form definition document.
func ValidateDefinition(raw map[string]any) error {
	errs := Definition.Check("", raw)

	if fields, ok := raw["fields"]; ok {
		list, isList := fields.([]any)
		if !isList {
			errs = append(errs, &ValidationError{Key: "fields", Reason: "expected list", Value: fields})
		} else {
			errs = append(errs, checkDescriptors("fields", list)...)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func checkDescriptors(path string, raw []any) []error {
	var errs []error
	for i, item := range raw {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := asObject(item)
		if !ok {
			errs = append(errs, &ValidationError{Key: itemPath, Reason: "expected object", Value: item})
			continue
		}
		errs = append(errs, Descriptor.Check(itemPath, obj)...)
	}
	return errs
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
