package schema

import (
	"fmt"

	"github.com/aretw0/formstate/pkg/domain"
)

// Type defines the contract for attribute validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "bool").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates string values.
type StringType struct {
	NonEmpty bool
}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if t.NonEmpty && s == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// ScalarType accepts anything domain.ValueOf accepts: null, string, number or bool.
type ScalarType struct{}

func (t *ScalarType) Name() string { return "scalar" }

func (t *ScalarType) Validate(value any) error {
	if _, err := domain.ValueOf(value); err != nil {
		return fmt.Errorf("expected string, number, bool or null, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	Elem Type
}

func (t *SliceType) Name() string { return "[" + t.Elem.Name() + "]" }

func (t *SliceType) Validate(value any) error {
	switch items := value.(type) {
	case nil:
		return nil
	case []string:
		for i, item := range items {
			if err := t.Elem.Validate(item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	case []any:
		for i, item := range items {
			if err := t.Elem.Validate(item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("expected list, got %T", value)
	}
}

// String returns a string type.
func String() Type { return &StringType{} }

// Key returns a non-empty string type.
func Key() Type { return &StringType{NonEmpty: true} }

// Bool returns a boolean type.
func Bool() Type { return &BoolType{} }

// Scalar returns the field-value type.
func Scalar() Type { return &ScalarType{} }

// Slice returns a list type of the given element type.
func Slice(elem Type) Type { return &SliceType{Elem: elem} }
