package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports one malformed attribute of a form definition.
type ValidationError struct {
	Key    string // Path of the offending attribute, e.g. "fields[2].value"
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError collects every violation found in one document.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err)
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns the violations carried by err, which may be wrapped.
// It returns nil when err holds no AggregateError.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
