package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a transition references a key that is not part of the form.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidValue is returned when a value is not a string, number, boolean or null.
var ErrInvalidValue = errors.New("invalid field value")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is already taken.
var ErrSessionExists = errors.New("session already exists")

// UnknownFieldError lists the keys a transition referenced but the form does not have.
type UnknownFieldError struct {
	Action ActionType
	Keys   []string
}

func (e *UnknownFieldError) Error() string {
	quoted := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf("%s: %s: %s", e.Action, ErrUnknownField, strings.Join(quoted, ", "))
}

func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}
