package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a project id does not exist. Callers match it
// with errors.Is; the HTTP layer maps it to a 404 with a "project not found"
// message.
var ErrNotFound = errors.New("not found")

// ValidationError marks malformed input to a store API. The HTTP layer maps
// it to a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
