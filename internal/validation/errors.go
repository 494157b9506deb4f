// Package validation carries field-level input errors from the domain
// packages to the HTTP boundary.
package validation

import (
	"errors"
	"sort"
	"strings"
)

// Error carries one message per rejected input field.
type Error struct {
	Scope  string
	Fields map[string]string
}

// New returns an empty error for the given scope ("energy", "directory"...).
func New(scope string) *Error {
	return &Error{Scope: scope}
}

// Field returns an error with a single rejected field.
func Field(scope, field, message string) *Error {
	err := New(scope)
	err.Add(field, message)
	return err
}

// Add records a message for a field, keeping the first one.
func (e *Error) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// Empty reports whether no field was rejected.
func (e *Error) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns nil when no field was rejected.
func (e *Error) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	prefix := "validation failed"
	if e != nil && e.Scope != "" {
		prefix = e.Scope + ": " + prefix
	}
	if e.Empty() {
		return prefix
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return prefix + " (" + strings.Join(parts, "; ") + ")"
}

// As extracts a validation error from an error chain.
func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
