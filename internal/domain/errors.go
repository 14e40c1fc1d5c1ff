package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FieldViolation describes one rejected input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports caller-supplied data that violates field constraints.
// It always carries at least one violation.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s %s", e.Violations[0].Field, e.Violations[0].Message)
	}
	return fmt.Sprintf("%s %s (invalid fields: %s)",
		e.Violations[0].Field, e.Violations[0].Message, strings.Join(e.Fields(), ", "))
}

// Fields lists the violated field names in report order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Details returns the violations keyed by field.
func (e *ValidationError) Details() map[string]any {
	details := make(map[string]any, len(e.Violations))
	for _, v := range e.Violations {
		details[v.Field] = v.Message
	}
	return details
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Violations: []FieldViolation{{Field: field, Message: message}}}
}

// violations accumulates field failures in the order they are checked.
type violations []FieldViolation

func (v *violations) add(field, message string) {
	*v = append(*v, FieldViolation{Field: field, Message: message})
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: v}
}

// AuthorizationError reports a caller whose role or status does not permit the action.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "not authorized"
	}
	return "not authorized: " + e.Reason
}

// NewAuthorizationError builds an AuthorizationError.
func NewAuthorizationError(reason string) *AuthorizationError {
	return &AuthorizationError{Reason: reason}
}

// StoreUnavailableError wraps a failure of the persistence collaborator.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// NewStoreUnavailableError wraps err, keeping an existing StoreUnavailableError as is.
func NewStoreUnavailableError(op string, err error) error {
	var storeErr *StoreUnavailableError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuthorization reports whether err carries an AuthorizationError.
func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

// IsStoreUnavailable reports whether err carries a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}
