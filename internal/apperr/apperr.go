// Package apperr defines the error taxonomy shared by the auth, api and app
// layers. Every error surfaced to the user is one of these four types; none
// of them is fatal to the process.
package apperr

import "fmt"

// AuthError reports a failure from the identity provider with a
// human-readable cause.
type AuthError struct {
	// Code is the raw provider error code (e.g. "EMAIL_EXISTS"), empty for
	// transport-level provider failures.
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing or malformed required input. It is
// always raised locally, before any request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError reports that a request failed or the backend was unreachable.
type NetworkError struct {
	// Op names the logical operation, e.g. "get-interview-data".
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError reports that the backend answered with an explicit error
// payload (e.g. an unknown company).
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Validation builds a ValidationError.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Network wraps err as a NetworkError for the given operation.
func Network(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}
