// Package domain defines the core types, ports, and errors of the dashboard.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthenticationFailedError indicates missing, invalid, or expired warehouse
// credentials. It is fatal for the session: no data can be shown.
type AuthenticationFailedError struct {
	Message string
	Err     error
}

func (e *AuthenticationFailedError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AuthenticationFailedError) Unwrap() error { return e.Err }

// SourceUnavailableError indicates the network or warehouse service failed
// while fetching data.
type SourceUnavailableError struct {
	Message string
	Err     error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// InvalidColumnError is a contract violation: an operation named a column
// that is not part of the table schema.
type InvalidColumnError struct {
	Column  string
	Columns []string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("column %q not in table schema %v", e.Column, e.Columns)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrAuthenticationFailed wraps err as an AuthenticationFailedError.
func ErrAuthenticationFailed(err error, format string, args ...interface{}) *AuthenticationFailedError {
	return &AuthenticationFailedError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrSourceUnavailable wraps err as a SourceUnavailableError.
func ErrSourceUnavailable(err error, format string, args ...interface{}) *SourceUnavailableError {
	return &SourceUnavailableError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrInvalidColumn creates an InvalidColumnError for column against the given schema.
func ErrInvalidColumn(column string, columns []string) *InvalidColumnError {
	return &InvalidColumnError{Column: column, Columns: append([]string(nil), columns...)}
}
