// Package errors provides sentinel and structured errors for modship.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DetailError captures structured error information for user-facing output.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path the error refers to (optional).
	Location string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Context[k])
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// MissingVariableError reports a placeholder in a template that has no value
// in the variable set.
type MissingVariableError struct {
	// File is the template path relative to its resource root.
	File string

	// Variable is the placeholder name without the ${} delimiters.
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s: template references unknown variable ${%s}", e.File, e.Variable)
}

// Unwrap returns ErrMissingVariable.
func (e *MissingVariableError) Unwrap() error {
	return ErrMissingVariable
}

// ChannelError is a channel-local publish failure. Kind is one of
// ErrAuth, ErrRegistryRejected, ErrUploadRejected or ErrTimeout.
type ChannelError struct {
	Channel string
	Kind    error

	// StatusCode is the HTTP status returned by the remote, zero if none.
	StatusCode int

	// Message is the remote's explanation, truncated.
	Message string

	Cause error
}

func (e *ChannelError) Error() string {
	var b strings.Builder
	b.WriteString(e.Channel)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ChannelError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewChannelError creates a ChannelError of the given kind.
func NewChannelError(channel string, kind error, cause error) *ChannelError {
	return &ChannelError{Channel: channel, Kind: kind, Cause: cause}
}

// Kind returns the taxonomy name of err: MissingVariable, AuthError,
// RegistryRejected, UploadRejected, Timeout, or Error when unclassified.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingVariable):
		return "MissingVariable"
	case errors.Is(err, ErrAuth):
		return "AuthError"
	case errors.Is(err, ErrRegistryRejected):
		return "RegistryRejected"
	case errors.Is(err, ErrUploadRejected):
		return "UploadRejected"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	default:
		return "Error"
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
