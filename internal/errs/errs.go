package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes failures so callers can decide how to surface them.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// Timeout indicates a fetch exceeded its deadline.
	Timeout
	// Network covers every other fetch-time failure (DNS, refused connection, TLS, bad URL).
	Network
	// MalformedInput indicates a batch or exported result payload failed validation.
	MalformedInput
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Network:
		return "network"
	case MalformedInput:
		return "malformed_input"
	default:
		return "unknown"
	}
}

// AppError pairs a Kind with a message and the underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Malformed builds a MalformedInput error with a formatted message.
func Malformed(format string, args ...any) *AppError {
	return &AppError{Kind: MalformedInput, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of the first AppError in err's chain, or Unknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// Is reports whether err carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
