// Package apperr holds the expected, user-facing failures of shop commands.
// Anything that is not a *CommandError is an infrastructure failure.
package apperr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
)

type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
	StatusUnauthenticated
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	case StatusUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

type CommandError struct {
	Code    StatusCode
	Message string
	// Fields maps a form field to its message; may hold several entries.
	Fields map[string]string
}

func (e *CommandError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(keys, ", "))
}

func NewInvalidArgument(message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: message}
}

// NewFieldError is an invalid-argument error attributed to one form field.
func NewFieldError(field, message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: message, Fields: map[string]string{field: message}}
}

func NewFailedPrecondition(message string) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Message: message}
}

func NewUnauthenticated(message string) *CommandError {
	return &CommandError{Code: StatusUnauthenticated, Message: message}
}

// As reports whether err carries a *CommandError.
func As(err error) (*CommandError, bool) {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
