package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate resource")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("conflict with current state")
)

// ValidationError rejects a submission before any write, naming the offending rows.
type ValidationError struct {
	Message string
	Rows    []string
}

func (e *ValidationError) Error() string {
	if len(e.Rows) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Rows, ", "))
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid builds a ValidationError.
func Invalid(message string, rows ...string) *ValidationError {
	return &ValidationError{Message: message, Rows: rows}
}

// RowError reports a store failure on one row of a multi-row submission.
// Rows written before it stay written.
type RowError struct {
	Op  string // e.g. "update pulltag", "insert kitting log"
	Ref string // pulltag uid or business key of the failing row
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Ref, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
