package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors for foreseeable misuse of the public operations. These
// are returned inside structured results rather than raised to callers.
var (
	// ErrUnknownSolution signals an operation referenced a solution id
	// that is not present in the catalog.
	ErrUnknownSolution = errors.New("unknown solution")
	// ErrSolutionDisabled signals an operation on a disabled solution.
	ErrSolutionDisabled = errors.New("solution is disabled")
	// ErrRetriesExhausted signals a retry sequence ended without a clean fetch.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// ValidationError reports a malformed catalog entry. Fatal at load time.
type ValidationError struct {
	EntryID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("catalog entry %q: %s", e.EntryID, e.Reason)
	}
	return fmt.Sprintf("catalog entry %q: field %s: %s", e.EntryID, e.Field, e.Reason)
}

// NetworkError wraps a fetch-level failure (timeout, connection error).
// The retry controller converts these into retry decisions; they never
// leak past it until attempts are exhausted.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
