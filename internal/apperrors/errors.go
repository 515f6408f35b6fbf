package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidTransition indicates a reconciliation status change the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConcurrencyConflict indicates that another worker holds the goal being processed.
// Callers may retry with the same offset.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrPersistence indicates that the storage layer failed to read or commit data.
var ErrPersistence = errors.New("persistence failure")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports server-side AppErrors as persistence failures.
func (e *AppError) Is(target error) bool {
	return target == ErrPersistence && e.Code >= 500
}

// Result codes reported in batch error lists.
const (
	KindValidation          = "VALIDATION"
	KindNotFound            = "NOT_FOUND"
	KindInvalidTransition   = "INVALID_TRANSITION"
	KindConcurrencyConflict = "CONCURRENCY_CONFLICT"
	KindPersistenceFailure  = "PERSISTENCE_FAILURE"
)

// Kind classifies err into one of the result codes. Unknown errors are
// reported as persistence failures since they surface from the storage path.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	default:
		return KindPersistenceFailure
	}
}
