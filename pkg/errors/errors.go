package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies an error class surfaced in the wire envelope.
type Kind string

const (
	KindLotNotFound             Kind = "LotNotFound"
	KindInvalidBin              Kind = "InvalidBin"
	KindInsufficientQuantity    Kind = "InsufficientQuantity"
	KindInsufficientCommitted   Kind = "InsufficientCommitted"
	KindSelectionMismatch       Kind = "SelectionMismatch"
	KindInventoryFrozen         Kind = "InventoryFrozen"
	KindPhysicalCountInProgress Kind = "PhysicalCountInProgress"
	KindNotTransferrable        Kind = "NotTransferrable"
	KindUnauthorized            Kind = "Unauthorized"
	KindContention              Kind = "Contention"
	KindTimeout                 Kind = "Timeout"
	KindSystemError             Kind = "SystemError"
	KindInvariantViolation      Kind = "InvariantViolation"

	// KindValidation covers wire-contract violations (malformed body, zero or
	// over-precise quantity) before any engine rule applies.
	KindValidation Kind = "ValidationError"
)

// Standard sentinel errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal server error")
)

// AppError represents an application error with context
type AppError struct {
	Err        error                  `json:"-"`
	Kind       Kind                   `json:"error"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"-"`
	Context    map[string]interface{} `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry with backoff.
func (e *AppError) Retryable() bool {
	return e.Kind == KindContention || e.Kind == KindTimeout
}

// WithContext attaches envelope context fields (requested/available figures,
// offending bin, and so on).
func (e *AppError) WithContext(ctx map[string]interface{}) *AppError {
	e.Context = ctx
	return e
}

// New creates a new AppError
func New(kind Kind, message string, statusCode int) *AppError {
	return &AppError{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with kind and message
func Wrap(err error, kind Kind, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Kind-specific constructors

func LotNotFound(lotNo, binNo string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Kind:       KindLotNotFound,
		Message:    fmt.Sprintf("lot %s not found in bin %s", lotNo, binNo),
		StatusCode: http.StatusNotFound,
		Context:    map[string]interface{}{"lot_no": lotNo, "bin_no": binNo},
	}
}

func InvalidBin(binNo, location, reason string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Kind:       KindInvalidBin,
		Message:    fmt.Sprintf("bin %q is not valid in location %q: %s", binNo, location, reason),
		StatusCode: http.StatusBadRequest,
		Context:    map[string]interface{}{"bin_no": binNo, "location": location},
	}
}

func InsufficientQuantity(requested, available string) *AppError {
	return &AppError{
		Kind:       KindInsufficientQuantity,
		Message:    fmt.Sprintf("requested %s exceeds available %s", requested, available),
		StatusCode: http.StatusConflict,
		Context:    map[string]interface{}{"requested": requested, "available": available},
	}
}

func InsufficientCommitted(requested, committed string) *AppError {
	return &AppError{
		Kind:       KindInsufficientCommitted,
		Message:    fmt.Sprintf("requested %s exceeds committed %s", requested, committed),
		StatusCode: http.StatusConflict,
		Context:    map[string]interface{}{"requested": requested, "committed": committed},
	}
}

func SelectionMismatch(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Kind:       KindSelectionMismatch,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func InventoryFrozen() *AppError {
	return &AppError{
		Kind:       KindInventoryFrozen,
		Message:    "inventory is frozen; transfers are disabled",
		StatusCode: http.StatusConflict,
	}
}

func PhysicalCountInProgress(itemKey, location string) *AppError {
	return &AppError{
		Kind:       KindPhysicalCountInProgress,
		Message:    fmt.Sprintf("physical count in progress for item %s at %s", itemKey, location),
		StatusCode: http.StatusConflict,
		Context:    map[string]interface{}{"item_key": itemKey, "location": location},
	}
}

func NotTransferrable(itemKey, reason string) *AppError {
	return &AppError{
		Kind:       KindNotTransferrable,
		Message:    fmt.Sprintf("item %s cannot be bin-transferred: %s", itemKey, reason),
		StatusCode: http.StatusConflict,
		Context:    map[string]interface{}{"item_key": itemKey},
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Kind:       KindUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Contention(err error) *AppError {
	return &AppError{
		Err:        err,
		Kind:       KindContention,
		Message:    "row lock not acquired within the lock-wait budget",
		StatusCode: http.StatusConflict,
	}
}

func Timeout(err error) *AppError {
	return &AppError{
		Err:        err,
		Kind:       KindTimeout,
		Message:    "statement timed out",
		StatusCode: http.StatusGatewayTimeout,
	}
}

func System(err error) *AppError {
	return &AppError{
		Err:        err,
		Kind:       KindSystemError,
		Message:    "an unexpected error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

func InvariantViolation(message string) *AppError {
	return &AppError{
		Kind:       KindInvariantViolation,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
