package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Billing (BIL) ----

func ErrInvoiceNotFound(id int64) *AppError {
	return New("BIL_001", fmt.Sprintf("Invoice %d not found", id), http.StatusNotFound)
}

func ErrCustomerNotFound(id int64) *AppError {
	return New("BIL_002", fmt.Sprintf("Customer %d not found", id), http.StatusNotFound)
}

func ErrInvalidInvoiceStatus(status string) *AppError {
	return New("BIL_003", fmt.Sprintf("Invalid invoice status %q", status), http.StatusBadRequest)
}

func ErrRunInProgress() *AppError {
	return New("BIL_004", "A billing run is already in progress", http.StatusConflict)
}

func ErrNotReenrollable(id int64) *AppError {
	return New("BIL_005", fmt.Sprintf("Invoice %d is not eligible for re-enrollment", id), http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrQueueError(err error) *AppError {
	return Wrap("SYS_002", "Billing queue error", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a BIL_003-style validation error.
func Validation(message string) *AppError {
	return New("BIL_003", message, http.StatusBadRequest)
}
