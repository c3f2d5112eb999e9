package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "VALIDATION_FAILED", message, ErrValidation)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "INVALID_STATE", message, ErrInvalidState)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHENTICATED", message, ErrUnauthenticated)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL", "internal server error", err)
}

// FromError maps a domain error onto an AppError. Errors that already are
// AppErrors are returned as-is.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "NOT_FOUND", err.Error(), err)
	case errors.Is(err, ErrInvalidState):
		return NewAppError(http.StatusConflict, "INVALID_STATE", err.Error(), err)
	case errors.Is(err, ErrInsufficientBalance):
		return NewAppError(http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", err.Error(), err)
	case errors.Is(err, ErrValidation):
		return NewAppError(http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, "ALREADY_EXISTS", err.Error(), err)
	case errors.Is(err, ErrUnauthenticated):
		return NewAppError(http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, "FORBIDDEN", err.Error(), err)
	case errors.Is(err, ErrStorageUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "storage temporarily unavailable", err)
	default:
		return InternalError(err)
	}
}
