package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrPhoneMissing      = errors.New("account has no phone number")
	ErrTooSoon           = errors.New("verification code requested too soon")
	ErrDependencyFailure = errors.New("dependency failure")
	ErrLockTimeout       = errors.New("timed out waiting for verification lock")
)

// RetryAfterError is returned when a request must wait before it can succeed.
type RetryAfterError struct {
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrTooSoon, e.RetryAfter.Round(time.Second))
}

func (e *RetryAfterError) Unwrap() error {
	return ErrTooSoon
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below 1.
func (e *RetryAfterError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Error codes rendered in API responses
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeTooSoon           = "TOO_SOON"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
	CodeInternalError     = "INTERNAL_ERROR"
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
		return e.Err.Error()
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
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func TooSoon(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeTooSoon, message, ErrTooSoon)
}

func DependencyFailure(message string, err error) *AppError {
	if err == nil {
		err = ErrDependencyFailure
	}
	return NewAppError(http.StatusBadGateway, CodeDependencyFailure, message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// FromError maps an error returned by a usecase onto an AppError.
func FromError(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "resource not found", err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, "resource already exists", err)
	case errors.Is(err, ErrInvalidPhone):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, "invalid phone number", err)
	case errors.Is(err, ErrPhoneMissing):
		return NewAppError(http.StatusUnprocessableEntity, CodeInvalidInput, "account has no phone number", err)
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrTooSoon):
		return TooSoon("verification code requested too soon")
	case errors.Is(err, ErrDependencyFailure), errors.Is(err, ErrLockTimeout):
		return DependencyFailure("a dependent service is unavailable", err)
	default:
		return InternalError(err)
	}
}
