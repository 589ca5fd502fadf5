package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of an error
type ErrorType uint

const (
	// ErrorTypeUnknown represents an unknown error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidArgument represents a request that cannot be decoded or is out of bounds
	ErrorTypeInvalidArgument
	// ErrorTypeNotFound represents a not found error
	ErrorTypeNotFound
	// ErrorTypeTimeout represents a deadline or cancellation
	ErrorTypeTimeout
	// ErrorTypeUnavailable represents a downstream dependency that is not reachable
	ErrorTypeUnavailable
	// ErrorTypeInternal represents an internal error
	ErrorTypeInternal
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeInvalidArgument:
		return "invalid_argument"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeUnavailable:
		return "unavailable"
	case ErrorTypeInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new error with the given message
func New(message string) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: message,
	}
}

// Newf creates a new error with the given format and arguments
func Newf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a message, keeping the type of the wrapped error
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:    TypeOf(err),
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithType wraps err so that it reports errType
func WithType(err error, errType ErrorType) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Type: errType,
		Err:  err,
	}
}

// TypeOf returns the type of the outermost AppError in err's chain. Context
// cancellation and deadlines map to ErrorTypeTimeout.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	return ErrorTypeUnknown
}

// HTTPStatus maps err to the status code a handler should answer with
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// InvalidArgument creates a new InvalidArgument error
func InvalidArgument(message string) error {
	return &AppError{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
	}
}

// InvalidArgumentf creates a new InvalidArgument error with a formatted message
func InvalidArgumentf(format string, args ...interface{}) error {
	return InvalidArgument(fmt.Sprintf(format, args...))
}

// NotFound creates a new NotFound error
func NotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// Unavailable creates a new Unavailable error
func Unavailable(message string) error {
	return &AppError{
		Type:    ErrorTypeUnavailable,
		Message: message,
	}
}

// Internal creates a new Internal error
func Internal(message string) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}
