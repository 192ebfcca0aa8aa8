package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeServerError  ErrorType = "server_error"
	ErrorTypePrecondition ErrorType = "precondition"
	ErrorTypeFilesystem   ErrorType = "filesystem"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error is a typed error carrying an optional HTTP status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrNotLoggedIn is returned when an operation needs an authenticated client
	ErrNotLoggedIn = &Error{Type: ErrorTypePrecondition, Message: "not logged in"}

	// ErrRunInProgress is returned when a download run is already active
	ErrRunInProgress = &Error{Type: ErrorTypePrecondition, Message: "a download is already running"}
)

// New creates a typed error
func New(t ErrorType, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

// Wrap creates a typed error around a cause, keeping its status code
func Wrap(t ErrorType, msg string, err error) *Error {
	if err == nil {
		return &Error{Type: t, Message: msg}
	}
	return &Error{Type: t, Message: fmt.Sprintf("%s: %v", msg, err), Code: StatusCode(err), Err: err}
}

// FromStatus maps a non-success HTTP status code to a typed error
func FromStatus(code int, url string) *Error {
	msg := fmt.Sprintf("unexpected status %d for %s", code, url)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &Error{Type: ErrorTypeAuth, Message: msg, Code: code}
	case code == http.StatusNotFound:
		return &Error{Type: ErrorTypeNotFound, Message: msg, Code: code}
	case code == http.StatusTooManyRequests:
		return &Error{Type: ErrorTypeRateLimit, Message: msg, Code: code}
	case code >= 500:
		return &Error{Type: ErrorTypeServerError, Message: msg, Code: code}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: msg, Code: code}
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0, http.StatusTooManyRequests:
		return true
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	default:
		return statusCode >= 500
	}
}
