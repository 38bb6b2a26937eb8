package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a failed call to a remote service. Code is the HTTP status, or 0
// when no response was received.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// Reason is the HTTP reason phrase, e.g. "Not Found".
	Reason string
	// Body holds the raw response body text, if any.
	Body string
	URL  string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s error (code %d %s): %s", e.Type, e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// FromStatus builds an Error for a non-success HTTP response.
func FromStatus(code int, body, url string) *Error {
	return &Error{
		Type:    TypeForStatus(code),
		Message: fmt.Sprintf("unexpected status from %s", url),
		Code:    code,
		Reason:  http.StatusText(code),
		Body:    body,
		URL:     url,
	}
}

// Network wraps a transport-level failure.
func Network(url string, err error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: fmt.Sprintf("network error: %v", err),
		URL:     url,
	}
}

// Parsing wraps a decode failure for a response body.
func Parsing(url string, code int, err error) *Error {
	return &Error{
		Type:    ErrorTypeParsing,
		Message: fmt.Sprintf("failed to parse response: %v", err),
		Code:    code,
		URL:     url,
	}
}

// TypeForStatus maps an HTTP status code onto an ErrorType.
func TypeForStatus(code int) ErrorType {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrorTypeAuth
	case code == http.StatusNotFound:
		return ErrorTypeNotFound
	case code == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case code >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// As reports whether err is, or wraps, an *Error and returns it.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsType reports whether err wraps an *Error of the given type.
func IsType(err error, t ErrorType) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Type == t
}

// HasStatus reports whether err wraps an *Error produced by a non-success
// HTTP response, as opposed to a transport or decode failure.
func HasStatus(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code >= 300 && apiErr.Type != ErrorTypeParsing
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
