package apiclient

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of these so callers classify failures with errors.Is.
var (
	ErrTimeout      = errors.New("apiclient: timeout")
	ErrUnreachable  = errors.New("apiclient: backend unreachable")
	ErrNetwork      = errors.New("apiclient: network failure")
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	ErrForbidden    = errors.New("apiclient: forbidden")
	ErrNotFound     = errors.New("apiclient: not found")
	ErrServer       = errors.New("apiclient: server error")
	ErrHTTPStatus   = errors.New("apiclient: unexpected status")
	ErrApplication  = errors.New("apiclient: application error")
	ErrNoData       = errors.New("apiclient: empty payload")
	ErrDecode       = errors.New("apiclient: malformed payload")
)

const (
	msgUnauthorized = "Authentication failed. Please check your credentials."
	msgForbidden    = "Access forbidden. You do not have permission to access this resource."
	msgNotFound     = "Resource not found."
	msgServer       = "Server error. Please try again later."
	msgNoData       = "No data received from server"
	msgDecode       = "Invalid response received from server"
	msgNetwork      = "Network error. Please check your internet connection."
	msgDeadline     = "Request timeout. The caller's deadline expired before the API answered."
)

// Error is returned by every Client call that fails. Message is meant for display.
type Error struct {
	Kind     error
	Status   int
	Endpoint string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying transport or decode error.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// HTTPStatus is the backend status code, or 0 for transport failures.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Detail renders the error with its endpoint and status for logs.
func (e *Error) Detail() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s (status %d)", e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("%s %s", e.Endpoint, e.Message)
}

func newError(kind error, endpoint string, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Endpoint: endpoint, Message: message, cause: cause}
}

// MessageOf returns the display message of err, or its plain text for foreign errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
