package lbcsapi

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType is the category of a failed call to a wall controller.
type ErrorType int

const (
	// ErrTypeNetwork is a transport failure not covered by a more specific type
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout is a request that did not complete in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused means nothing is listening at the server address
	ErrTypeConnectionRefused
	// ErrTypeDNS is a host name that did not resolve
	ErrTypeDNS
	// ErrTypeHTTP is a non-2xx response
	ErrTypeHTTP
	// ErrTypeParse is a response body that could not be decoded
	ErrTypeParse
	// ErrTypeRequest is a request that could not be built (bad base URL, bad input)
	ErrTypeRequest
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeRequest:
		return "Request Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError is returned by every Client call that fails.
type APIError struct {
	Type       ErrorType
	Op         string // "state", "setLed", "resetState", "clear", "watch"
	Message    string
	StatusCode int // HTTP status for ErrTypeHTTP
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (caused by: %v)", e.Op, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyTransportError narrows a transport error to a specific type.
func classifyTransportError(op string, err error) *APIError {
	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &APIError{Type: ErrTypeTimeout, Op: op, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{Type: ErrTypeDNS, Op: op, Message: fmt.Sprintf("cannot resolve %s", dnsErr.Name), Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &APIError{Type: ErrTypeConnectionRefused, Op: op, Message: "server refused connection", Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && urlErr.Err != err {
		return classifyTransportError(op, urlErr.Err)
	}

	return &APIError{Type: ErrTypeNetwork, Op: op, Message: "request failed", Err: err}
}

func newHTTPError(op string, status int, body string) *APIError {
	msg := fmt.Sprintf("unexpected status %d", status)
	if body != "" {
		msg += ": " + body
	}
	return &APIError{Type: ErrTypeHTTP, Op: op, Message: msg, StatusCode: status}
}

func newParseError(op string, err error) *APIError {
	return &APIError{Type: ErrTypeParse, Op: op, Message: "malformed response", Err: err}
}

func newRequestError(op, message string, err error) *APIError {
	return &APIError{Type: ErrTypeRequest, Op: op, Message: message, Err: err}
}

func typeOf(err error) (ErrorType, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type, true
	}
	return 0, false
}

// IsNetworkError reports a transport-level failure (including timeouts,
// refused connections and DNS failures).
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout || t == ErrTypeConnectionRefused || t == ErrTypeDNS)
}

// IsHTTPError reports a non-2xx response.
func IsHTTPError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeHTTP
}

// IsParseError reports an undecodable response.
func IsParseError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeParse
}

// GetShortErrorMessage returns a one-line description suitable for a toast.
func GetShortErrorMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return "Wall server not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Wall server refused connection - is it running?"
	case ErrTypeDNS:
		return "Cannot resolve wall server address"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Wall server error (HTTP %d)", apiErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse wall server response"
	default:
		return apiErr.Message
	}
}
