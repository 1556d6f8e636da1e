package client

import (
	"errors"
	"fmt"
)

// ClientError represents the different failure kinds surfaced by Send.
// Responses with non-success HTTP status codes are not errors at this layer;
// only transport-level and protocol-level failures are.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	TransportError        ErrorType = "transport"
	TooManyRedirectsError ErrorType = "too_many_redirects"
	RedirectMissingError  ErrorType = "redirect_location_missing"
	RedirectInvalidError  ErrorType = "redirect_location_invalid"
	RequestBuildError     ErrorType = "request_construction"
	InternalError         ErrorType = "internal"
)

// transportError wraps a failure from the underlying transport
type transportError struct {
	message string
	wrapped error
}

func (e *transportError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("transport error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("transport error: %s", e.message)
}

func (e *transportError) Type() ErrorType {
	return TransportError
}

func (e *transportError) Unwrap() error {
	return e.wrapped
}

// tooManyRedirectsError reports a redirect chain exceeding the configured cap
type tooManyRedirectsError struct {
	url      string
	attempts int
}

func (e *tooManyRedirectsError) Error() string {
	return fmt.Sprintf("too many redirects: gave up after %d attempt(s) at %s", e.attempts, e.url)
}

func (e *tooManyRedirectsError) Type() ErrorType {
	return TooManyRedirectsError
}

// redirectMissingError reports a redirect response without a Location header
type redirectMissingError struct {
	status int
}

func (e *redirectMissingError) Error() string {
	return fmt.Sprintf("redirect location missing: status %d carried no Location header", e.status)
}

func (e *redirectMissingError) Type() ErrorType {
	return RedirectMissingError
}

// redirectInvalidError reports an unparsable Location header value
type redirectInvalidError struct {
	raw string
}

func (e *redirectInvalidError) Error() string {
	return fmt.Sprintf("redirect location invalid: %q", e.raw)
}

func (e *redirectInvalidError) Type() ErrorType {
	return RedirectInvalidError
}

// requestBuildError reports malformed request construction (headers, URI)
type requestBuildError struct {
	message string
	wrapped error
}

func (e *requestBuildError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("request construction error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("request construction error: %s", e.message)
}

func (e *requestBuildError) Type() ErrorType {
	return RequestBuildError
}

func (e *requestBuildError) Unwrap() error {
	return e.wrapped
}

// internalError is a defensive wrapper for unexpected library faults
type internalError struct {
	wrapped error
}

func (e *internalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.wrapped)
}

func (e *internalError) Type() ErrorType {
	return InternalError
}

func (e *internalError) Unwrap() error {
	return e.wrapped
}

// NewTransportError creates a new transport error
func NewTransportError(message string, wrapped error) ClientError {
	return &transportError{
		message: message,
		wrapped: wrapped,
	}
}

// NewTooManyRedirectsError creates an error carrying the last redirecting URL
// and the number of redirects attempted
func NewTooManyRedirectsError(url string, attempts int) ClientError {
	return &tooManyRedirectsError{
		url:      url,
		attempts: attempts,
	}
}

// NewRedirectMissingError creates an error for a redirect status without a
// Location header
func NewRedirectMissingError(status int) ClientError {
	return &redirectMissingError{status: status}
}

// NewRedirectInvalidError creates an error for an unparsable Location value
func NewRedirectInvalidError(raw string) ClientError {
	return &redirectInvalidError{raw: raw}
}

// NewRequestBuildError creates a new request construction error
func NewRequestBuildError(message string, wrapped error) ClientError {
	return &requestBuildError{
		message: message,
		wrapped: wrapped,
	}
}

// NewInternalError wraps an unexpected library fault
func NewInternalError(wrapped error) ClientError {
	return &internalError{wrapped: wrapped}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// TooManyRedirectsDetails extracts the URL and attempt count from a
// too-many-redirects error
func TooManyRedirectsDetails(err error) (url string, attempts int, ok bool) {
	var redirectErr *tooManyRedirectsError
	if errors.As(err, &redirectErr) {
		return redirectErr.url, redirectErr.attempts, true
	}
	return "", 0, false
}
