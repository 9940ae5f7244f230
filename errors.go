package tdworkflow

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound     = errors.New("tdworkflow: resource not found")
	ErrUnauthorized = errors.New("tdworkflow: unauthorized")
	ErrForbidden    = errors.New("tdworkflow: forbidden")
	ErrConflict     = errors.New("tdworkflow: conflict")
	ErrServer       = errors.New("tdworkflow: server error")
)

// HTTPError is returned when the workflow API answers with any status
// outside 2xx, including a 3xx that net/http did not follow. It supports errors.Is against the sentinel errors above.
type HTTPError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int

	// Message is the server-supplied message, or the raw body when the
	// body is not a JSON error document.
	Message string

	// Method and Path identify the request that failed.
	Method string
	Path   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tdworkflow: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("tdworkflow: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is enables errors.Is matching against sentinel errors.
func (e *HTTPError) Is(target error) bool {
	return target != nil && e.sentinel() == target
}

// Unwrap returns the sentinel error corresponding to the status code.
func (e *HTTPError) Unwrap() error {
	return e.sentinel()
}

func (e *HTTPError) sentinel() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode >= 500:
		return ErrServer
	}
	return nil
}

// ValidationError reports a response body that does not have the shape of
// the expected record, or a request parameter rejected before sending.
type ValidationError struct {
	// Record is the record or operation being validated, e.g. "Project".
	Record string

	// Field is the offending wire field or parameter name, if known.
	Field string

	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tdworkflow: invalid %s: %s", e.Record, e.Message)
	}
	return fmt.Sprintf("tdworkflow: invalid %s.%s: %s", e.Record, e.Field, e.Message)
}

func invalid(record, field, format string, args ...any) *ValidationError {
	return &ValidationError{Record: record, Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsHTTPError extracts an *HTTPError from err.
func AsHTTPError(err error) (*HTTPError, bool) {
	var target *HTTPError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// an HTTP failure.
func StatusCode(err error) int {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.StatusCode
	}
	return 0
}
