package apiclient

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest means the request URL or body could not be built.
// It indicates a programming error rather than a runtime condition.
var ErrInvalidRequest = errors.New("Invalid URL")

// ErrNoResponse means the transport returned neither a response nor an error
var ErrNoResponse = errors.New("No data received")

// TransportError wraps connectivity and timeout failures
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is returned for any non-2xx response
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Server error (HTTP %d)", e.Code)
}

// DecodeError means the response body did not match the expected schema
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to parse response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status from an HTTPError anywhere in err's chain
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, true
	}
	return 0, false
}
