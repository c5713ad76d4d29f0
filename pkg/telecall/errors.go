package telecall

import (
	"errors"
	"fmt"
)

// ErrorType categorizes backend API errors.
type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	ErrNotFound       ErrorType = "not_found_error"
	ErrAPI            ErrorType = "api_error"
)

// Error represents a backend API error.
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{Type: ErrInvalidRequest, Message: message}
}

// ErrAutomationBusy is the distinguished toggle refusal: the backend
// reported "not found" while automation was being turned off, meaning an
// autonomous call is still in progress. The local automation state is left
// unchanged when this is returned.
var ErrAutomationBusy = errors.New("automation cannot stop: a call is still in progress")

// TransportError represents transport-level failures (DNS, timeouts,
// connection reset, TLS handshake) while talking to the backend, as
// opposed to a response the backend actually produced.
//
// Use errors.As to distinguish transport failures from API errors
// (*Error).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Op != "" && e.URL != "":
		return fmt.Sprintf("transport error during %s %s: %v", e.Op, e.URL, e.Err)
	case e.Op != "":
		return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
