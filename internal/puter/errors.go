package puter

import (
	"errors"
	"fmt"
)

// ErrEmptyConversation is returned when a chat call is made with an
// empty message list. No request is sent in that case.
var ErrEmptyConversation = errors.New("conversation is empty")

// ErrNoToken is returned when no token is configured and temporary
// guest authentication is disabled.
var ErrNoToken = errors.New("auth token is required: provide Token or enable AllowTempGuest")

// TransportError wraps a network-level failure reaching the backend.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError is returned when the backend answers with a non-2xx
// status. Body carries the response body for diagnosis.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, body)
}

// DriverError is returned when the driver call itself reports failure
// (HTTP 200 with success=false in the envelope).
type DriverError struct {
	Code    string
	Message string
	Raw     string
}

func (e *DriverError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("driver error %s: %s", e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("driver error: %s", e.Code)
	case e.Message != "":
		return fmt.Sprintf("driver error: %s", e.Message)
	default:
		return fmt.Sprintf("driver error: %s", e.Raw)
	}
}
