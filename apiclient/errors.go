package apiclient

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the backend. Message carries the
// server-provided explanation when the envelope had one, with a generic
// fallback otherwise.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// TransportError wraps a network-level failure (timeout, refused
// connection, DNS). These are retryable; the request may never have
// reached the server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether an error is worth retrying: transport
// failures and 5xx/429 responses. 4xx rejections are final.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status >= 500 || ae.Status == 429
	}
	return false
}

// StatusOf extracts the HTTP status from an error, or 0 for transport
// failures.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
