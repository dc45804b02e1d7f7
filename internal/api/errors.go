package api

import (
	"errors"
	"fmt"
)

// ValidationError marks a client-side pre-check failure. No network call is
// made for a draft that fails validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// TransportError wraps a failure to get any response from the server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("no response from server: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response carrying the server's error message.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

// AuthError is a 401/403 response. Callers should treat it as a signal that
// the session is no longer valid.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("not authorized (%d)", e.Status)
	}
	return e.Message
}

// Message extracts a human-readable message for notifications, preferring
// the server-provided text and falling back to a generic one.
func Message(err error, fallback string) string {
	var srv *ServerError
	if errors.As(err, &srv) && srv.Message != "" {
		return srv.Message
	}
	var auth *AuthError
	if errors.As(err, &auth) {
		if auth.Message != "" {
			return auth.Message
		}
		return "session expired, please log in again"
	}
	var val *ValidationError
	if errors.As(err, &val) {
		return val.Error()
	}
	var tr *TransportError
	if errors.As(err, &tr) {
		return fallback + ": no response from server"
	}
	if fallback == "" {
		return err.Error()
	}
	return fallback
}
