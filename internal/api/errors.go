package api

import "fmt"

// AuthError means the server refused the credentials or the token. Outside
// an explicit login attempt this always resolves to a forced logout.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication failed"
	}
	return "authentication failed: " + e.Reason
}

// ValidationError is a client-detectable input problem that never reached
// the server (password confirmation mismatch, non-numeric threshold).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// NetworkError is a transport-level failure. No automatic retry happens at
// this layer.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejection is a non-2xx response carrying a server-supplied message,
// surfaced verbatim to the operator.
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request rejected with status %d", e.Status)
}
