package broker

import (
	"errors"
	"fmt"
	"strings"
)

// Guard errors. The message text is part of the envelope contract, so
// keep it stable.
var (
	// ErrNotAuthenticated is returned when an operation requires an
	// active session and none exists.
	ErrNotAuthenticated = errors.New("Not authenticated")

	// ErrNoActiveSession is returned by Logout when there is nothing to
	// terminate.
	ErrNoActiveSession = errors.New("No active session")
)

// ConfigurationError reports credential fields missing from the process
// configuration. All missing fields are reported at once.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "Missing required API credentials: " + strings.Join(e.Missing, ", ")
}

// AuthenticationError wraps a login rejection or a transport fault during
// login. The remote-provided message is preserved when available.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	return "Authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// InvalidRequestError reports caller input rejected before any remote
// call is made.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return e.Reason }

// OrderRejectedError means the transport call succeeded but the broker
// rejected the trading action. Unlike a TransportError, it is never safe
// to retry.
type OrderRejectedError struct {
	Op     string
	Reason string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

// TransportError is a network or remote-service fault unrelated to
// business logic.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
