package broker

import "errors"

// Envelope is the uniform response shape returned by every bridge
// operation, authenticated or not. The HTTP layer serializes it as-is.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`

	// authFailure marks session-guard failures so the HTTP layer can
	// pick a status code without parsing the message text.
	authFailure bool
}

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessEnvelope wraps a payload in a success envelope.
func SuccessEnvelope(data any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// SuccessMessage wraps a payload in a success envelope with a human-readable message.
func SuccessMessage(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// ErrorEnvelope converts an error into an error envelope.
func ErrorEnvelope(err error) Envelope {
	return Envelope{
		Status:      StatusError,
		Message:     err.Error(),
		authFailure: errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrNoActiveSession),
	}
}

// ErrorMessage builds an error envelope from a plain message.
func ErrorMessage(message string) Envelope {
	return Envelope{Status: StatusError, Message: message}
}

// IsError reports whether the envelope carries an error status.
func (e Envelope) IsError() bool {
	return e.Status == StatusError
}

// AuthFailure reports whether the envelope carries a session-guard
// failure.
func (e Envelope) AuthFailure() bool {
	return e.authFailure
}
