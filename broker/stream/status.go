package stream

import "time"

// State is the connection lifecycle state of the streaming service.
type State int

// Connection states. Closed is terminal for a connection: it is entered
// by explicit logout/shutdown, while read errors and remote closes fall
// back to Disconnected.
const (
	Disconnected State = iota
	Connecting
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the streaming service for display.
type Status struct {
	State         string         `json:"state"`
	ConnectedAt   time.Time      `json:"connected_at,omitempty"`
	Uptime        string         `json:"uptime,omitempty"`
	Subscriptions []Subscription `json:"subscriptions,omitempty"`
	CachedTokens  int            `json:"cached_tokens"`
}
