// Package sync owns the push-channel connection: it delivers
// authoritative queue snapshots to the application and forwards user
// commands to the server.
package sync

// Phase represents the connection lifecycle phase.
type Phase int

const (
	PhaseDisconnected Phase = iota // No connection, reconnect pending
	PhaseConnecting                // Dial in progress
	PhaseConnected                 // Channel open, join announced
	PhaseExhausted                 // Retry budget spent, manual retry required
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}
