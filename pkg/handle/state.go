package handle

import "fmt"

// State is the session state reported by a handle. The numeric values match
// the ones the coordination service's C client uses, so logs line up with what
// operators see from other bindings.
type State int32

const (
	StateClosed      State = 0
	StateConnecting  State = 1
	StateAssociating State = 2
	StateConnected   State = 3
	StateExpired     State = -112
	StateAuthFailed  State = -113
)

// Connected reports whether the session is fully established.
func (s State) Connected() bool {
	return s == StateConnected
}

// Connecting reports whether the handle is trying to reach a server.
func (s State) Connecting() bool {
	return s == StateConnecting
}

// Associating reports whether the handle has a server but is still negotiating
// the session.
func (s State) Associating() bool {
	return s == StateAssociating
}

// Running reports whether the session is still viable, i.e. it has neither
// been closed nor expired.
func (s State) Running() bool {
	return s.Connecting() || s.Associating() || s.Connected()
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateAssociating:
		return "associating"
	case StateConnected:
		return "connected"
	case StateExpired:
		return "expired_session"
	case StateAuthFailed:
		return "auth_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}
