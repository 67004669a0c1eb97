package session

import (
	"github.com/rs/zerolog"

	"github.com/mikekulinski/zkconn/pkg/handle"
)

// State returns the current session state. A closed connection answers
// immediately without touching the handle; "closed" is monotonic until the
// next Reopen, so the unguarded fast path cannot tear.
func (c *Connection) State() handle.State {
	if c.closed.Load() {
		return handle.StateClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.h == nil {
		return handle.StateClosed
	}
	return c.h.State()
}

// predicate evaluates p against the handle state under the lock. A missing
// handle is a valid "not yet connected" answer here, not an error.
func (c *Connection) predicate(p func(handle.State) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() || c.h == nil {
		return false
	}
	return p(c.h.State())
}

// Connected reports whether the session is fully established.
func (c *Connection) Connected() bool {
	return c.predicate(handle.State.Connected)
}

// Connecting reports whether the handle is trying to reach a server.
func (c *Connection) Connecting() bool {
	return c.predicate(handle.State.Connecting)
}

// Associating reports whether the handle is negotiating the session.
func (c *Connection) Associating() bool {
	return c.predicate(handle.State.Associating)
}

// Running reports whether the session is still viable.
func (c *Connection) Running() bool {
	return c.predicate(handle.State.Running)
}

// AssertOpen returns nil when the connection is usable, and otherwise the
// error that says why: the session expired, the connection is not currently
// connected, or the connection was inherited across a fork and has not been
// reopened by this process.
func (c *Connection) AssertOpen() error {
	if err := c.checkFork(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	if c.h == nil {
		return ErrNotConnected
	}
	st := c.h.State()
	if st == handle.StateExpired {
		return ErrSessionExpired
	}
	if !st.Connected() {
		return ErrNotConnected
	}
	return nil
}

// loggingWatcher is the default global watcher: it just records session state
// changes so a connection without a caller-supplied watcher still leaves a
// trail.
type loggingWatcher struct {
	log zerolog.Logger
}

func (w *loggingWatcher) Process(ev handle.Event) {
	w.log.Debug().
		Stringer("type", ev.Type).
		Stringer("state", ev.State).
		Str("path", ev.Path).
		Msg("session event")
}
