package session

import "errors"

var (
	// ErrConnectionClosed is returned for operations on a connection that has
	// completed Close. The connection has to be reopened (or rebuilt) first.
	ErrConnectionClosed = errors.New("zkconn: connection is closed")

	// ErrSessionExpired is returned by AssertOpen once the server has expired
	// the session. Only Reopen can recover from this.
	ErrSessionExpired = errors.New("zkconn: session has expired")

	// ErrNotConnected is returned when the session is not currently in the
	// connected state.
	ErrNotConnected = errors.New("zkconn: not connected to the ensemble")

	// ErrInheritedConnection is returned when the connection was created in a
	// different process. A handle carried across a fork shares no valid
	// underlying resources with the child, so the child must call Reopen
	// before doing anything else.
	ErrInheritedConnection = errors.New("zkconn: connection was inherited across a fork and must be reopened")

	// ErrWatcherMismatch is returned when Reopen is given a watcher that
	// differs from the one configured at construction. The default watcher
	// can only be set once; anything else would silently change behavior
	// across reconnects.
	ErrWatcherMismatch = errors.New("zkconn: the default watcher may only be set at construction")
)
