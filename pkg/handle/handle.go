package handle

import "time"

//go:generate mockgen -destination=mocks/handle_mock.go -package=mock_handle github.com/mikekulinski/zkconn/pkg/handle Handle

// Handle is the synchronous surface of one ZooKeeper session. A handle is bound
// to a single session for its whole life: when the session dies the handle is
// thrown away and a new one is constructed, it is never repaired in place.
// Implementations are expected to block the calling goroutine for the duration
// of each RPC. The session layer serializes callers on top of this, so a handle
// never sees two concurrent RPCs from the same connection.
type Handle interface {
	// Get returns the data and metadata of the znode at path.
	Get(path string) ([]byte, *Stat, error)
	// Set writes data to the znode at path if version matches the current
	// version of the znode (or version is -1).
	Set(path string, data []byte, version int32) (*Stat, error)
	// Create creates a znode at path and returns the name the server picked.
	// Note that the returned path is the absolute server-side path. If the
	// session is chrooted, the chroot prefix is still embedded in it.
	Create(path string, data []byte, flags int32, acl []ACL) (string, error)
	// Delete deletes the znode at path if version matches.
	Delete(path string, version int32) error
	// Exists reports whether the znode at path exists.
	Exists(path string) (bool, *Stat, error)
	// Children returns the names of the children of the znode at path.
	Children(path string) ([]string, *Stat, error)
	// GetACL returns the ACL set on the znode at path.
	GetACL(path string) ([]ACL, *Stat, error)
	// SetACL replaces the ACL on the znode at path if version matches the
	// ACL version of the znode.
	SetACL(path string, acl []ACL, version int32) (*Stat, error)
	// Sync flushes the channel between this client and the leader for the
	// given path, so subsequent reads see all writes that preceded the sync.
	Sync(path string) (string, error)

	// ClientID returns the session id and password for this session. The
	// binding may not expose the password, in which case it is empty.
	ClientID() ClientID
	// State returns the current session state.
	State() State
	// WaitUntilConnected blocks until the session reaches the connected
	// state, or fails once timeout has elapsed.
	WaitUntilConnected(timeout time.Duration) error
	// Close tears down the session. Safe to call more than once.
	Close() error
	// Closed reports whether Close has been called on this handle.
	Closed() bool
}

// EventSink receives the session and watch events a handle produces. The
// connection's event queue implements this; handles never see the queue type
// directly so they can be constructed against any sink in tests.
type EventSink interface {
	Push(Event)
}

// Provider constructs a new handle bound to the given host string, posting its
// events into sink. A provider is invoked once per reopen cycle.
type Provider func(host string, sink EventSink) (Handle, error)
