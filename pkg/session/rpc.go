package session

import (
	"fmt"
	"time"

	"github.com/mikekulinski/zkconn/pkg/handle"
)

// checkFork is the guard clause at the top of every state-mutating entry
// point. A connection inherited across a fork is poisoned until the child
// explicitly reopens it.
func (c *Connection) checkFork() error {
	if !c.guard.Forked() {
		return nil
	}
	return fmt.Errorf("%w (owner pid %d)", ErrInheritedConnection, c.guard.OwnerPID())
}

// guarded runs fn against the current handle with the connection lock held.
// At most one guarded call executes at any instant across all goroutines of
// one Connection; the lock is held for the full duration of the underlying
// blocking call. Coarse, but the handle dispatches its own callbacks from a
// single thread anyway, so finer-grained in-flight tracking buys nothing.
func (c *Connection) guarded(fn func(h handle.Handle) error) error {
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
	return fn(c.h)
}

// Get returns the data and metadata of the znode at path.
func (c *Connection) Get(path string) ([]byte, *handle.Stat, error) {
	var data []byte
	var st *handle.Stat
	err := c.guarded(func(h handle.Handle) error {
		var err error
		data, st, err = h.Get(path)
		return err
	})
	return data, st, err
}

// Set writes data to the znode at path if version matches.
func (c *Connection) Set(path string, data []byte, version int32) (*handle.Stat, error) {
	var st *handle.Stat
	err := c.guarded(func(h handle.Handle) error {
		var err error
		st, err = h.Set(path, data, version)
		return err
	})
	return st, err
}

// Create creates a znode and returns its name. Unlike the other delegated
// operations the returned path is rewritten: the handle reports the absolute
// server-side path with the chroot prefix embedded, and callers of a chrooted
// connection expect paths relative to their namespace.
func (c *Connection) Create(path string, data []byte, flags int32, acl []handle.ACL) (string, error) {
	var created string
	err := c.guarded(func(h handle.Handle) error {
		var err error
		created, err = h.Create(path, data, flags, acl)
		return err
	})
	if err != nil {
		return "", err
	}
	return c.rewriter.Strip(created), nil
}

// Delete deletes the znode at path if version matches.
func (c *Connection) Delete(path string, version int32) error {
	return c.guarded(func(h handle.Handle) error {
		return h.Delete(path, version)
	})
}

// Exists reports whether the znode at path exists.
func (c *Connection) Exists(path string) (bool, *handle.Stat, error) {
	var exists bool
	var st *handle.Stat
	err := c.guarded(func(h handle.Handle) error {
		var err error
		exists, st, err = h.Exists(path)
		return err
	})
	return exists, st, err
}

// Children returns the names of the children of the znode at path.
func (c *Connection) Children(path string) ([]string, *handle.Stat, error) {
	var children []string
	var st *handle.Stat
	err := c.guarded(func(h handle.Handle) error {
		var err error
		children, st, err = h.Children(path)
		return err
	})
	return children, st, err
}

// GetACL returns the ACL set on the znode at path.
func (c *Connection) GetACL(path string) ([]handle.ACL, *handle.Stat, error) {
	var acl []handle.ACL
	var st *handle.Stat
	err := c.guarded(func(h handle.Handle) error {
		var err error
		acl, st, err = h.GetACL(path)
		return err
	})
	return acl, st, err
}

// SetACL replaces the ACL on the znode at path if version matches.
func (c *Connection) SetACL(path string, acl []handle.ACL, version int32) (*handle.Stat, error) {
	var st *handle.Stat
	err := c.guarded(func(h handle.Handle) error {
		var err error
		st, err = h.SetACL(path, acl, version)
		return err
	})
	return st, err
}

// Sync flushes the channel between this client and the leader for path.
func (c *Connection) Sync(path string) (string, error) {
	var out string
	err := c.guarded(func(h handle.Handle) error {
		var err error
		out, err = h.Sync(path)
		return err
	})
	return out, err
}

// ClientID returns the session id and password of the current session.
func (c *Connection) ClientID() (handle.ClientID, error) {
	var cid handle.ClientID
	err := c.guarded(func(h handle.Handle) error {
		cid = h.ClientID()
		return nil
	})
	return cid, err
}

// SessionID returns the id of the current session.
func (c *Connection) SessionID() (int64, error) {
	cid, err := c.ClientID()
	return cid.SessionID, err
}

// SessionPasswd returns the password of the current session. It may be empty
// when the underlying binding does not expose it.
func (c *Connection) SessionPasswd() ([]byte, error) {
	cid, err := c.ClientID()
	return cid.Passwd, err
}

// WaitUntilConnected blocks until the current handle reports a connected
// session or timeout elapses. Note that this holds the connection lock while
// waiting, like every other delegated operation.
func (c *Connection) WaitUntilConnected(timeout time.Duration) error {
	return c.guarded(func(h handle.Handle) error {
		return h.WaitUntilConnected(timeout)
	})
}
