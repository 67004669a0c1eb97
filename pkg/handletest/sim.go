// Package handletest provides an in-memory fake of the handle contract for
// tests: a znode tree that plays the ensemble, plus handles with a scriptable
// connection state machine and direct event injection.
package handletest

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mikekulinski/zkconn/pkg/handle"
	"github.com/mikekulinski/zkconn/pkg/watch"
)

// Ensemble stands in for a ZooKeeper cluster. It owns the shared znode tree
// and hands out one SimHandle per provider invocation, so tests can inspect
// every handle a connection ever created.
type Ensemble struct {
	tree *Tree

	mu          sync.Mutex
	handles     []*SimHandle
	nextSession int64
	connectErr  error
}

func NewEnsemble() *Ensemble {
	return &Ensemble{tree: NewTree()}
}

// Tree returns the shared znode store.
func (e *Ensemble) Tree() *Tree {
	return e.tree
}

// Provider returns a handle.Provider backed by this ensemble.
func (e *Ensemble) Provider() handle.Provider {
	return func(host string, sink handle.EventSink) (handle.Handle, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.nextSession++
		passwd := make([]byte, 16)
		_, _ = rand.Read(passwd)

		prefix := ""
		if i := strings.Index(host, "/"); i >= 0 {
			prefix = host[i:]
			// Real deployments provision the chroot node before pointing
			// clients at it; the fake ensemble does the same.
			if err := e.tree.EnsurePath(prefix); err != nil {
				return nil, fmt.Errorf("provisioning chroot [%s]: %w", prefix, err)
			}
		}
		h := &SimHandle{
			ensemble: e,
			prefix:   prefix,
			sink:     sink,
			clientID: handle.ClientID{SessionID: e.nextSession, Passwd: passwd},
			state:    handle.StateConnecting,
			connErr:  e.connectErr,
		}
		e.handles = append(e.handles, h)
		return h, nil
	}
}

// Handles returns every handle created so far, oldest first.
func (e *Ensemble) Handles() []*SimHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*SimHandle, len(e.handles))
	copy(out, e.handles)
	return out
}

// Current returns the most recently created handle.
func (e *Ensemble) Current() *SimHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.handles) == 0 {
		return nil
	}
	return e.handles[len(e.handles)-1]
}

// FailConnects makes every subsequently created handle fail its connect wait
// with err. Pass nil to heal the ensemble.
func (e *Ensemble) FailConnects(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connectErr = err
}

// SimHandle is a fake handle.Handle. Operations run against the ensemble's
// shared tree; connection state is driven by the test.
type SimHandle struct {
	ensemble *Ensemble
	prefix   string
	sink     handle.EventSink
	clientID handle.ClientID

	mu      sync.Mutex
	state   handle.State
	closed  bool
	connErr error
}

func (h *SimHandle) resolve(path string) string {
	if h.prefix == "" {
		return path
	}
	if path == "/" {
		return h.prefix
	}
	return h.prefix + path
}

func (h *SimHandle) Get(path string) ([]byte, *handle.Stat, error) {
	return h.ensemble.tree.Get(h.resolve(path))
}

func (h *SimHandle) Set(path string, data []byte, version int32) (*handle.Stat, error) {
	return h.ensemble.tree.Set(h.resolve(path), data, version)
}

// Create returns the absolute server-side path, chroot prefix included, to
// match the provider-parity behavior the session layer compensates for.
func (h *SimHandle) Create(path string, data []byte, flags int32, acl []handle.ACL) (string, error) {
	return h.ensemble.tree.Create(h.resolve(path), data, flags, acl, h.clientID.SessionID)
}

func (h *SimHandle) Delete(path string, version int32) error {
	return h.ensemble.tree.Delete(h.resolve(path), version)
}

func (h *SimHandle) Exists(path string) (bool, *handle.Stat, error) {
	return h.ensemble.tree.Exists(h.resolve(path))
}

func (h *SimHandle) Children(path string) ([]string, *handle.Stat, error) {
	return h.ensemble.tree.Children(h.resolve(path))
}

func (h *SimHandle) GetACL(path string) ([]handle.ACL, *handle.Stat, error) {
	return h.ensemble.tree.GetACL(h.resolve(path))
}

func (h *SimHandle) SetACL(path string, acl []handle.ACL, version int32) (*handle.Stat, error) {
	return h.ensemble.tree.SetACL(h.resolve(path), acl, version)
}

func (h *SimHandle) Sync(path string) (string, error) {
	return h.resolve(path), nil
}

func (h *SimHandle) ClientID() handle.ClientID {
	return h.clientID
}

func (h *SimHandle) State() handle.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// WaitUntilConnected transitions the handle to connected, or fails with the
// scripted connect error.
func (h *SimHandle) WaitUntilConnected(timeout time.Duration) error {
	h.mu.Lock()
	if h.connErr != nil {
		err := h.connErr
		h.mu.Unlock()
		return err
	}
	if h.closed {
		h.mu.Unlock()
		return fmt.Errorf("zkconn: handle closed while waiting for session")
	}
	h.state = handle.StateConnected
	h.mu.Unlock()

	h.PushSessionEvent(handle.StateConnected)
	return nil
}

func (h *SimHandle) Close() error {
	h.mu.Lock()
	alreadyClosed := h.closed
	sessionID := h.clientID.SessionID
	h.closed = true
	h.state = handle.StateClosed
	h.mu.Unlock()

	if !alreadyClosed {
		h.ensemble.tree.DeleteEphemerals(sessionID)
	}
	return nil
}

func (h *SimHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// SetState forces the connection state without emitting an event.
func (h *SimHandle) SetState(st handle.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = st
}

// Expire kills the session the way the server would: the state flips to
// expired and a session event is posted.
func (h *SimHandle) Expire() {
	h.SetState(handle.StateExpired)
	h.ensemble.tree.DeleteEphemerals(h.clientID.SessionID)
	h.PushSessionEvent(handle.StateExpired)
}

// PushSessionEvent posts a session state-change event onto the queue.
func (h *SimHandle) PushSessionEvent(st handle.State) {
	h.sink.Push(handle.Event{
		Type:      handle.EventSession,
		State:     st,
		RequestID: watch.GlobalRequestID,
	})
}

// PushWatchEvent posts a watch notification. The path is taken verbatim, so
// tests pass the absolute server-side path the way a real handle would.
func (h *SimHandle) PushWatchEvent(t handle.EventType, path string, requestID int64) {
	h.sink.Push(handle.Event{
		Type:      t,
		State:     h.State(),
		Path:      path,
		RequestID: requestID,
	})
}
