// Package zkhandle provides the real handle.Provider, backed by the native
// go-zookeeper binding. The binding has no chroot support of its own, so the
// adapter prefixes outbound paths with the chroot derived from the host
// string. Returned paths keep the prefix; stripping them is the session
// layer's job.
package zkhandle

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/rs/zerolog"

	"github.com/mikekulinski/zkconn/pkg/handle"
	"github.com/mikekulinski/zkconn/pkg/watch"
)

// statePollInterval is how often WaitUntilConnected re-checks the binding
// state while blocking.
const statePollInterval = 50 * time.Millisecond

// NewProvider returns a handle.Provider that dials the ensemble through the
// native binding, requesting the given session timeout.
func NewProvider(log zerolog.Logger, sessionTimeout time.Duration) handle.Provider {
	return func(host string, sink handle.EventSink) (handle.Handle, error) {
		return Connect(host, sink, log, sessionTimeout)
	}
}

// Handle adapts one *zk.Conn to the handle.Handle contract.
type Handle struct {
	conn   *zk.Conn
	prefix string
	closed atomic.Bool
}

// Connect dials the servers named by host and posts every session and watch
// event the binding produces into sink.
func Connect(host string, sink handle.EventSink, log zerolog.Logger, sessionTimeout time.Duration) (*Handle, error) {
	servers, prefix := splitHost(host)
	conn, _, err := zk.Connect(
		servers,
		sessionTimeout,
		zk.WithEventCallback(func(ev zk.Event) {
			sink.Push(convertEvent(ev))
		}),
		zk.WithLogger(printf{log: log}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to [%s]: %w", host, err)
	}
	return &Handle{conn: conn, prefix: prefix}, nil
}

// splitHost separates the comma-separated server list from the chroot suffix.
func splitHost(host string) (servers []string, prefix string) {
	if i := strings.Index(host, "/"); i >= 0 {
		prefix = host[i:]
		host = host[:i]
	}
	return strings.Split(host, ","), prefix
}

// resolve maps a caller path into the chrooted namespace.
func (h *Handle) resolve(path string) string {
	if h.prefix == "" {
		return path
	}
	if path == "/" {
		return h.prefix
	}
	return h.prefix + path
}

func (h *Handle) Get(path string) ([]byte, *handle.Stat, error) {
	data, st, err := h.conn.Get(h.resolve(path))
	return data, convertStat(st), err
}

func (h *Handle) Set(path string, data []byte, version int32) (*handle.Stat, error) {
	st, err := h.conn.Set(h.resolve(path), data, version)
	return convertStat(st), err
}

func (h *Handle) Create(path string, data []byte, flags int32, acl []handle.ACL) (string, error) {
	created, err := h.conn.Create(h.resolve(path), data, flags, convertACLsOut(acl))
	if err != nil {
		return "", err
	}
	// The absolute server-side path, chroot prefix included. See the package
	// comment: the session layer strips it.
	return created, nil
}

func (h *Handle) Delete(path string, version int32) error {
	return h.conn.Delete(h.resolve(path), version)
}

func (h *Handle) Exists(path string) (bool, *handle.Stat, error) {
	exists, st, err := h.conn.Exists(h.resolve(path))
	return exists, convertStat(st), err
}

func (h *Handle) Children(path string) ([]string, *handle.Stat, error) {
	children, st, err := h.conn.Children(h.resolve(path))
	return children, convertStat(st), err
}

func (h *Handle) GetACL(path string) ([]handle.ACL, *handle.Stat, error) {
	acl, st, err := h.conn.GetACL(h.resolve(path))
	return convertACLsIn(acl), convertStat(st), err
}

func (h *Handle) SetACL(path string, acl []handle.ACL, version int32) (*handle.Stat, error) {
	st, err := h.conn.SetACL(h.resolve(path), convertACLsOut(acl), version)
	return convertStat(st), err
}

func (h *Handle) Sync(path string) (string, error) {
	return h.conn.Sync(h.resolve(path))
}

// ClientID returns the session id. The binding does not expose the session
// password, so it comes back empty.
func (h *Handle) ClientID() handle.ClientID {
	return handle.ClientID{SessionID: h.conn.SessionID()}
}

func (h *Handle) State() handle.State {
	if h.closed.Load() {
		return handle.StateClosed
	}
	return convertState(h.conn.State())
}

// WaitUntilConnected polls the binding until the session is established or
// timeout elapses.
func (h *Handle) WaitUntilConnected(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		switch st := h.conn.State(); st {
		case zk.StateHasSession:
			return nil
		case zk.StateExpired, zk.StateAuthFailed:
			return fmt.Errorf("zkconn: session cannot connect from state %s", convertState(st))
		}
		if h.closed.Load() {
			return fmt.Errorf("zkconn: handle closed while waiting for session")
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("zkconn: timed out after %s waiting for session", timeout)
		}
		time.Sleep(statePollInterval)
	}
}

func (h *Handle) Close() error {
	if h.closed.CompareAndSwap(false, true) {
		h.conn.Close()
	}
	return nil
}

func (h *Handle) Closed() bool {
	return h.closed.Load()
}

func convertStat(st *zk.Stat) *handle.Stat {
	if st == nil {
		return nil
	}
	return &handle.Stat{
		Czxid:          st.Czxid,
		Mzxid:          st.Mzxid,
		Ctime:          st.Ctime,
		Mtime:          st.Mtime,
		Version:        st.Version,
		Cversion:       st.Cversion,
		Aversion:       st.Aversion,
		EphemeralOwner: st.EphemeralOwner,
		DataLength:     st.DataLength,
		NumChildren:    st.NumChildren,
		Pzxid:          st.Pzxid,
	}
}

func convertACLsOut(acl []handle.ACL) []zk.ACL {
	out := make([]zk.ACL, 0, len(acl))
	for _, a := range acl {
		out = append(out, zk.ACL{Perms: a.Perms, Scheme: a.Scheme, ID: a.ID})
	}
	return out
}

func convertACLsIn(acl []zk.ACL) []handle.ACL {
	out := make([]handle.ACL, 0, len(acl))
	for _, a := range acl {
		out = append(out, handle.ACL{Perms: a.Perms, Scheme: a.Scheme, ID: a.ID})
	}
	return out
}

// convertState maps binding states onto the session layer's enum. The binding
// splits "connected" into a bare TCP connection and an established session; we
// report the former as associating, matching the C client's state machine.
func convertState(st zk.State) handle.State {
	switch st {
	case zk.StateHasSession:
		return handle.StateConnected
	case zk.StateConnected, zk.StateConnectedReadOnly, zk.StateSaslAuthenticated:
		return handle.StateAssociating
	case zk.StateConnecting, zk.StateDisconnected, zk.StateUnknown:
		return handle.StateConnecting
	case zk.StateExpired:
		return handle.StateExpired
	case zk.StateAuthFailed:
		return handle.StateAuthFailed
	default:
		return handle.StateConnecting
	}
}

func convertEvent(ev zk.Event) handle.Event {
	out := handle.Event{
		Type:  handle.EventType(ev.Type),
		State: convertState(ev.State),
		Path:  ev.Path,
		Err:   ev.Err,
	}
	if out.Type == handle.EventSession {
		out.RequestID = watch.GlobalRequestID
	}
	return out
}

// printf adapts zerolog to the binding's Printf-style logger.
type printf struct {
	log zerolog.Logger
}

func (p printf) Printf(format string, args ...any) {
	p.log.Debug().Msgf(format, args...)
}
