// Package session makes a single-session ZooKeeper handle safe to share
// between goroutines. A Connection serializes every synchronous operation
// against the current handle, replaces the handle wholesale on Reopen, strips
// chroot prefixes from returned paths, and refuses to operate across a process
// fork until it has been explicitly reopened by the child.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mikekulinski/zkconn/pkg/chroot"
	"github.com/mikekulinski/zkconn/pkg/dispatch"
	"github.com/mikekulinski/zkconn/pkg/eventqueue"
	"github.com/mikekulinski/zkconn/pkg/forkguard"
	"github.com/mikekulinski/zkconn/pkg/handle"
	"github.com/mikekulinski/zkconn/pkg/watch"
	"github.com/mikekulinski/zkconn/pkg/zkhandle"
)

// DefaultSessionTimeout bounds the connect wait of the initial open and is the
// session timeout requested from the ensemble.
const DefaultSessionTimeout = 10 * time.Second

// Connection is a thread-safe session to a ZooKeeper ensemble. All goroutines
// of a process share one Connection; the zero value is not usable, construct
// one with New.
type Connection struct {
	// id correlates log lines from this connection instance.
	id             string
	host           string
	sessionTimeout time.Duration
	provider       handle.Provider
	log            zerolog.Logger

	rewriter *chroot.Rewriter
	guard    *forkguard.Guard

	// mu guards h, the registry reseed, and every reopen/close transition.
	// It is a pointer because post-fork recovery replaces a mutex the parent
	// may have left locked.
	mu             *sync.Mutex
	h              handle.Handle
	registry       *watch.Registry
	queue          *eventqueue.Queue
	dispatcher     *dispatch.Dispatcher
	defaultWatcher watch.Watcher

	// closed is monotonic-safe to read without the lock: once a Close has
	// completed it only flips back inside Reopen's critical section.
	closed atomic.Bool
}

// Option configures a Connection at construction time.
type Option func(c *Connection)

// WithSessionTimeout sets the session timeout requested from the ensemble and
// the connect-wait bound of the initial open.
func WithSessionTimeout(d time.Duration) Option {
	return func(c *Connection) { c.sessionTimeout = d }
}

// WithWatcher installs w as the default global watcher. It receives every
// session state change and any watch event that has no per-request watcher.
func WithWatcher(w watch.Watcher) Option {
	return func(c *Connection) { c.defaultWatcher = w }
}

// WithProvider overrides the handle provider. The default dials the ensemble
// through the native binding; tests install fakes or mocks here.
func WithProvider(p handle.Provider) Option {
	return func(c *Connection) { c.provider = p }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Connection) { c.log = log }
}

// WithPIDSource overrides how the fork guard reads the current process id.
// Tests use this to simulate a fork without forking.
func WithPIDSource(pid func() int) Option {
	return func(c *Connection) { c.guard = forkguard.NewWithPID(pid) }
}

// New opens a connection to the ensemble named by host. Everything from the
// first '/' in host onward is treated as a chroot prefix scoping the session
// to that sub-namespace; a host ending in '/' is rejected before any handle is
// created. New blocks until the session is connected or the session timeout
// elapses.
func New(host string, opts ...Option) (*Connection, error) {
	rewriter, err := chroot.New(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}

	c := &Connection{
		id:             uuid.New().String(),
		host:           host,
		sessionTimeout: DefaultSessionTimeout,
		log:            zerolog.Nop(),
		rewriter:       rewriter,
		guard:          forkguard.New(),
		mu:             &sync.Mutex{},
		registry:       watch.NewRegistry(),
		queue:          eventqueue.New(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("conn_id", c.id).Str("host", host).Logger()
	if c.defaultWatcher == nil {
		c.defaultWatcher = &loggingWatcher{log: c.log}
	}
	if c.provider == nil {
		c.provider = zkhandle.NewProvider(c.log, c.sessionTimeout)
	}
	c.registry.Reset(c.defaultWatcher)

	if _, err := c.Reopen(c.sessionTimeout, nil); err != nil {
		c.teardownAfterFailedOpen()
		return nil, err
	}
	return c, nil
}

func (c *Connection) teardownAfterFailedOpen() {
	if c.dispatcher != nil {
		c.dispatcher.Stop()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.h != nil {
		_ = c.h.Close()
		c.h = nil
	}
	c.queue.Close()
	c.closed.Store(true)
}

// Host returns the configured host string, chroot suffix included.
func (c *Connection) Host() string {
	return c.host
}

// ChrootPath returns the virtual-namespace prefix derived from the host
// string, or the empty string when the session is not chrooted.
func (c *Connection) ChrootPath() string {
	return c.rewriter.Prefix()
}

// Reopen discards the current handle and establishes a fresh session, blocking
// up to timeout for it to connect. The watcher argument must be nil or the
// exact watcher configured at construction; the default watcher may only be
// set once. On return every previously registered per-request watcher is gone
// and the registry holds only the reseeded global entry, so callers must
// re-register watches. The connect-wait failure, if any, is propagated
// alongside the resulting state.
func (c *Connection) Reopen(timeout time.Duration, w watch.Watcher) (handle.State, error) {
	// Fork recovery has to happen before we touch the mutex: the mutex itself
	// is part of the state the fork invalidated.
	if c.guard.Forked() {
		c.reinitAfterFork()
	}

	st, swapped, err := c.reopenLocked(timeout, w)
	if swapped {
		// The new handle is live even when the connect wait failed, so the
		// delivery goroutine has to be running either way.
		c.ensureDispatcher()
	}
	if err != nil {
		return st, err
	}
	c.log.Info().Stringer("state", st).Msg("session reopened")
	return st, nil
}

func (c *Connection) reopenLocked(timeout time.Duration, w watch.Watcher) (handle.State, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w != nil && !watch.Same(w, c.defaultWatcher) {
		return handle.StateClosed, false, ErrWatcherMismatch
	}

	// Watchers registered against the old session are meaningless against the
	// new one. Clear everything and reseed the global slot.
	c.registry.Reset(c.defaultWatcher)

	if c.queue.Closed() {
		// A completed Close shut the queue down; the new session needs a live
		// one before the handle can post events.
		c.queue = c.queue.CloneAfterFork()
	}

	newHandle, err := c.provider(c.host, c.queue)
	if err != nil {
		return handle.StateClosed, false, fmt.Errorf("creating handle: %w", err)
	}

	// Assign before closing the old handle so no state query ever observes
	// "no handle" mid-swap.
	old := c.h
	c.h = newHandle
	c.closed.Store(false)
	if old != nil && !old.Closed() {
		if cerr := old.Close(); cerr != nil {
			c.log.Warn().Err(cerr).Msg("closing previous handle")
		}
	}

	if err := newHandle.WaitUntilConnected(timeout); err != nil {
		return newHandle.State(), true, err
	}
	return newHandle.State(), true, nil
}

// reinitAfterFork rebuilds all per-process state. It runs single-threaded by
// construction: the child process has exactly one goroutine until this
// completes, because goroutines do not survive a fork.
func (c *Connection) reinitAfterFork() {
	c.log.Info().Int("owner_pid", c.guard.OwnerPID()).Msg("fork detected, reinitializing per-process state")
	c.mu = &sync.Mutex{}
	c.queue = c.queue.CloneAfterFork()
	if c.dispatcher != nil && !c.dispatcher.Alive() {
		c.dispatcher = nil
	}
	c.guard.Reset()
}

// ensureDispatcher (re)starts the delivery goroutine if it is not running.
// Called outside the reopen critical section.
func (c *Connection) ensureDispatcher() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dispatcher != nil && c.dispatcher.Alive() {
		return
	}
	c.dispatcher = dispatch.New(c.queue, c.registry, c.rewriter, c.log)
	c.dispatcher.Start()
}

// Close stops the delivery goroutine and closes the handle. The shutdown runs
// on its own goroutine; the caller blocks until it finishes unless the caller
// IS the delivery goroutine, in which case Close fires and forgets so a
// watcher callback can tear the connection down without deadlocking on its own
// termination.
func (c *Connection) Close() error {
	c.mu.Lock()
	d := c.dispatcher
	c.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		// Stop the dispatcher before taking the lock: an in-flight watcher
		// callback may be blocked on a state query that needs it.
		if d != nil {
			d.Stop()
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		var err error
		if c.h != nil && !c.h.Closed() {
			err = c.h.Close()
		}
		c.h = nil
		c.queue.Close()
		c.closed.Store(true)
		c.log.Info().Msg("connection closed")
		errc <- err
	}()

	if d != nil && d.Current() {
		return nil
	}
	return <-errc
}

// ForceClose closes the handle directly: no lock, no dispatcher shutdown.
// This is only safe in a freshly forked child process, where no other
// goroutine can possibly be operating on the connection.
func (c *Connection) ForceClose() error {
	c.closed.Store(true)
	if c.h == nil || c.h.Closed() {
		c.h = nil
		return nil
	}
	err := c.h.Close()
	c.h = nil
	return err
}

// Closed reports whether the connection has completed Close (or ForceClose)
// without a Reopen since.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// SetDefaultGlobalWatcher replaces the default watcher and reseeds the global
// registry slot with it. The old watcher stops receiving events immediately.
func (c *Connection) SetDefaultGlobalWatcher(w watch.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultWatcher = w
	c.registry.Register(watch.GlobalRequestID, w, nil)
}

// RegisterWatcher installs a one-shot watcher for the given request id. The
// entry survives until it is consumed by a delivery or wiped by the next
// Reopen.
func (c *Connection) RegisterWatcher(requestID int64, w watch.Watcher, ctx any) error {
	if err := c.checkFork(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	c.registry.Register(requestID, w, ctx)
	return nil
}

// Watchers exposes the registry for the dispatch layer and tests.
func (c *Connection) Watchers() *watch.Registry {
	return c.registry
}
