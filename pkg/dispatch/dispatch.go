// Package dispatch runs the single goroutine that drains the event queue and
// invokes registered watchers.
package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mikekulinski/zkconn/pkg/chroot"
	"github.com/mikekulinski/zkconn/pkg/eventqueue"
	"github.com/mikekulinski/zkconn/pkg/handle"
	"github.com/mikekulinski/zkconn/pkg/watch"
)

// Dispatcher owns the delivery goroutine for one connection. Events are
// delivered strictly one at a time, in queue order: watchers never run
// concurrently with each other.
type Dispatcher struct {
	queue    *eventqueue.Queue
	registry *watch.Registry
	rewriter *chroot.Rewriter
	log      zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  atomic.Bool
	gid      atomic.Uint64
}

func New(queue *eventqueue.Queue, registry *watch.Registry, rewriter *chroot.Rewriter, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:    queue,
		registry: registry,
		rewriter: rewriter,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery goroutine. Starting an already-running or
// already-stopped dispatcher is a no-op; callers build a fresh dispatcher per
// restart.
func (d *Dispatcher) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go d.run()
}

func (d *Dispatcher) run() {
	d.gid.Store(goroutineID())
	defer close(d.done)
	for {
		select {
		case <-d.stop:
			return
		case ev := <-d.queue.C():
			d.deliver(ev)
		case <-d.queue.Done():
			return
		}
	}
}

func (d *Dispatcher) deliver(ev handle.Event) {
	ev.Path = d.rewriter.Strip(ev.Path)

	var w watch.Watcher
	var ok bool
	if ev.Type == handle.EventSession {
		w, ok = d.registry.Global()
	} else {
		// Watched requests are one-shot, so delivery consumes the entry.
		// Events nobody asked for by id fall through to the session watcher,
		// matching the default-watcher behavior of the native clients.
		w, _, ok = d.registry.Take(ev.RequestID)
		if !ok {
			w, ok = d.registry.Global()
		}
	}
	if !ok {
		d.log.Debug().
			Stringer("type", ev.Type).
			Str("path", ev.Path).
			Msg("dropping event with no registered watcher")
		return
	}
	w.Process(ev)
}

// Stop shuts the delivery goroutine down. It waits for the goroutine to exit
// unless it is the delivery goroutine itself doing the stopping, which would
// otherwise deadlock waiting on its own termination.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
	if !d.started.Load() || d.Current() {
		return
	}
	<-d.done
}

// Alive reports whether the delivery goroutine has been started and has not
// yet exited. A dispatcher inherited across a fork reports false, since
// goroutines do not survive a fork.
func (d *Dispatcher) Alive() bool {
	if !d.started.Load() {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// Current reports whether the calling goroutine is the delivery goroutine.
// Close uses this to avoid waiting on itself when a watcher callback tears the
// connection down.
func (d *Dispatcher) Current() bool {
	g := d.gid.Load()
	return g != 0 && g == goroutineID()
}
