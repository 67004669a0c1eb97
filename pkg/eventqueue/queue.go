// Package eventqueue carries completions and watch notifications from the
// handle to the dispatch loop.
package eventqueue

import (
	"sync"

	"github.com/mikekulinski/zkconn/pkg/handle"
)

// DefaultCapacity buffers enough events to ride out a slow watcher before
// drops set in.
const DefaultCapacity = 64

// Queue is a bounded, lossy queue of handle events. The handle pushes, the
// dispatch loop drains. A queue is owned by exactly one connection and is
// never shared across a fork boundary: the child process clones it instead,
// because the parent's dispatch goroutine does not survive the fork.
type Queue struct {
	ch   chan handle.Event
	done chan struct{}

	// mu makes closedness authoritative for Push: once Close has returned,
	// every Push drops, with no scheduler-dependent window.
	mu     sync.Mutex
	closed bool
}

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ch:   make(chan handle.Event, capacity),
		done: make(chan struct{}),
	}
}

// Push enqueues an event. A closed queue drops the event outright, since the
// dispatch loop is already gone. A full queue also drops, matching the native
// binding's own callback behavior: stalling the handle's I/O loop behind a
// slow watcher would be worse than losing the notification.
func (q *Queue) Push(ev handle.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- ev:
	default:
	}
}

// C returns the receive side of the queue for the dispatch loop.
func (q *Queue) C() <-chan handle.Event {
	return q.ch
}

// Done is closed once the queue has been shut down.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close shuts the queue down. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// CloneAfterFork returns a fresh queue for the child process. The inherited
// channel may hold events meant for the parent and has no drainer anymore, so
// the clone starts empty with the same capacity.
func (q *Queue) CloneAfterFork() *Queue {
	return New(cap(q.ch))
}
