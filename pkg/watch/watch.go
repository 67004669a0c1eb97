package watch

import (
	"reflect"
	"sync"

	"github.com/mikekulinski/zkconn/pkg/handle"
)

// GlobalRequestID is the reserved request id for the session watcher. Real
// request ids handed out by the binding are always positive.
const GlobalRequestID int64 = -1

// Watcher receives events delivered by the dispatch loop. Watchers are
// compared by interface identity, so the same watcher value has to be used to
// satisfy the "default watcher is set once" rule on the connection.
type Watcher interface {
	Process(ev handle.Event)
}

// WatcherFunc adapts a plain function to the Watcher interface.
type WatcherFunc func(ev handle.Event)

func (f WatcherFunc) Process(ev handle.Event) {
	f(ev)
}

// Same reports whether a and b are the same watcher. Plain interface equality
// panics when the dynamic type is incomparable, which WatcherFunc is, so
// function watchers are compared by code pointer instead.
func Same(a, b Watcher) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		if ta.Kind() == reflect.Func {
			return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
		}
		return false
	}
	return a == b
}

type entry struct {
	watcher Watcher
	// ctx is opaque caller data carried alongside the watcher. The registry
	// never looks at it.
	ctx any
}

// Registry maps request ids to watchers for one session. The global slot holds
// the session watcher; every other slot is a one-shot watcher for a single
// watched request. The whole registry is thrown away and reseeded on every
// reopen, because request ids from a dead session mean nothing to the next one.
type Registry struct {
	mu      sync.Mutex
	entries map[int64]entry
}

func NewRegistry() *Registry {
	return &Registry{
		// Init to an empty map instead of nil to avoid panics when writing
		// before the first Reset.
		entries: map[int64]entry{},
	}
}

// Register installs a watcher for the given request id, replacing any previous
// entry for that id.
func (r *Registry) Register(requestID int64, w Watcher, ctx any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[requestID] = entry{watcher: w, ctx: ctx}
}

// Take removes and returns the watcher for the given request id. Watches are
// one-shot, so delivery consumes the entry.
func (r *Registry) Take(requestID int64) (Watcher, any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[requestID]
	if !ok {
		return nil, nil, false
	}
	delete(r.entries, requestID)
	return e.watcher, e.ctx, true
}

// Global returns the session watcher without consuming it.
func (r *Registry) Global() (Watcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[GlobalRequestID]
	if !ok {
		return nil, false
	}
	return e.watcher, true
}

// Reset drops every entry and reseeds the global slot with def. Called with
// the connection lock held while the handle is being replaced, so stale
// watchers can never fire against the new session.
func (r *Registry) Reset(def Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = map[int64]entry{}
	if def != nil {
		r.entries[GlobalRequestID] = entry{watcher: def}
	}
}

// Len returns the number of registered watchers, the global one included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
