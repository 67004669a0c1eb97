// Package forkguard detects that a connection has crossed a fork boundary.
// A handle inherited through an OS-level fork shares no valid sockets or
// goroutines with the child process, so every state-mutating entry point has
// to check the guard before touching the handle.
package forkguard

import (
	"os"
	"sync/atomic"
)

// Guard remembers which process last initialized the per-process state of a
// connection. The pid source is injectable so tests can simulate a fork
// without actually forking.
type Guard struct {
	pid      func() int
	ownerPID atomic.Int64
}

func New() *Guard {
	return NewWithPID(os.Getpid)
}

func NewWithPID(pid func() int) *Guard {
	g := &Guard{pid: pid}
	g.ownerPID.Store(int64(pid()))
	return g
}

// Forked reports whether the current process differs from the one that last
// initialized the connection.
func (g *Guard) Forked() bool {
	return int64(g.pid()) != g.ownerPID.Load()
}

// Reset records the current process as the owner. Called once post-fork
// re-initialization has run to completion.
func (g *Guard) Reset() {
	g.ownerPID.Store(int64(g.pid()))
}

// OwnerPID returns the pid recorded at the last (re)initialization.
func (g *Guard) OwnerPID() int {
	return int(g.ownerPID.Load())
}
