package task

import (
	"sync"

	"github.com/corunit/corun/pool"
	"github.com/corunit/corun/stepwise"
)

// Manager is a keyed registry of Handle[T], generalizing the original's
// int-keyed TaskManager to any comparable key. It exists so a caller
// juggling many concurrently-restartable tasks doesn't need to keep its
// own map of *Handle[T] alongside its own locking.
type Manager[K comparable, T any] struct {
	mu      sync.Mutex
	handles map[K]*Handle[T]
}

// NewManager returns an empty Manager.
func NewManager[K comparable, T any]() *Manager[K, T] {
	return &Manager[K, T]{handles: make(map[K]*Handle[T])}
}

// Add creates-or-reuses the Handle registered under key and shares it via
// p, exactly as Handle.Share would on a Handle the caller already held.
// main, cancel, and notice are only used the first time key is seen —
// joining an existing entry runs the callables it was originally created
// with, the same way Handle.Share itself can't be redirected to a
// different main mid-flight. It's the entry point for "run (or join) the
// task known as key".
func (m *Manager[K, T]) Add(key K, p *pool.Pool, main stepwise.StepFunc[T], cancel stepwise.CancelFunc, notice stepwise.NoticeFunc) Result[T] {
	m.mu.Lock()
	h, ok := m.handles[key]
	if !ok {
		h = Create[T](main, cancel, notice)
		m.handles[key] = h
	}
	m.mu.Unlock()

	return h.Share(p)
}

// KillByKey kills and evicts the handle registered under key, if any. A
// Result already obtained from that handle remains valid to read from —
// eviction only stops the registry from handing out further shares under
// this key.
func (m *Manager[K, T]) KillByKey(key K) {
	m.mu.Lock()
	h, ok := m.handles[key]
	if ok {
		delete(m.handles, key)
	}
	m.mu.Unlock()

	if ok {
		h.Kill()
	}
}
