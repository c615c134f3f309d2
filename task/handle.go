package task

import (
	"sync"
	"sync/atomic"

	"github.com/corunit/corun/pool"
	"github.com/corunit/corun/stepwise"
)

// Handle is a task that can be (re)started across restarts and whose
// cancellation is driven by how many observers still care about its
// result, not only by an explicit Kill. It owns at most one in-flight
// step-wise task at a time, and remembers the callables it was created
// with so a later Share can restart it without the caller supplying them
// again.
//
// The zero Handle is not usable; construct one with Create.
type Handle[T any] struct {
	main   stepwise.StepFunc[T]
	cancel stepwise.CancelFunc
	notice stepwise.NoticeFunc

	mu     sync.Mutex
	active atomic.Bool
	kill   atomic.Bool
	result Result[T]
}

// Create returns a new, idle Handle that will run main, with the given
// cancel predicate and completion notice, whenever Share starts it. cancel
// and notice may be nil. No task runs until Share is called.
func Create[T any](main stepwise.StepFunc[T], cancel stepwise.CancelFunc, notice stepwise.NoticeFunc) *Handle[T] {
	if cancel == nil {
		cancel = stepwise.NeverCancel
	}
	if notice == nil {
		notice = stepwise.NoopNotice
	}
	return &Handle[T]{main: main, cancel: cancel, notice: notice}
}

// Kill requests that the currently-shared task (if any) terminate on its
// next cancel check, regardless of how many Results are still live.
func (h *Handle[T]) Kill() {
	h.kill.Store(true)
}

// HasActiveResults reports whether any Result derived from the current
// run is still live. A step-wise task this Handle owns uses this, via its
// wrapped cancel predicate, to terminate itself once every caller waiting
// on it has given up.
func (h *Handle[T]) HasActiveResults() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.result.Empty() && h.result.Count() > 0
}

// Share submits the callables this Handle was created with to p unless a
// run is already active, in which case it hands out another reference to
// the in-flight run instead. Either way, the returned Result's reference
// count has already been incremented for the caller; it must eventually be
// Closed.
//
// The cancel predicate actually installed on the underlying task is the
// stored predicate OR'd with "no more active Results" OR'd with "Kill was
// called" — exactly as HasActiveResults and Kill are meant to be used.
func (h *Handle[T]) Share(p *pool.Pool) Result[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active.CompareAndSwap(false, true) {
		h.kill.Store(false)
		wrappedCancel := func() bool {
			return h.cancel() || !h.HasActiveResults() || h.kill.Load()
		}
		wrappedNotice := func() {
			h.active.Store(false)
			h.notice()
		}
		f := pool.Submit(p, h.main, wrappedCancel, wrappedNotice)
		h.result = newResult(f)
	}

	return h.result.Copy()
}
