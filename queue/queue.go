// Package queue provides a thread-safe generic FIFO queue with blocking and
// non-blocking pop, and a fixed-capacity variant that displaces its oldest
// element on overflow instead of blocking the writer.
//
// The design is grounded on the mutex+sync.Cond FIFO idiom the wider Go
// ecosystem uses for in-process bounded channels (see, for instance, the
// unbounded-queue pattern in coder's acp-go-sdk), generalized with type
// parameters and given an explicit, externally triggerable shutdown signal.
package queue

import "sync"

// PushStatus reports whether a push displaced an existing element.
type PushStatus int

const (
	// PushOK means the value was appended without evicting anything.
	PushOK PushStatus = iota
	// PushWithDisplacement means the queue was at capacity and its oldest
	// element was dropped to make room for the new one.
	PushWithDisplacement
)

// Queue is a thread-safe FIFO queue of T. The zero value is not usable;
// construct one with New.
type Queue[T any] struct {
	mu          sync.Mutex
	cond        *sync.Cond
	items       []T
	waitEnabled bool
}

// New creates an empty Queue, ready for use.
func New[T any]() *Queue[T] {
	q := &Queue[T]{waitEnabled: true}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the back of the queue and wakes one waiter.
func (q *Queue[T]) Push(v T) PushStatus {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.cond.Signal()
	return PushOK
}

// PushShared appends the value pointed to by v, without requiring the
// caller to give up their own copy. It exists for parity with spec
// implementations that pass queue items by shared pointer; callers that
// don't need that can just use Push.
func (q *Queue[T]) PushShared(v *T) PushStatus {
	return q.Push(*v)
}

// TryPop returns the front element immediately, or the zero value and
// false if the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

// WaitAndPop blocks until an element is available or DisableWait is
// called. It returns (value, true) in the former case and (zero, false) in
// the latter.
func (q *Queue[T]) WaitAndPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && q.waitEnabled {
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

// DisableWait releases every goroutine currently blocked in WaitAndPop,
// and causes future calls to WaitAndPop to return immediately once the
// queue is empty. It is idempotent.
func (q *Queue[T]) DisableWait() {
	q.mu.Lock()
	q.waitEnabled = false
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Empty reports whether the queue currently holds no items. The result is
// a snapshot and may be stale by the time the caller observes it.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len reports the current number of queued items. Like Empty, it is only
// a snapshot.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
