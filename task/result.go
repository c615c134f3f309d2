// Package task provides Handle, a user-facing wrapper around a step-wise
// task that tracks how many observers are still waiting on its result, and
// Result, the reference-counted view of that result Handle.Share hands
// out. It's the Go analogue of the original's Task<T>/Task<T>::Result and
// TaskManager.
package task

import (
	"sync/atomic"

	"github.com/corunit/corun/stepwise"
)

// sharedState is the cell a Result's reference count and underlying
// Future live in. Every Result clone produced from the same Share call (or
// from Copy) points at the same sharedState.
type sharedState[T any] struct {
	future   *stepwise.Future[T]
	refCount atomic.Int64
}

// newResult wraps f in a fresh sharedState with a reference count of zero.
// The count only becomes nonzero once a caller actually holds a live
// Result — see Handle.Share, which increments it before returning one.
func newResult[T any](f *stepwise.Future[T]) Result[T] {
	return Result[T]{state: &sharedState[T]{future: f}}
}

// Result is a reference-counted view of a step-wise task's eventual
// value, in the spirit of a C++ shared_future paired with a ref-counted
// handle: while at least one Result derived from the same Handle.Share
// call is alive, Handle.HasActiveResults reports true for that task.
//
// The zero Result is "empty" — not associated with any task — and every
// method on it other than Empty is meaningless. Obtain a real one from
// Handle.Share.
type Result[T any] struct {
	state *sharedState[T]
}

// Empty reports whether this Result is the zero value, unassociated with
// any task.
func (r Result[T]) Empty() bool {
	return r.state == nil
}

// Count returns the number of live Result instances sharing this result's
// reference count — the same count Handle.HasActiveResults checks.
func (r Result[T]) Count() int64 {
	if r.state == nil {
		return 0
	}
	return r.state.refCount.Load()
}

// Copy returns a new Result sharing the same underlying task and
// incrementing the reference count, the Go analogue of the original's
// copy constructor. The original Result remains valid.
func (r Result[T]) Copy() Result[T] {
	if r.state != nil {
		r.state.refCount.Add(1)
	}
	return r
}

// Close decrements the reference count, the Go analogue of the original's
// destructor. Callers that keep a Result past the point they stop caring
// about its value should call Close, typically via defer, so
// Handle.HasActiveResults can observe the count drop to zero.
func (r Result[T]) Close() {
	if r.state != nil {
		r.state.refCount.Add(-1)
	}
}

// Wait blocks until the underlying task completes.
func (r Result[T]) Wait() {
	r.state.future.Wait()
}

// IsReady reports whether the result is available without blocking.
func (r Result[T]) IsReady() bool {
	return r.state.future.IsReady()
}

// Get blocks until the task completes and returns its result, or the
// error it terminated with — typically errors.Incomplete if every Result
// was closed before the task produced a value.
func (r Result[T]) Get() (T, error) {
	return r.state.future.Get()
}
