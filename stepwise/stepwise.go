// Package stepwise wraps a user callable that advances a computation one
// step at a time into the (step, is_done, promise) triple a fine-grained
// worker pool schedules. It is the Go analogue of the original
// stepwise_function_wrapper / Task building blocks: step() and is_done()
// are never called concurrently for the same wrapped task, notice runs
// exactly once per terminal transition, and the associated promise
// completes exactly once.
package stepwise

import (
	"sync"
	"sync/atomic"

	"github.com/corunit/corun/errors"
)

// Maybe is the per-step outcome a StepFunc returns: either a final value
// (Done) or a signal that another step is required (NotYet).
type Maybe[T any] struct {
	value T
	done  bool
}

// Done wraps a final value, ending the task on the step that returns it.
func Done[T any](v T) Maybe[T] {
	return Maybe[T]{value: v, done: true}
}

// NotYet reports that the task needs another step.
func NotYet[T any]() Maybe[T] {
	return Maybe[T]{}
}

// IsDone reports whether this Maybe carries a final value.
func (m Maybe[T]) IsDone() bool {
	return m.done
}

// Value returns the wrapped value. It's only meaningful when IsDone is
// true.
func (m Maybe[T]) Value() T {
	return m.value
}

// StepFunc advances a computation by one step. An error return is treated
// the same way a panic/exception is in the original design: it terminates
// the task and is captured into the task's promise.
type StepFunc[T any] func() (Maybe[T], error)

// CancelFunc is evaluated after every step; once it returns true the task
// terminates with an Incomplete error, regardless of what future steps
// might have produced.
type CancelFunc func() bool

// NoticeFunc is invoked exactly once, on whichever terminal transition the
// task reaches first: success, user error, or cancellation.
type NoticeFunc func()

// NeverCancel is the default cancel predicate Wrap installs when the
// caller passes a nil cancel (as pool.Submit and task.Create allow).
func NeverCancel() bool { return false }

// NoopNotice is the default notice used when the caller doesn't supply
// one.
func NoopNotice() {}

// Task is a wrapped step-wise computation: the unit the worker pool
// actually schedules. Construct one with Wrap or WrapOnce.
type Task[T any] struct {
	step   StepFunc[T]
	cancel CancelFunc
	notice NoticeFunc

	done    atomic.Bool
	mu      sync.Mutex // serializes Step/IsDone against each other
	once    sync.Once  // guards the single notice + promise completion
	promise *promise[T]
}

// Wrap builds a Task from a multi-step function, a cancel predicate
// checked after each step, and a notice invoked exactly once on
// termination.
func Wrap[T any](step StepFunc[T], cancel CancelFunc, notice NoticeFunc) *Task[T] {
	if cancel == nil {
		cancel = NeverCancel
	}
	if notice == nil {
		notice = NoopNotice
	}
	return &Task[T]{
		step:    step,
		cancel:  cancel,
		notice:  notice,
		promise: newPromise[T](),
	}
}

// WrapOnce adapts a single-step function (one that always produces its
// result on the first call) into a Task, exactly as spec.md's builder
// trivially wraps T-returning callables as Done(f()) every call.
func WrapOnce[T any](f func() (T, error), cancel CancelFunc, notice NoticeFunc) *Task[T] {
	return Wrap(func() (Maybe[T], error) {
		v, err := f()
		if err != nil {
			var zero Maybe[T]
			return zero, err
		}
		return Done(v), nil
	}, cancel, notice)
}

// Step runs the underlying step function once, unless the task is already
// done. On a final value or an error it completes the task terminally.
// Step and IsDone are never run concurrently on the same Task — the pool
// guarantees exclusivity by running a given task on exactly one worker at
// a time — but Step locks its own mutex regardless, so a Task can also be
// driven directly, outside a Pool, without violating that contract.
func (t *Task[T]) Step() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done.Load() {
		return
	}

	maybe, err := t.step()
	if err != nil {
		t.finish(func() { t.promise.fail(err) })
		return
	}
	if maybe.IsDone() {
		t.finish(func() { t.promise.succeed(maybe.Value()) })
	}
}

// IsDone reports whether the task has reached a terminal state. If it
// hasn't, it evaluates the cancel predicate; a true result terminates the
// task with an Incomplete error before IsDone returns.
func (t *Task[T]) IsDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done.Load() {
		return true
	}
	if t.cancel() {
		t.finish(func() {
			t.promise.fail(errors.New(errors.Incomplete, "value is incomplete"))
		})
		return true
	}
	return false
}

// finish marks the task done, invokes notice exactly once, and then runs
// settle (which completes the promise). Callers must hold t.mu.
func (t *Task[T]) finish(settle func()) {
	t.once.Do(func() {
		t.done.Store(true)
		t.notice()
		settle()
	})
}

// Abort completes the task's promise with the given error without running
// another step, for a pool that's discarding the tasks still in its queue
// at shutdown. It still runs notice exactly once, same as any other terminal
// transition.
func (t *Task[T]) Abort(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finish(func() { t.promise.fail(err) })
}

// Future returns the Future associated with this task's eventual result.
func (t *Task[T]) Future() *Future[T] {
	return &Future[T]{p: t.promise}
}
