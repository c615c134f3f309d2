// Package corun implements a cooperative, step-wise worker pool: tasks
// advance one step at a time, a fine-grained pool schedules them
// exclusively, and reference-counted handles let a task auto-cancel once
// nobody is waiting on it anymore.
//
// This file is a thin facade over the package's real entry points —
// pool.New, task.Create, and conn.New — for callers who want one import
// instead of three. Using the subpackages directly works exactly the
// same way; nothing here adds behavior.
package corun

import (
	"github.com/corunit/corun/conn"
	"github.com/corunit/corun/pool"
	"github.com/corunit/corun/stepwise"
	"github.com/corunit/corun/task"
)

// NewPool creates a fine-grained, step-wise worker pool with n workers.
// n == 0 infers the host's hardware concurrency. See pool.New.
func NewPool(n int, opts ...pool.Option) (*pool.Pool, error) {
	return pool.New(n, opts...)
}

// Submit wraps step as a step-wise task and runs it on p. See pool.Submit.
func Submit[T any](p *pool.Pool, step stepwise.StepFunc[T], cancel stepwise.CancelFunc, notice stepwise.NoticeFunc) *stepwise.Future[T] {
	return pool.Submit(p, step, cancel, notice)
}

// NewTask returns a new, idle, restartable task handle that will run main
// whenever Share starts it. See task.Create.
func NewTask[T any](main stepwise.StepFunc[T], cancel stepwise.CancelFunc, notice stepwise.NoticeFunc) *task.Handle[T] {
	return task.Create(main, cancel, notice)
}

// NewTaskManager returns an empty keyed registry of task handles. See
// task.NewManager.
func NewTaskManager[K comparable, T any]() *task.Manager[K, T] {
	return task.NewManager[K, T]()
}

// NewConnection creates a bounded, displacement-on-overflow connection and
// returns its sole initial Sender. See conn.New.
func NewConnection[T any](capacity int) *conn.Sender[T] {
	return conn.New[T](capacity)
}
