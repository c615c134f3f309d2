package pool

import "github.com/corunit/corun/stepwise"

// Submit wraps step (and the optional cancel/notice it's given) as a
// *stepwise.Task[T], enqueues it, and returns a Future for its eventual
// result. The task starts getting stepped as soon as a worker is free;
// Submit itself never blocks on that.
func Submit[T any](p *Pool, step stepwise.StepFunc[T], cancel stepwise.CancelFunc, notice stepwise.NoticeFunc) *stepwise.Future[T] {
	t := stepwise.Wrap(step, cancel, notice)
	p.submit(t)
	return t.Future()
}

// SubmitOnce adapts a single-step callable the same way stepwise.WrapOnce
// does, then submits it to p.
func SubmitOnce[T any](p *Pool, f func() (T, error), cancel stepwise.CancelFunc, notice stepwise.NoticeFunc) *stepwise.Future[T] {
	t := stepwise.WrapOnce(f, cancel, notice)
	p.submit(t)
	return t.Future()
}
