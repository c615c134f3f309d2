// Package pool provides the fine-grained, step-wise worker pool: a fixed
// number of goroutines that each pop a queued task, run exactly one Step on
// it, and either requeue it or drop it, so a task never monopolizes a
// worker for more than a single step.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/corunit/corun/errors"
	"github.com/corunit/corun/logger"
	"github.com/corunit/corun/queue"
)

// runnable is the type-erased surface Pool needs from a *stepwise.Task[T]:
// enough to drive it one step at a time without the pool itself needing to
// know T. task.Handle and the package-level Submit helpers build one of
// these around a concrete *stepwise.Task[T] before handing it to the queue.
type runnable interface {
	Step()
	IsDone() bool
	Abort(err error)
}

// Pool is the fine-grained, step-wise worker pool: a fixed number of
// goroutines repeatedly pop a queued task, run exactly one Step on it, and
// either requeue it (if it isn't done) or drop it (if it is). A given task
// never runs on two workers at once, because it's only ever present in the
// queue once at a time — popped, stepped, then either requeued or
// dropped, never both.
//
// Construct one with New. The zero value is not usable.
type Pool struct {
	queue   *queue.Queue[runnable]
	wg      sync.WaitGroup
	log     logger.Logger
	stats   Stats
	closing atomic.Bool
	closed  bool
	closeMu sync.Mutex
}

// Stats receives the pool's worker count whenever it's established.
type Stats interface {
	PoolSize(int)
}

// Option configures a Pool at construction time. There's no file, env var,
// or on-disk config surface for this package — Option is the only
// configuration mechanism.
type Option func(*Pool)

// WithLogger gives the pool a logger for worker lifecycle diagnostics: each
// worker logs a debug line when it exits. The default is logger.NopLogger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// WithStats registers a callback invoked once, at construction, with the
// pool's resolved worker count.
func WithStats(s Stats) Option {
	return func(p *Pool) { p.stats = s }
}

// New creates a Pool with n worker goroutines, each pulling queued tasks
// and stepping them until the pool is closed. n == 0 infers the host's
// hardware concurrency via runtime.NumCPU(), falling back to 1 if that
// ever reports a non-positive value.
//
// New can't actually fail today — goroutines can't fail to start in Go —
// but it still returns an error for symmetry with call sites that treat
// pool construction as fallible, and so that a future Option (for
// instance, one that pins workers to OS threads) has somewhere to report
// failure without an API break. If it ever does fail, any workers already
// started are joined before the error is returned.
func New(n int, opts ...Option) (*Pool, error) {
	if n == 0 {
		n = runtime.NumCPU()
		if n < 1 {
			n = 1
		}
	}

	p := &Pool{
		queue: queue.New[runnable](),
		log:   logger.NopLogger,
	}
	for _, opt := range opts {
		opt(p)
	}

	started := 0
	for i := 0; i < n; i++ {
		id := uuid.New()
		p.wg.Add(1)
		go p.work(id)
		started++
	}

	if p.stats != nil {
		p.stats.PoolSize(started)
	}
	return p, nil
}

// work is a single worker's loop: pop a task, step it once, requeue it
// unless it's done. Once the pool is closing, a dequeued task is aborted
// instead of stepped — this is what lets Close drain the queue in bounded
// time even when some tasks would otherwise requeue forever.
func (p *Pool) work(id uuid.UUID) {
	defer p.wg.Done()
	log := p.log.WithPrefix("worker " + id.String() + ": ")
	for {
		r, ok := p.queue.WaitAndPop()
		if !ok {
			log.Debugf("queue wait disabled, exiting")
			return
		}
		if p.closing.Load() {
			r.Abort(errors.New(errors.Aborted, "pool closed with task still queued"))
			continue
		}
		r.Step()
		if r.IsDone() {
			continue
		}
		p.queue.Push(r)
	}
}

// submit enqueues r and returns once it's been accepted, regardless of
// when a worker actually gets to it.
func (p *Pool) submit(r runnable) {
	p.queue.Push(r)
}

// Close stops the pool from running any further step on a task still in its
// queue (whether or not it has been stepped before), completing such tasks
// with errors.Aborted instead of leaving them unset, and blocks until every
// worker has exited. A worker
// that's in the middle of running Step on a task when Close is called is
// allowed to finish that one call — there's no preemption of a running
// step — but won't be given another.
//
// Close is idempotent.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	p.closeMu.Unlock()

	p.closing.Store(true)
	p.queue.DisableWait()
	p.wg.Wait()
}
