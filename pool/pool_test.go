package pool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corunit/corun/errors"
	"github.com/corunit/corun/stepwise"
)

// TestInterleavedStepTasks reproduces the spec scenario of two step tasks
// sharing a single-worker pool: task A logs "A0".."A4", task B logs
// "B0".."B4", each yielding NotYet until its counter reaches 5. On one
// worker, submitted in order A then B, the steps interleave strictly:
// A0 B0 A1 B1 A2 B2 A3 B3 A4 B4.
func TestInterleavedStepTasks(t *testing.T) {
	p, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var mu sync.Mutex
	var order []string

	logStep := func(name string) stepwise.StepFunc[struct{}] {
		n := 0
		return func() (stepwise.Maybe[struct{}], error) {
			mu.Lock()
			order = append(order, fmt.Sprintf("%s%d", name, n))
			mu.Unlock()
			n++
			if n >= 5 {
				return stepwise.Done(struct{}{}), nil
			}
			return stepwise.NotYet[struct{}](), nil
		}
	}

	fa := Submit(p, logStep("A"), nil, nil)
	fb := Submit(p, logStep("B"), nil, nil)

	fa.Wait()
	fb.Wait()

	want := []string{"A0", "B0", "A1", "B1", "A2", "B2", "A3", "B3", "A4", "B4"}
	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestKillViaCancelPredicate reproduces the spec's "kill" scenario: an
// infinite step task that always returns NotYet, cancelled by flipping an
// atomic flag its cancel predicate reads.
func TestKillViaCancelPredicate(t *testing.T) {
	p, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var kill atomic.Bool
	f := Submit(p, func() (stepwise.Maybe[int], error) {
		return stepwise.NotYet[int](), nil
	}, kill.Load, nil)

	time.Sleep(10 * time.Millisecond)
	kill.Store(true)

	if !f.WaitFor(time.Second) {
		t.Fatalf("future never completed after cancellation")
	}
	_, gerr := f.Get()
	if !errors.Is(gerr, errors.Incomplete) {
		t.Fatalf("got error %v, want code Incomplete", gerr)
	}
}

// TestCloseAbortsQueuedTasks checks that tasks still sitting in the queue
// at Close time complete with errors.Aborted instead of hanging forever.
func TestCloseAbortsQueuedTasks(t *testing.T) {
	p, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	block := make(chan struct{})
	holder := Submit(p, func() (stepwise.Maybe[int], error) {
		<-block
		return stepwise.Done(1), nil
	}, nil, nil)

	var stepped atomic.Bool
	queued := Submit(p, func() (stepwise.Maybe[int], error) {
		stepped.Store(true)
		return stepwise.Done(2), nil
	}, nil, nil)

	// Give the single worker a chance to pick up the first task before
	// Close is called, so the first is running (blocked in its step) and
	// the second is sitting in the queue, not running.
	time.Sleep(10 * time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(block)
	}()
	p.Close()

	_, err = holder.Get()
	if err != nil {
		t.Fatalf("holder task should have completed normally, got %v", err)
	}

	_, err = queued.Get()
	if !errors.Is(err, errors.Aborted) {
		t.Fatalf("got error %v, want code Aborted", err)
	}
	if stepped.Load() {
		t.Fatalf("queued task should never have been stepped")
	}
}

// TestNewInfersHardwareConcurrency checks that New(0) starts at least one
// worker (it can't observe the exact count without reaching into internals,
// but it can confirm the pool actually runs tasks).
func TestNewInfersHardwareConcurrency(t *testing.T) {
	p, err := New(0)
	if err != nil {
		t.Fatalf("New(0): %v", err)
	}
	defer p.Close()

	f := SubmitOnce(p, func() (int, error) { return 9, nil }, nil, nil)
	v, err := f.Get()
	if err != nil || v != 9 {
		t.Fatalf("got (%d, %v), want (9, nil)", v, err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Close()
	p.Close()
}
