// Package bench runs the fixed sequence of timed micro-benchmark workloads.
package bench

import (
	"github.com/perfprobe/microbench/pkg/timer"
	"github.com/pkg/errors"
)

// Option customises a Runner.
type Option func(*Runner)

// WithClock makes every timer of the Runner sample c.
func WithClock(c timer.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithAllocator replaces the buffer allocator of the memory workload.
func WithAllocator(a Allocator) Option {
	return func(r *Runner) {
		r.alloc = a
	}
}

// Runner executes integer, floating-point and memory workloads, in that
// order, one after the other on the calling goroutine. A Runner keeps no
// state between calls to RunAll; concurrent callers should each use their
// own Runner.
type Runner struct {
	cfg       Config
	clock     timer.Clock
	alloc     Allocator
	workloads []Workload
}

// NewRunner validates cfg and builds the workload list.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, clock: timer.MonotonicClock{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.alloc == nil {
		r.alloc = GuardedAllocator(cfg.MemoryBudget)
	}

	all := []Workload{
		&IntegerWorkload{N: cfg.Iterations},
		&FloatWorkload{N: cfg.Iterations},
		&MemoryWorkload{M: cfg.MemoryElements, Alloc: r.alloc},
	}
	for _, w := range all {
		if r.cfg.selected(w.Name()) {
			r.workloads = append(r.workloads, w)
		}
	}
	return r, nil
}

// Workloads returns the workloads in execution order.
func (r *Runner) Workloads() []Workload {
	return r.workloads
}

// RunAll runs every workload and returns one result per workload. Failed
// allocations are recorded on their result; any other error aborts the run
// and no results are returned.
func (r *Runner) RunAll() ([]WorkloadResult, error) {
	results := make([]WorkloadResult, 0, len(r.workloads))
	for _, w := range r.workloads {
		res, err := r.RunWorkload(w)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunWorkload times a single workload with a fresh timer.
func (r *Runner) RunWorkload(w Workload) (WorkloadResult, error) {
	t := timer.NewWithClock(r.clock)
	if err := t.Start(); err != nil {
		return WorkloadResult{}, errors.Wrapf(err, "workload %s", w.Name())
	}
	payload, runErr := w.Run()
	if err := t.Stop(); err != nil {
		return WorkloadResult{}, errors.Wrapf(err, "workload %s", w.Name())
	}
	if runErr != nil {
		if errors.Is(runErr, ErrAllocationFailed) {
			return failedResult(w, KindAllocationFailed, runErr), nil
		}
		return WorkloadResult{}, errors.Wrapf(runErr, "workload %s", w.Name())
	}

	us, err := t.ElapsedMicroseconds()
	if err != nil {
		return WorkloadResult{}, errors.Wrapf(err, "workload %s", w.Name())
	}
	return newResult(w, us, payload), nil
}
