// Package pacing keeps benchmark workers apart in time. A worker asks the
// Regulator to wait after each repetition; the Regulator holds it back until
// the worker's minimum interval between repetition starts has passed.
package pacing

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type nowProviderFn func() time.Time
type intervalFn func() time.Duration

// Regulator decides how long a worker pauses between repetitions.
type Regulator interface {
	// Wait blocks until worker workerNum may start its next repetition,
	// given that the previous one started at startedAt.
	Wait(ctx context.Context, workerNum int, startedAt time.Time) error
}

type noWait struct{}

// NoWait returns a Regulator that never makes a worker wait.
func NoWait() Regulator {
	return noWait{}
}

func (noWait) Wait(ctx context.Context, _ int, _ time.Time) error {
	return ctx.Err()
}

type regulator struct {
	intervals map[int]intervalFn
	nowFn     nowProviderFn
}

// NewRegulator parses intervals for numWorkers workers. Intervals are the
// minimum number of milliseconds between the starts of two consecutive
// repetitions of one worker, given as a constant or as a range:
//
//	numWorkers=2, '0,5'   => worker 0 runs back to back, worker 1 waits 5ms
//	numWorkers=3, '2'     => every worker waits 2ms
//	numWorkers=3, '1,2-4' => worker 0 waits 1ms, workers 1 and 2 wait [2,4)ms
//
// The last interval applies to all remaining workers. An empty string means
// no waiting at all.
func NewRegulator(intervals string, numWorkers int, initialRand *rand.Rand) (Regulator, error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("number of workers must be positive, can't be %d", numWorkers)
	}
	if intervals == "" {
		return NoWait(), nil
	}
	if initialRand == nil {
		initialRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	fns, err := parseIntervals(intervals, numWorkers, initialRand)
	if err != nil {
		return nil, err
	}
	return &regulator{intervals: fns, nowFn: time.Now}, nil
}

func (r *regulator) Wait(ctx context.Context, workerNum int, startedAt time.Time) error {
	next, ok := r.intervals[workerNum]
	if !ok {
		return fmt.Errorf("invalid worker number: %d", workerNum)
	}

	until := startedAt.Add(next())
	now := r.nowFn()
	// the repetition itself took longer than the interval
	if !until.After(now) {
		return ctx.Err()
	}

	t := time.NewTimer(until.Sub(now))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
