// Package timer measures the elapsed monotonic duration of a unit of work.
package timer

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidState is returned when Stop is called before Start, or when
	// the elapsed time is queried before Stop.
	ErrInvalidState = errors.New("timer: invalid state")
	// ErrClockUnavailable is returned when the monotonic clock cannot be read.
	ErrClockUnavailable = errors.New("timer: monotonic clock unavailable")
)

// Clock is a source of time samples for a Timer.
type Clock interface {
	Now() (time.Time, error)
}

// MonotonicClock reads time.Now and insists on the monotonic reading that Go
// attaches to it. A sample without one could be moved by wall clock
// adjustments, so it is refused.
type MonotonicClock struct{}

// Now returns the current instant.
func (MonotonicClock) Now() (time.Time, error) {
	now := time.Now()
	// Round(0) strips the monotonic reading; equal values mean there was none.
	if now == now.Round(0) {
		return time.Time{}, ErrClockUnavailable
	}
	return now, nil
}

// Timer holds a single start/stop interval. A Timer is reusable: Start
// discards the previous interval. It is not safe for concurrent use; every
// concurrently running workload needs its own Timer.
type Timer struct {
	clock   Clock
	start   time.Time
	end     time.Time
	started bool
	stopped bool
}

// New returns a Timer backed by MonotonicClock.
func New() *Timer {
	return NewWithClock(MonotonicClock{})
}

// NewWithClock returns a Timer that samples the given clock.
func NewWithClock(c Clock) *Timer {
	if c == nil {
		c = MonotonicClock{}
	}
	return &Timer{clock: c}
}

// Start records the interval start, overwriting any previous interval.
func (t *Timer) Start() error {
	now, err := t.clock.Now()
	if err != nil {
		return clockErr(err)
	}
	t.start = now
	t.end = time.Time{}
	t.started = true
	t.stopped = false
	return nil
}

// Stop records the interval end.
func (t *Timer) Stop() error {
	if !t.started {
		return errors.Wrap(ErrInvalidState, "stop called before start")
	}
	now, err := t.clock.Now()
	if err != nil {
		return clockErr(err)
	}
	t.end = now
	t.stopped = true
	return nil
}

// Elapsed returns the length of the recorded interval. It never returns a
// negative duration.
func (t *Timer) Elapsed() (time.Duration, error) {
	if !t.stopped {
		return 0, errors.Wrap(ErrInvalidState, "elapsed queried before stop")
	}
	d := t.end.Sub(t.start)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// ElapsedMicroseconds returns the interval length in microseconds.
func (t *Timer) ElapsedMicroseconds() (float64, error) {
	d, err := t.Elapsed()
	if err != nil {
		return 0, err
	}
	return float64(d.Nanoseconds()) / 1e3, nil
}

// ElapsedMilliseconds returns the interval length in milliseconds.
func (t *Timer) ElapsedMilliseconds() (float64, error) {
	us, err := t.ElapsedMicroseconds()
	if err != nil {
		return 0, err
	}
	return us / 1e3, nil
}

func clockErr(err error) error {
	if errors.Is(err, ErrClockUnavailable) {
		return err
	}
	return errors.Wrap(ErrClockUnavailable, err.Error())
}

// Measure times fn with a fresh Timer on clock c. The error of fn is
// returned as is, together with whatever duration was measured up to it.
func Measure(c Clock, fn func() error) (time.Duration, error) {
	t := NewWithClock(c)
	if err := t.Start(); err != nil {
		return 0, err
	}
	fnErr := fn()
	if err := t.Stop(); err != nil {
		return 0, err
	}
	d, err := t.Elapsed()
	if err != nil {
		return 0, err
	}
	return d, fnErr
}
