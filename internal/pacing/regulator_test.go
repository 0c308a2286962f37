package pacing

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestNewRegulator(t *testing.T) {
	testCases := []struct {
		desc      string
		intervals string
		workers   int
		expectErr bool
		noWait    bool
	}{
		{
			desc:      "error on 0 workers",
			expectErr: true,
		}, {
			desc:      "error on wrong interval string",
			intervals: "a",
			workers:   1,
			expectErr: true,
		}, {
			desc:      "error on negative constant",
			intervals: "-3",
			workers:   1,
			expectErr: true,
		}, {
			desc:      "error on inverted range",
			intervals: "5-2",
			workers:   1,
			expectErr: true,
		}, {
			desc:    "empty string waits for nobody",
			workers: 2,
			noWait:  true,
		}, {
			desc:      "last interval fills remaining workers",
			intervals: "1,2-4",
			workers:   3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := NewRegulator(tc.intervals, tc.workers, rand.New(rand.NewSource(1)))
			if err != nil && !tc.expectErr {
				t.Fatalf("unexpected error: %v", err)
			} else if err == nil && tc.expectErr {
				t.Fatal("unexpected lack of error")
			} else if tc.expectErr {
				return
			}
			if tc.noWait {
				if _, ok := res.(noWait); !ok {
					t.Errorf("expected a no-wait regulator, got %T", res)
				}
				return
			}
			r := res.(*regulator)
			for w := 0; w < tc.workers; w++ {
				if r.intervals[w] == nil {
					t.Errorf("interval fn for worker %d is missing", w)
				}
			}
		})
	}
}

func TestIntervalValues(t *testing.T) {
	res, err := NewRegulator("0,3,2-4", 4, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := res.(*regulator)
	if got := r.intervals[0](); got != 0 {
		t.Errorf("worker 0: got %v want 0", got)
	}
	if got := r.intervals[1](); got != 3*time.Millisecond {
		t.Errorf("worker 1: got %v want 3ms", got)
	}
	for _, w := range []int{2, 3} {
		for i := 0; i < 50; i++ {
			got := r.intervals[w]()
			if got < 2*time.Millisecond || got >= 4*time.Millisecond {
				t.Fatalf("worker %d: %v outside [2ms,4ms)", w, got)
			}
		}
	}
}

func TestWaitUnknownWorker(t *testing.T) {
	r, _ := NewRegulator("1", 1, rand.New(rand.NewSource(0)))
	if err := r.Wait(context.Background(), 2, time.Now()); err == nil {
		t.Errorf("expected an error for an unknown worker")
	}
}

func TestWait(t *testing.T) {
	workStart := time.Unix(1546300800, 0)
	testCases := []struct {
		desc         string
		interval     time.Duration
		expectedWait time.Duration
		currentTime  time.Time
	}{
		{
			desc:         "wait for the whole interval",
			interval:     time.Millisecond,
			expectedWait: time.Millisecond,
			currentTime:  workStart,
		}, {
			desc:         "wait for the rest of the interval",
			interval:     4 * time.Millisecond,
			expectedWait: 2 * time.Millisecond,
			currentTime:  workStart.Add(2 * time.Millisecond),
		}, {
			desc:         "don't wait, the repetition took longer",
			interval:     time.Nanosecond,
			expectedWait: 0,
			currentTime:  workStart.Add(2 * time.Nanosecond),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			r := &regulator{
				intervals: map[int]intervalFn{
					0: func() time.Duration { return tc.interval },
				},
				nowFn: func() time.Time { return tc.currentTime },
			}
			start := time.Now()
			if err := r.Wait(context.Background(), 0, workStart); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if took := time.Since(start); took < tc.expectedWait {
				t.Errorf("waited %v, expected at least %v", took, tc.expectedWait)
			}
		})
	}
}

func TestWaitCancelled(t *testing.T) {
	r := &regulator{
		intervals: map[int]intervalFn{
			0: func() time.Duration { return time.Hour },
		},
		nowFn: time.Now,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Wait(ctx, 0, time.Now()); err != context.Canceled {
		t.Errorf("incorrect error: got %v want %v", err, context.Canceled)
	}
}
