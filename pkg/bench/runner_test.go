package bench

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/perfprobe/microbench/pkg/timer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// tickClock advances by step on every reading.
type tickClock struct {
	now  time.Time
	step time.Duration
}

func (c *tickClock) Now() (time.Time, error) {
	t := c.now
	c.now = c.now.Add(c.step)
	return t, nil
}

// failingClock fails from the given reading onwards.
type failingClock struct {
	okReads int
	reads   int
}

func (c *failingClock) Now() (time.Time, error) {
	c.reads++
	if c.reads > c.okReads {
		return time.Time{}, errors.New("clock gone")
	}
	return time.Unix(0, 0), nil
}

func smallConfig() Config {
	return Config{Iterations: 1000, MemoryElements: 100}
}

func TestNewRunnerValidation(t *testing.T) {
	cases := []struct {
		desc    string
		cfg     Config
		wantErr error
	}{
		{
			desc: "defaults are valid",
			cfg:  DefaultConfig(),
		},
		{
			desc:    "zero iterations",
			cfg:     Config{Iterations: 0, MemoryElements: 1},
			wantErr: ErrInvalidSize,
		},
		{
			desc:    "zero memory elements",
			cfg:     Config{Iterations: 1, MemoryElements: 0},
			wantErr: ErrInvalidSize,
		},
		{
			desc:    "iterations beyond int64",
			cfg:     Config{Iterations: math.MaxUint64, MemoryElements: 1},
			wantErr: ErrInvalidSize,
		},
		{
			desc: "largest iterations",
			cfg:  Config{Iterations: MaxIterations, MemoryElements: 1},
		},
		{
			desc:    "iterations overflowing the payload",
			cfg:     Config{Iterations: MaxIterations + 1, MemoryElements: 1},
			wantErr: ErrInvalidSize,
		},
		{
			desc: "largest memory elements",
			cfg:  Config{Iterations: 1, MemoryElements: MaxMemoryElements},
		},
		{
			desc:    "memory elements overflowing the payload",
			cfg:     Config{Iterations: 1, MemoryElements: MaxMemoryElements + 1},
			wantErr: ErrInvalidSize,
		},
		{
			desc:    "unknown workload",
			cfg:     Config{Iterations: 1, MemoryElements: 1, Workloads: []string{"integer", "disk"}},
			wantErr: ErrUnknownWorkload,
		},
	}
	for _, c := range cases {
		_, err := NewRunner(c.cfg)
		if c.wantErr == nil && err != nil {
			t.Errorf("%s: unexpected error: %v", c.desc, err)
		} else if c.wantErr != nil && !errors.Is(err, c.wantErr) {
			t.Errorf("%s: incorrect error: got %v want %v", c.desc, err, c.wantErr)
		}
	}
}

func TestRunAllOrder(t *testing.T) {
	r, err := NewRunner(smallConfig())
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)

	var names []string
	for _, res := range results {
		names = append(names, res.Name)
		if res.Failed() {
			t.Errorf("%s: unexpected failure: %s", res.Name, res.Err)
		}
		if res.DurationMicros < 0 {
			t.Errorf("%s: negative duration %v", res.Name, res.DurationMicros)
		}
	}
	if diff := cmp.Diff(WorkloadNames, names); diff != "" {
		t.Errorf("incorrect workload order (-want +got):\n%s", diff)
	}
	if got := results[0].Payload.Int(); got != 1000*999 {
		t.Errorf("incorrect integer payload: got %d want %d", got, 1000*999)
	}
	if got := results[2].Payload.Int(); got != 100*99*199/6 {
		t.Errorf("incorrect memory payload: got %d want %d", got, 100*99*199/6)
	}
}

func TestRunAllSelectedWorkloadsKeepOrder(t *testing.T) {
	cfg := smallConfig()
	cfg.Workloads = []string{NameMemory, NameInteger}
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
	if results[0].Name != NameInteger || results[1].Name != NameMemory {
		t.Errorf("incorrect order: got %s, %s", results[0].Name, results[1].Name)
	}
}

func TestRunAllDefaultIntegerPayload(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workloads = []string{NameInteger}
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)
	require.Len(t, results, 1)
	if got := results[0].Payload.Int(); got != 999999000000 {
		t.Errorf("incorrect payload: got %d want %d", got, int64(999999000000))
	}
	if results[0].Count != DefaultIterations {
		t.Errorf("incorrect count: got %d want %d", results[0].Count, DefaultIterations)
	}
}

func TestRunAllMemoryOfSeven(t *testing.T) {
	cfg := Config{Iterations: 1, MemoryElements: 7, Workloads: []string{NameMemory}}
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)
	require.Len(t, results, 1)
	if got := results[0].Payload.Int(); got != 91 {
		t.Errorf("incorrect payload: got %d want 91", got)
	}
}

func TestRunAllAllocationFailureContinues(t *testing.T) {
	cfg := smallConfig()
	cfg.MemoryElements = MaxMemoryElements
	cfg.MemoryBudget = 1 << 10
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results[:2] {
		if res.Kind != KindOK {
			t.Errorf("%s: incorrect kind: got %s want %s", res.Name, res.Kind, KindOK)
		}
	}
	mem := results[2]
	if mem.Kind != KindAllocationFailed {
		t.Errorf("incorrect memory kind: got %s want %s", mem.Kind, KindAllocationFailed)
	}
	if mem.Err == "" {
		t.Errorf("failed result carries no error message")
	}
	if mem.Count != MaxMemoryElements {
		t.Errorf("incorrect count on failed result: got %d", mem.Count)
	}
}

func TestRunAllAllocationFailureIsFirstClass(t *testing.T) {
	failing := func(n uint64) ([]int64, error) {
		return nil, errors.Wrap(ErrAllocationFailed, "simulated")
	}
	cfg := smallConfig()
	cfg.Workloads = []string{NameMemory, NameFloat}
	r, err := NewRunner(cfg, WithAllocator(failing))
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
	if results[0].Failed() {
		t.Errorf("float workload should succeed")
	}
	if results[1].Kind != KindAllocationFailed {
		t.Errorf("incorrect kind: got %s", results[1].Kind)
	}
}

func TestRunAllNonAllocationErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	failing := func(n uint64) ([]int64, error) {
		return nil, boom
	}
	r, err := NewRunner(smallConfig(), WithAllocator(failing))
	require.NoError(t, err)

	results, err := r.RunAll()
	if !errors.Is(err, boom) {
		t.Errorf("incorrect error: got %v want %v", err, boom)
	}
	if results != nil {
		t.Errorf("no results expected on a fatal error, got %d", len(results))
	}
}

func TestRunAllClockUnavailableAborts(t *testing.T) {
	cases := []struct {
		desc    string
		okReads int
	}{
		{desc: "clock fails on first start", okReads: 0},
		{desc: "clock fails on first stop", okReads: 1},
		{desc: "clock fails on second workload", okReads: 2},
	}
	for _, c := range cases {
		r, err := NewRunner(smallConfig(), WithClock(&failingClock{okReads: c.okReads}))
		require.NoError(t, err)
		results, err := r.RunAll()
		if !errors.Is(err, timer.ErrClockUnavailable) {
			t.Errorf("%s: incorrect error: got %v", c.desc, err)
		}
		if results != nil {
			t.Errorf("%s: no results expected", c.desc)
		}
	}
}

func TestRunWorkloadRate(t *testing.T) {
	clock := &tickClock{now: time.Unix(0, 0), step: time.Millisecond}
	r, err := NewRunner(smallConfig(), WithClock(clock))
	require.NoError(t, err)

	res, err := r.RunWorkload(&IntegerWorkload{N: 500})
	require.NoError(t, err)
	if res.DurationMicros != 1000 {
		t.Errorf("incorrect duration: got %v want %v", res.DurationMicros, 1000.0)
	}
	if !res.Measurable {
		t.Errorf("result should be measurable")
	}
	if math.Abs(res.Rate-500000) > 1e-6 {
		t.Errorf("incorrect rate: got %v want %v", res.Rate, 500000.0)
	}
}

func TestRunWorkloadTooFastToSample(t *testing.T) {
	clock := &tickClock{now: time.Unix(0, 0)}
	r, err := NewRunner(smallConfig(), WithClock(clock))
	require.NoError(t, err)

	results, err := r.RunAll()
	require.NoError(t, err)
	for _, res := range results {
		if res.Measurable {
			t.Errorf("%s: zero duration must not be measurable", res.Name)
		}
		if res.Rate != 0 || math.IsInf(res.Rate, 0) || math.IsNaN(res.Rate) {
			t.Errorf("%s: incorrect rate for zero duration: %v", res.Name, res.Rate)
		}
	}
}

func TestRunAllDeterministicPayloads(t *testing.T) {
	r, err := NewRunner(smallConfig())
	require.NoError(t, err)

	first, err := r.RunAll()
	require.NoError(t, err)
	second, err := r.RunAll()
	require.NoError(t, err)

	for i := range first {
		if !first[i].Payload.Equal(second[i].Payload) {
			t.Errorf("%s: payload changed between runs: %v vs %v", first[i].Name, first[i].Payload, second[i].Payload)
		}
	}
}
