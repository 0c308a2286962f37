package bench

import (
	"math"

	"github.com/pkg/errors"
)

// Workload names, in the order the Runner executes them.
const (
	NameInteger = "integer"
	NameFloat   = "float"
	NameMemory  = "memory"
)

// WorkloadNames lists every workload in canonical order.
var WorkloadNames = []string{NameInteger, NameFloat, NameMemory}

// Workload is a fixed unit of synthetic computation timed in isolation.
type Workload interface {
	// Name is the short identifier used in config and machine output.
	Name() string
	// Label is the human readable title of the report block.
	Label() string
	// Size is the number of iterations or elements processed.
	Size() uint64
	// Run executes the work and returns its anti-elision payload.
	Run() (Payload, error)
}

// IntegerWorkload accumulates i*2 for i in [0, N).
type IntegerWorkload struct {
	N uint64
}

func (w *IntegerWorkload) Name() string  { return NameInteger }
func (w *IntegerWorkload) Label() string { return "Integer Operations" }
func (w *IntegerWorkload) Size() uint64  { return w.N }

func (w *IntegerWorkload) Run() (Payload, error) {
	if w.N == 0 {
		return Payload{}, errors.Wrap(ErrInvalidSize, "integer workload needs at least one iteration")
	}
	if w.N > MaxIterations {
		return Payload{}, errors.Wrapf(ErrInvalidSize, "integer workload of %d iterations overflows its payload", w.N)
	}
	n := int64(w.N)
	var sum int64
	for i := int64(0); i < n; i++ {
		sum += i * 2
	}
	return IntPayload(sum), nil
}

// FloatWorkload accumulates sin(i*0.001)*cos(i*0.001) for i in [0, N).
type FloatWorkload struct {
	N uint64
}

func (w *FloatWorkload) Name() string  { return NameFloat }
func (w *FloatWorkload) Label() string { return "Floating-Point Operations (sin/cos)" }
func (w *FloatWorkload) Size() uint64  { return w.N }

func (w *FloatWorkload) Run() (Payload, error) {
	if w.N == 0 {
		return Payload{}, errors.Wrap(ErrInvalidSize, "float workload needs at least one iteration")
	}
	var sum float64
	for i := uint64(0); i < w.N; i++ {
		x := float64(i) * 0.001
		sum += math.Sin(x) * math.Cos(x)
	}
	return FloatPayload(sum), nil
}

// MemoryWorkload allocates M integers, sets element i to i*i and sums them.
// Allocation and access are one measurement.
type MemoryWorkload struct {
	M     uint64
	Alloc Allocator
}

func (w *MemoryWorkload) Name() string  { return NameMemory }
func (w *MemoryWorkload) Label() string { return "Memory Operations (allocation/access)" }
func (w *MemoryWorkload) Size() uint64  { return w.M }

func (w *MemoryWorkload) Run() (Payload, error) {
	if w.M == 0 {
		return Payload{}, errors.Wrap(ErrInvalidSize, "memory workload needs at least one element")
	}
	if w.M > MaxMemoryElements {
		return Payload{}, errors.Wrapf(ErrInvalidSize, "memory workload of %d elements overflows its payload", w.M)
	}
	alloc := w.Alloc
	if alloc == nil {
		alloc = GuardedAllocator(0)
	}
	buf, err := alloc(w.M)
	if err != nil {
		return Payload{}, err
	}
	for i := range buf {
		buf[i] = int64(i) * int64(i)
	}
	var sum int64
	for _, v := range buf {
		sum += v
	}
	return IntPayload(sum), nil
}
