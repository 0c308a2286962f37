package bench

import "github.com/pkg/errors"

var (
	// ErrAllocationFailed marks a workload that could not obtain its buffer.
	// It is recorded on the WorkloadResult and does not abort the run.
	ErrAllocationFailed = errors.New("memory allocation failed")
	// ErrInvalidSize is returned for a zero iteration or element count.
	ErrInvalidSize = errors.New("invalid workload size")
	// ErrUnknownWorkload is returned when a workload name is not recognised.
	ErrUnknownWorkload = errors.New("unknown workload")
)
