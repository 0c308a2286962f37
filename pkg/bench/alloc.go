package bench

import (
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/mem"
)

const (
	int64Size = 8
	maxInt    = int(^uint(0) >> 1)

	// hostCheckBytes is the buffer size from which the host's available
	// memory is consulted before allocating.
	hostCheckBytes = 64 << 20
)

// Allocator returns a zeroed buffer of n int64 values, or an error wrapping
// ErrAllocationFailed.
type Allocator func(n uint64) ([]int64, error)

// change for testing
var availableMemory = func() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// GuardedAllocator returns an Allocator that refuses buffers it knows cannot
// be served instead of letting the runtime abort the process. budgetBytes
// caps the buffer size; 0 means no cap.
func GuardedAllocator(budgetBytes uint64) Allocator {
	return func(n uint64) (buf []int64, err error) {
		if n > uint64(maxInt)/int64Size {
			return nil, errors.Wrapf(ErrAllocationFailed, "buffer of %d elements overflows the address space", n)
		}
		size := n * int64Size
		if budgetBytes > 0 && size > budgetBytes {
			return nil, errors.Wrapf(ErrAllocationFailed, "buffer of %d bytes exceeds budget of %d bytes", size, budgetBytes)
		}
		if size >= hostCheckBytes {
			avail, memErr := availableMemory()
			if memErr == nil && size > avail {
				return nil, errors.Wrapf(ErrAllocationFailed, "buffer of %d bytes exceeds %d bytes available", size, avail)
			}
		}

		defer func() {
			if r := recover(); r != nil {
				buf = nil
				err = errors.Wrapf(ErrAllocationFailed, "%v", r)
			}
		}()
		return make([]int64, int(n)), nil
	}
}
