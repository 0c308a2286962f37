package bench

import (
	"fmt"
	"strings"

	"github.com/perfprobe/microbench/internal/utils"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const (
	// DefaultIterations is the loop count of the integer and float workloads.
	DefaultIterations = 1000000
	// DefaultMemoryElements is the buffer length of the memory workload.
	DefaultMemoryElements = 1000

	// MaxIterations is the largest N whose integer payload N(N-1) fits in
	// an int64.
	MaxIterations = 3037000500
	// MaxMemoryElements is the largest M whose memory payload
	// M(M-1)(2M-1)/6 fits in an int64.
	MaxMemoryElements = 3024617
)

// Config selects the sizes and the workloads of a Runner.
type Config struct {
	Iterations     uint64   `mapstructure:"iterations"`
	MemoryElements uint64   `mapstructure:"memory-elements"`
	MemoryBudget   uint64   `mapstructure:"memory-budget-bytes"`
	Workloads      []string `mapstructure:"workloads"`
}

// DefaultConfig returns the configuration of a plain run.
func DefaultConfig() Config {
	return Config{
		Iterations:     DefaultIterations,
		MemoryElements: DefaultMemoryElements,
	}
}

// AddToFlagSet adds command line flags needed by the Config to the flag set.
func (c Config) AddToFlagSet(fs *pflag.FlagSet) {
	fs.Uint64("iterations", DefaultIterations, "Loop iterations of the integer and float workloads.")
	fs.Uint64("memory-elements", DefaultMemoryElements, "Number of integers allocated by the memory workload.")
	fs.Uint64("memory-budget-bytes", 0, "Largest buffer the memory workload may allocate, 0 = no limit.")
	fs.StringSlice("workloads", nil, "Workloads to run, default all. Valid: "+strings.Join(WorkloadNames, ", "))
}

// Validate checks that the values of the Config are usable.
func (c *Config) Validate() error {
	if c.Iterations == 0 {
		return errors.Wrap(ErrInvalidSize, "iterations must be positive")
	}
	if c.Iterations > MaxIterations {
		return errors.Wrapf(ErrInvalidSize, "iterations %d too large, at most %d", c.Iterations, MaxIterations)
	}
	if c.MemoryElements == 0 {
		return errors.Wrap(ErrInvalidSize, "memory elements must be positive")
	}
	if c.MemoryElements > MaxMemoryElements {
		return errors.Wrapf(ErrInvalidSize, "memory elements %d too large, at most %d", c.MemoryElements, MaxMemoryElements)
	}
	for _, name := range c.Workloads {
		if !utils.IsIn(name, WorkloadNames) {
			return errors.Wrap(ErrUnknownWorkload, fmt.Sprintf("%q; valid: %s", name, strings.Join(WorkloadNames, ", ")))
		}
	}
	return nil
}

// selected reports whether the named workload should run.
func (c *Config) selected(name string) bool {
	return len(c.Workloads) == 0 || utils.IsIn(name, c.Workloads)
}
