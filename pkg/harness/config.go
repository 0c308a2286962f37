package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/perfprobe/microbench/internal/utils"
	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/spf13/pflag"
)

// Config is the configuration of a Harness.
type Config struct {
	Workers           uint          `mapstructure:"workers"`
	Repetitions       uint64        `mapstructure:"repetitions"`
	BurnIn            uint64        `mapstructure:"burn-in"`
	PrintInterval     uint64        `mapstructure:"print-interval"`
	RunsPerSecond     float64       `mapstructure:"runs-per-second"`
	CooldownIntervals string        `mapstructure:"cooldown-intervals"`
	ReportingPeriod   time.Duration `mapstructure:"reporting-period"`
	Seed              int64         `mapstructure:"seed"`
	HDRLatenciesFile  string        `mapstructure:"hdr-latencies"`
	ResultsFile       string        `mapstructure:"results-file"`
	MemProfile        string        `mapstructure:"memprofile"`
	Format            string        `mapstructure:"format"`
}

// DefaultConfig returns the configuration of a single, plain run.
func DefaultConfig() Config {
	return Config{
		Workers:     1,
		Repetitions: 1,
		Format:      bench.FormatText,
	}
}

// AddToFlagSet adds command line flags needed by the Config to the flag set.
func (c Config) AddToFlagSet(fs *pflag.FlagSet) {
	fs.Uint("workers", 1, "Number of independent runners executing repetitions concurrently.")
	fs.Uint64("repetitions", 1, "Total number of times the workload sequence is run, across all workers.")
	fs.Uint64("burn-in", 0, "Number of repetitions to ignore before collecting statistics.")
	fs.Uint64("print-interval", 0, "Print timing stats to stderr after this many repetitions (0 to disable)")
	fs.Float64("runs-per-second", 0, "Limit the rate at which repetitions start, 0 = no limit.")
	fs.String("cooldown-intervals", "", "Minimum milliseconds between repetition starts per worker, e.g. '0,5-10'. Default '' => no waiting.")
	fs.Duration("reporting-period", 0, "Period to report progress to stderr, 0 = no reports.")
	fs.Int64("seed", 0, "PRNG seed for cooldown ranges (default: 0, which uses the current timestamp)")
	fs.String("hdr-latencies", "", "File to write the HDR histogram of workload durations to.")
	fs.String("results-file", "", "File to write the JSON results of the run to.")
	fs.String("memprofile", "", "Write a memory profile to this file.")
	fs.String("format", bench.FormatText, "Output format of the results. Valid: "+strings.Join(bench.Formats, ", "))
}

// Validate checks that the values of the Config are reasonable.
func (c *Config) Validate() error {
	if err := utils.ValidateRepetitions(c.Workers, c.Repetitions, c.BurnIn); err != nil {
		return err
	}
	if c.RunsPerSecond < 0 {
		return fmt.Errorf("runs per second cannot be negative: %v", c.RunsPerSecond)
	}
	if c.Format != "" && !utils.IsIn(c.Format, bench.Formats) {
		return fmt.Errorf("unknown output format %q; valid: %s", c.Format, strings.Join(bench.Formats, ", "))
	}
	return nil
}
