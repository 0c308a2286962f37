package main

import (
	"time"

	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/perfprobe/microbench/pkg/harness"
)

// RunConfig is the layout of config.yaml.
type RunConfig struct {
	Runner  *RunnerConfig  `yaml:"runner"`
	Harness *HarnessConfig `yaml:"harness"`
}

type RunnerConfig struct {
	Iterations        uint64   `yaml:"iterations"`
	MemoryElements    uint64   `yaml:"memory-elements"`
	MemoryBudgetBytes uint64   `yaml:"memory-budget-bytes"`
	Workloads         []string `yaml:"workloads"`
}

type HarnessConfig struct {
	Workers           uint          `yaml:"workers"`
	Repetitions       uint64        `yaml:"repetitions"`
	BurnIn            uint64        `yaml:"burn-in"`
	PrintInterval     uint64        `yaml:"print-interval"`
	RunsPerSecond     float64       `yaml:"runs-per-second"`
	CooldownIntervals string        `yaml:"cooldown-intervals"`
	ReportingPeriod   time.Duration `yaml:"reporting-period"`
	Seed              int64         `yaml:"seed"`
	HDRLatencies      string        `yaml:"hdr-latencies"`
	ResultsFile       string        `yaml:"results-file"`
	MemProfile        string        `yaml:"memprofile"`
	Format            string        `yaml:"format"`
}

func newRunConfig(b bench.Config, h harness.Config) *RunConfig {
	workloads := b.Workloads
	if len(workloads) == 0 {
		workloads = bench.WorkloadNames
	}
	return &RunConfig{
		Runner: &RunnerConfig{
			Iterations:        b.Iterations,
			MemoryElements:    b.MemoryElements,
			MemoryBudgetBytes: b.MemoryBudget,
			Workloads:         workloads,
		},
		Harness: &HarnessConfig{
			Workers:           h.Workers,
			Repetitions:       h.Repetitions,
			BurnIn:            h.BurnIn,
			PrintInterval:     h.PrintInterval,
			RunsPerSecond:     h.RunsPerSecond,
			CooldownIntervals: h.CooldownIntervals,
			ReportingPeriod:   h.ReportingPeriod,
			Seed:              h.Seed,
			HDRLatencies:      h.HDRLatenciesFile,
			ResultsFile:       h.ResultsFile,
			MemProfile:        h.MemProfile,
			Format:            h.Format,
		},
	}
}
