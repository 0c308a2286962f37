package main

import (
	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/perfprobe/microbench/pkg/harness"
	"github.com/spf13/pflag"
)

const (
	runnerPrefix  = "runner."
	harnessPrefix = "harness."
)

func runCmdFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	addPrefixedFlags(fs, runnerPrefix, bench.DefaultConfig().AddToFlagSet)
	addPrefixedFlags(fs, harnessPrefix, harness.DefaultConfig().AddToFlagSet)
	return fs
}

// addPrefixedFlags adds the flags defined by add to fs, every name prefixed
// so it maps onto its section of the config file.
func addPrefixedFlags(fs *pflag.FlagSet, prefix string, add func(*pflag.FlagSet)) {
	section := pflag.NewFlagSet("", pflag.ContinueOnError)
	add(section)
	section.VisitAll(func(f *pflag.Flag) {
		prefixed := *f
		prefixed.Name = prefix + f.Name
		fs.AddFlag(&prefixed)
	})
}
