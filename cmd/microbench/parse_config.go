package main

import (
	"fmt"

	"github.com/blagojts/viper"
	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/perfprobe/microbench/pkg/harness"
)

// fileConfig mirrors the sections of config.yaml onto the internal
// configurations.
type fileConfig struct {
	Runner  bench.Config   `mapstructure:"runner"`
	Harness harness.Config `mapstructure:"harness"`
}

// parseConfig reads both configurations out of v. Flags bound to v supply
// every value the config file leaves out.
func parseConfig(v *viper.Viper) (bench.Config, harness.Config, error) {
	conf := fileConfig{
		Runner:  bench.DefaultConfig(),
		Harness: harness.DefaultConfig(),
	}
	if err := v.Unmarshal(&conf); err != nil {
		return bench.Config{}, harness.Config{}, fmt.Errorf("could not parse configuration: %v", err)
	}
	if err := conf.Runner.Validate(); err != nil {
		return bench.Config{}, harness.Config{}, err
	}
	if err := conf.Harness.Validate(); err != nil {
		return bench.Config{}, harness.Config{}, err
	}
	return conf.Runner, conf.Harness, nil
}
