package main

import (
	"bytes"
	"fmt"

	"github.com/blagojts/viper"
	"github.com/perfprobe/microbench/pkg/bench"
	"github.com/perfprobe/microbench/pkg/harness"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const writeConfigTo = "./config.yaml"

func initConfigCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate example config yaml file and save it to " + writeConfigTo,
		RunE:  config,
	}
	cmd.Flags().String("output", writeConfigTo, "where to write the example config")
	return cmd
}

func config(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("could not read value for output flag: %v", err)
	}
	v, err := exampleConfigInViper(newRunConfig(bench.DefaultConfig(), harness.DefaultConfig()))
	if err != nil {
		return err
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write sample config to file %s: %v", path, err)
	}
	printFn("Wrote example config to: %s\n", path)
	return nil
}

func exampleConfigInViper(conf *RunConfig) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// convert RunConfig to yaml to load into viper
	configInBytes, err := yaml.Marshal(conf)
	if err != nil {
		return nil, fmt.Errorf("could not convert example config to yaml: %v", err)
	}
	if err := v.ReadConfig(bytes.NewBuffer(configInBytes)); err != nil {
		return nil, fmt.Errorf("could not load example config in viper: %v", err)
	}
	return v, nil
}
