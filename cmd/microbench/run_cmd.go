package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/blagojts/viper"
	"github.com/perfprobe/microbench/internal/session"
	"github.com/perfprobe/microbench/internal/utils"
	"github.com/perfprobe/microbench/pkg/harness"
	"github.com/spf13/cobra"
)

func initRunCMD() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the workloads and print their timings",
		RunE:  run,
	}
	cmd.Flags().AddFlagSet(runCmdFlags())
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("could not bind flags to configuration: %v", err)
	}
	return cmd, nil
}

func run(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	used, err := utils.SetupConfigFile(v, cfgFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %v", err)
	}
	if used != "" {
		printFn("Using config file: %s\n", used)
	}

	benchCfg, harnessCfg, err := parseConfig(v)
	if err != nil {
		return err
	}

	s := session.New(version)
	if err := s.WriteBanner(cmd.OutOrStdout()); err != nil {
		return err
	}
	if err := s.WriteHello(cmd.OutOrStdout()); err != nil {
		return err
	}

	h, err := harness.New(harnessCfg, benchCfg, s)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_, err = h.Run(ctx)
	return err
}
