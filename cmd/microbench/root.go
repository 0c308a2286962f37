package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

// printFn is used for all informational output; change for testing
var printFn = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:           "microbench",
		Short:         "Time integer, floating-point and memory workloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	runCmd, err := initRunCMD()
	if err != nil {
		panic(err)
	}
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initConfigCMD())
	rootCmd.AddCommand(initInfoCMD())
}
