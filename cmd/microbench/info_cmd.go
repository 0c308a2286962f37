package main

import (
	"fmt"

	"github.com/perfprobe/microbench/internal/session"
	"github.com/spf13/cobra"
)

func initInfoCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print build, host and process information",
		RunE:  info,
	}
}

func info(cmd *cobra.Command, _ []string) error {
	s := session.New(version)
	w := cmd.OutOrStdout()
	if err := s.WriteBanner(w); err != nil {
		return err
	}
	if err := s.WriteHello(w); err != nil {
		return err
	}
	ps, err := s.ProcessStats()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "RSS: %d bytes\nVMS: %d bytes\nCPU: %0.2f%%\n", ps.RSS, ps.VMS, ps.CPUPercent)
	return err
}
