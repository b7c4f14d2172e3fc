package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - temporal-aware access-control decision engine",
	Long: `Saturn evaluates data-access requests against temporal policy: the
classical contextual-integrity tuple (data type, subject, sender,
recipient, transmission principle) extended with a temporal context
(time, situation, emergency state, organizational role, access window).

It composes decisions from legal holds, emergency overrides, service
bypass, weighted rule matching, and organizational-relationship context,
and records every decision for audit.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
