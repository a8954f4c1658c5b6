package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

const (
	// Application info
	appName    = "scopebus"
	appVersion = "0.1.0"
)

func main() {
	defer glog.Flush()

	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNotCovered) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Scoped topic event emitter toolbox",
		Long: `scopebus exercises the in-process scoped topic emitter.
It can normalize scope expressions, test scope coverage, and run YAML scripts
of subscribe and emit steps against an in-memory emitter.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog reads its settings from the standard flag set
			return flag.CommandLine.Parse(nil)
		},
	}

	// Expose glog flags (-v, -logtostderr, ...)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newCoversCommand())
	rootCmd.AddCommand(newRunCommand())

	return rootCmd
}
