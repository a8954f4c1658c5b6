package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	internalemitter "github.com/rmacdonaldsmith/scopebus/internal/emitter"
)

func newRunCommand() *cobra.Command {
	var (
		forceSync     bool
		recoverPanics bool
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run a YAML script of subscribe and emit steps",
		Long: `Run a script of emitter operations against a fresh in-memory emitter and
print every listener invocation. Use "-" to read the script from stdin.

The emitter name and panic recovery default to SCOPEBUS_NAME and
SCOPEBUS_RECOVER_PANICS; a script name overrides SCOPEBUS_NAME.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(cmd, args[0])
			if err != nil {
				return err
			}

			config, err := internalemitter.ConfigFromEnv()
			if err != nil {
				return err
			}
			if script.Name != "" {
				config.Name = script.Name
			}
			if cmd.Flags().Changed("recover") {
				config.WithRecoverPanics(recoverPanics)
			}

			em, err := internalemitter.NewInMemoryEmitter(config)
			if err != nil {
				return err
			}
			defer em.Close()

			return NewRunner(em, cmd.OutOrStdout(), forceSync, timeout).Run(script)
		},
	}

	cmd.Flags().BoolVar(&forceSync, "sync", false, "Dispatch every emit step immediately")
	cmd.Flags().BoolVar(&recoverPanics, "recover", false, "Recover panicking deferred listeners")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Maximum wait for deferred listeners per emit step")

	return cmd
}

func loadScript(cmd *cobra.Command, path string) (*Script, error) {
	if path == "-" {
		return ParseScript(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	return ParseScript(f)
}
