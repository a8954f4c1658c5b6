package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/scopebus/pkg/scope"
)

// errNotCovered makes covers exit with status 1 without an error message
var errNotCovered = errors.New("scope not covered")

func newCompileCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "compile <scope>",
		Short: "Normalize a scope expression",
		Long: `Compile a scope expression such as "1-10,10-20,*-0" into its normalized
form: sorted, with overlapping and touching ranges merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := scope.Parse(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), set.String())
			if verbose {
				for _, interval := range set {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%v, %v]\n", interval.Min, interval.Max)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "intervals", false, "Also print each interval with its numeric bounds")
	return cmd
}

func newCoversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "covers <accepted> <emitted>",
		Short: "Check whether an emitted scope is accepted",
		Long: `Print true when every range of the emitted scope fits inside a single range
of the accepted scope, false otherwise. Exits with status 1 on false.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accepted, err := scope.Parse(args[0])
			if err != nil {
				return fmt.Errorf("accepted scope: %w", err)
			}
			emitted, err := scope.Parse(args[1])
			if err != nil {
				return fmt.Errorf("emitted scope: %w", err)
			}

			covered := accepted.Covers(emitted)
			fmt.Fprintln(cmd.OutOrStdout(), covered)
			if !covered {
				return errNotCovered
			}
			return nil
		},
	}
}
