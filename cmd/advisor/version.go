package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the advisor build version",
		Long: `Print the version, commit and build date of this advisor binary.

Attach the output when reporting a plugin or advice problem so the
engine build that wove the advices can be identified.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "advisor %s (%s, built %s)\n", version, commit, date)
			return nil
		},
	}
}
