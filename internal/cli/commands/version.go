package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display QueryBench version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryBench v%s\n", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "SQL Workbench built with Go and DuckDB")
			if buildDate != "unknown" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Built: %s (%s)\n", buildDate, gitCommit)
			}
		},
	}
}
