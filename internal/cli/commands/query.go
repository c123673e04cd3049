package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querybench/querybench/internal/artifacts"
	"github.com/querybench/querybench/internal/cli/config"
	"github.com/querybench/querybench/internal/workbench"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the configured engine",
		Long: `Run SQL against the configured target engine.

Executes one or more semicolon-separated statements and prints the result
of the last one. Supports multiple output formats for scripting and
integration.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  querybench query "SELECT * FROM users"

  # List tables in the engine catalog
  querybench query tables

  # Output as JSON
  querybench query "SELECT * FROM orders" --format json

  # Read SQL from a file
  querybench query --input report.sql

  # Interactive mode
  querybench query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))

	return cmd
}

// openWorkbench wires up the coordinator against the configured target. The
// returned cleanup must be called when the command finishes.
func openWorkbench(ctx context.Context, cfg *config.Config) (*workbench.Coordinator, func(), error) {
	logger := config.GetLogger(ctx)

	var history workbench.HistoryRecorder
	var store *artifacts.SQLiteStore

	// Record explicit submissions in the shared history when the artifacts
	// store is reachable; a missing store only disables history.
	if dir := filepath.Dir(cfg.ArtifactsPath); dir == "." || os.MkdirAll(dir, 0750) == nil {
		if s, err := artifacts.Open(cfg.ArtifactsPath); err == nil {
			store = s
			history = s
		}
	}

	db := workbench.NewDatabase(cfg.Target.AdapterConfig(), logger)
	coord := workbench.NewCoordinator(db, history, logger)

	cleanup := func() {
		_ = db.Close()
		if store != nil {
			_ = store.Close()
		}
	}

	if err := coord.Initialize(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return coord, cleanup, nil
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cfg := config.FromContext(cmd.Context())

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cfg, opts)
	}

	coord, cleanup, err := openWorkbench(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return executeAndRender(cmd.Context(), cmd, coord, sqlQuery, opts.Format)
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, coord *workbench.Coordinator, sqlQuery, format string) error {
	res, err := coord.Run(ctx, sqlQuery, workbench.RunOptions{RecordHistory: true})
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%s", res.Message)
	}
	return renderResult(cmd.OutOrStdout(), res, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the engine catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			coord, cleanup, err := openWorkbench(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return renderSchema(cmd.OutOrStdout(), coord.Schema(), opts.Format)
		},
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
