// Package commands implements the QueryBench subcommands.
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/querybench/querybench/internal/artifacts"
	"github.com/querybench/querybench/internal/cli/config"
	"github.com/querybench/querybench/internal/ui"
	"github.com/querybench/querybench/internal/workbench"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		port    int
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the workbench UI server",
		Long: `Start the browser-based workbench.

The server connects to the configured target engine, seeds the example
schema on first use, and serves the query editor at the configured port.`,
		Example: `  # Serve with an in-memory DuckDB
  querybench serve

  # Serve a file-backed database on a custom port
  querybench serve --database warehouse.duckdb --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.GetLogger(cmd.Context())

			uiCfg := cfg.GetUIConfig()
			if port != 0 {
				uiCfg.Port = port
			}
			if noWatch {
				uiCfg.Watch = false
			}

			// Artifacts live next to the workspace by default
			if dir := filepath.Dir(cfg.ArtifactsPath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return fmt.Errorf("failed to create artifacts directory: %w", err)
				}
			}

			store, err := artifacts.Open(cfg.ArtifactsPath)
			if err != nil {
				return fmt.Errorf("failed to open artifacts store: %w", err)
			}
			defer func() { _ = store.Close() }()

			db := workbench.NewDatabase(cfg.Target.AdapterConfig(), logger)
			defer func() { _ = db.Close() }()

			coord := workbench.NewCoordinator(db, store, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := coord.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			srv := ui.NewServer(ui.Config{
				Coordinator:   coord,
				Store:         store,
				Port:          uiCfg.Port,
				Watch:         uiCfg.Watch,
				ScriptsDir:    cfg.ScriptsDir,
				SessionSecret: uiCfg.SessionSecret,
				Logger:        logger,
			})

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable the workspace scripts watcher")

	return cmd
}
