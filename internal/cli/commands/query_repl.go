package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/querybench/querybench/internal/cli/config"
	"github.com/querybench/querybench/internal/completion"
	"github.com/querybench/querybench/internal/workbench"
)

func runQueryREPL(cmd *cobra.Command, cfg *config.Config, opts *QueryOptions) error {
	ctx := cmd.Context()

	coord, cleanup, err := openWorkbench(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// Readline history lives next to the artifacts database
	historyFile := filepath.Join(filepath.Dir(cfg.ArtifactsPath), "repl_history")

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "querybench> ",
		HistoryFile:     historyFile,
		AutoComplete:    newSchemaCompleter(coord),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryBench REPL (target: %s)\n", cfg.Target.Type)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	// REPL loop
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("querybench> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, coord, line, opts.Format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("       ...> ")
			continue
		}
		rl.SetPrompt("querybench> ")

		query := multiLineBuffer.String()
		multiLineBuffer.Reset()

		if err := executeAndRender(ctx, cmd, coord, query, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleDotCommand(cmd *cobra.Command, coord *workbench.Coordinator, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".tables":
		if err := renderSchema(cmd.OutOrStdout(), coord.Schema(), format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		schema := coord.Schema()
		cols, ok := schema[parts[1]]
		if !ok {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: table '%s' not found\n", parts[1])
			return true
		}
		if err := renderSchema(cmd.OutOrStdout(), map[string][]string{parts[1]: cols}, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".log":
		printLog(cmd.OutOrStdout(), coord.LogEntries())
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printLog(w io.Writer, entries []workbench.LogEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "(log is empty)")
		return
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s  [%s]  %s (%dms)\n",
			e.Timestamp.Local().Format("15:04:05"), e.Status, e.Message, e.DurationMs)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables in the engine catalog
  .schema <name>  Show columns for a table
  .log            Show the execution log
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names and SQL keywords
`
	_, _ = fmt.Fprintln(w, help)
}

// newSchemaCompleter creates a readline completer from the schema snapshot
// plus SQL keywords and dot-commands.
func newSchemaCompleter(coord *workbench.Coordinator) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	for table := range coord.Schema() {
		items = append(items, readline.PcItem(table))
	}
	for _, kw := range completion.Keywords {
		items = append(items, readline.PcItem(kw))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".log"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
