package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/querybench/querybench/internal/results"
	"github.com/querybench/querybench/internal/workbench"
)

func renderResult(w io.Writer, res workbench.Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, res.Rows)
	case "csv":
		return renderCSV(w, res.Columns, res.Rows)
	case "md", "markdown":
		return renderMarkdown(w, res.Columns, res.Rows)
	default:
		return renderTable(w, res.Columns, res.Rows)
	}
}

func renderTable(w io.Writer, cols []string, rows []workbench.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, r := range rows {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = results.FormatCell(r[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderJSON(w io.Writer, rows []workbench.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderCSV(w io.Writer, cols []string, rows []workbench.Row) error {
	// Header
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	// Rows
	for _, r := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeCSV(results.FormatCell(r[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows []workbench.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	// Separator
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for _, r := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = results.FormatCell(r[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// renderSchema prints the table-to-columns catalog snapshot.
func renderSchema(w io.Writer, schema map[string][]string, format string) error {
	tables := make([]string, 0, len(schema))
	for name := range schema {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	if format == "json" {
		out := make([]map[string]any, 0, len(tables))
		for _, name := range tables {
			out = append(out, map[string]any{"table": name, "columns": schema[name]})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Columns"})
	for _, name := range tables {
		t.AppendRow(table.Row{name, strings.Join(schema[name], ", ")})
	}
	t.Render()
	return nil
}
