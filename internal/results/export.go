package results

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/querybench/querybench/internal/workbench"
)

// ExportCSV writes the result set as comma-separated text: a header row of
// raw column names, then one line per row with each cell JSON-encoded before
// joining.
func ExportCSV(w io.Writer, columns []string, rows []workbench.Row) error {
	if _, err := fmt.Fprintln(w, strings.Join(columns, ",")); err != nil {
		return err
	}

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = jsonCell(row[col])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, ",")); err != nil {
			return err
		}
	}
	return nil
}

// jsonCell encodes a single cell value as JSON, falling back to the quoted
// display form for values JSON cannot represent.
func jsonCell(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(FormatCell(v))
	}
	return string(b)
}

// ExportFilename returns the download name for an export taken at t:
// query-results-<ISO8601 timestamp without milliseconds or zone>.csv.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("query-results-%s.csv", t.UTC().Format("2006-01-02T15:04:05"))
}
