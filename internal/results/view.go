// Package results provides client-facing presentation helpers over an
// in-memory result set: substring filtering, fixed-size pagination, and cell
// formatting. All functions are pure; the engine has already produced the
// rows.
package results

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/querybench/querybench/internal/workbench"
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// NullLiteral is rendered for NULL values so they remain distinguishable
// from empty-string data.
const NullLiteral = "NULL"

// Filter returns the rows where any stringified field value contains the
// search term, case-insensitively. A blank term returns all rows.
func Filter(rows []workbench.Row, term string) []workbench.Row {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}

	var out []workbench.Row
	for _, row := range rows {
		for _, val := range row {
			if strings.Contains(strings.ToLower(FormatCell(val)), term) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// PageCount returns ceil(n / PageSize); zero rows yield zero pages.
func PageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate slices rows for the given 1-based page, clamped to the valid
// range.
func Paginate(rows []workbench.Row, page int) []workbench.Row {
	pages := PageCount(len(rows))
	if pages == 0 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// View tracks the presentation state over a cached result set. Changing the
// search term resets the page index to 1.
type View struct {
	SearchTerm string
	Page       int
}

// Apply updates the view with the requested term and page, then returns the
// filtered page of rows and the total page count.
func (v *View) Apply(rows []workbench.Row, term string, page int) ([]workbench.Row, int) {
	if term != v.SearchTerm {
		v.SearchTerm = term
		page = 1
	}
	if page < 1 {
		page = 1
	}
	v.Page = page

	filtered := Filter(rows, v.SearchTerm)
	pages := PageCount(len(filtered))
	if pages > 0 && v.Page > pages {
		v.Page = pages
	}
	return Paginate(filtered, v.Page), pages
}

// FormatCell renders a single cell value for display. NULL becomes a
// distinguishable literal marker; composite values are serialized to
// canonical JSON.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return NullLiteral
	case []byte:
		return string(val)
	case string:
		return val
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}
