// Package query provides the HTTP handlers for the workbench page: running
// SQL, paging and searching results, saved queries, history, autocomplete,
// and CSV export.
package query

// Signals represents the signals sent from the frontend.
type Signals struct {
	// SQL is the editor buffer.
	SQL string `json:"sql"`

	// SearchTerm filters the cached result set.
	SearchTerm string `json:"searchTerm"`

	// Page is the 1-based results page.
	Page int `json:"page"`

	// SaveName names the query in the save dialog.
	SaveName string `json:"saveName"`

	// Before is the text immediately preceding the cursor, used for
	// autocomplete.
	Before string `json:"before"`
}

// resultsView is the data handed to the results table template.
type resultsView struct {
	Columns    []string
	Rows       [][]string
	RowCount   int
	Page       int
	PageCount  int
	SearchTerm string
	Message    string
	IsError    bool
	DurationMS int64
}

// logView is the data handed to the log panel template.
type logView struct {
	Entries []logEntryView
}

type logEntryView struct {
	Message    string
	Status     string
	Time       string
	DurationMS int64
}

// scriptItem is a workspace SQL script offered for loading.
type scriptItem struct {
	Name string
	Path string
}
