// Package workbench implements the coordination layer of QueryBench: the
// initialize-once database handle, the run-query lifecycle, and the bounded
// execution log. The SQL engine itself is delegated to an adapter.
package workbench

// Status describes the outcome of an execution.
type Status string

// Execution status constants.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Row is a schema-less mapping of column name to value. Column order is not
// carried by the map; Result.Columns preserves the order reported by the
// engine.
type Row map[string]any

// Result holds the outcome of executing a statement batch. For multi-statement
// batches it reflects the last statement. Results are immutable once produced.
type Result struct {
	Columns    []string
	Rows       []Row
	DurationMs int64
	Message    string
	Status     Status
}

// OK reports whether the execution succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
