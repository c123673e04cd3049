package workbench

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Validation errors returned by Run before any statement reaches the engine.
var (
	// ErrNotReady is returned when the database handle is not initialized.
	ErrNotReady = errors.New("database not ready")

	// ErrEmptyQuery is returned for blank or whitespace-only query text.
	ErrEmptyQuery = errors.New("empty query")

	// ErrBusy is returned when another execution is already in flight.
	// Concurrent run attempts are rejected, not queued.
	ErrBusy = errors.New("a query is already running")
)

// HistoryRecorder receives the query text of explicit run submissions.
type HistoryRecorder interface {
	AppendHistory(query string) error
}

// RunOptions controls per-run behavior.
type RunOptions struct {
	// RecordHistory appends the query to run history. Set for explicit
	// user-initiated submissions; history records the attempt independent
	// of engine-reported success.
	RecordHistory bool
}

// Coordinator sequences run requests against the database handle, maintains
// the bounded execution log, and keeps a cached result set and schema
// snapshot for the presentation layer.
//
// Execution follows Idle -> Running -> {Succeeded, Failed} -> Idle; at most
// one execution is Running at a time.
type Coordinator struct {
	db      *Database
	history HistoryRecorder
	logger  *slog.Logger
	log     *queryLog

	mu      sync.Mutex
	busy    bool
	columns []string
	rows    []Row
	schema  map[string][]string
}

// NewCoordinator creates a Coordinator. history may be nil, in which case run
// submissions are not recorded.
func NewCoordinator(db *Database, history HistoryRecorder, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		db:      db,
		history: history,
		logger:  logger,
		log:     &queryLog{},
	}
}

// Initialize brings up the database handle and takes the first schema
// snapshot. Idempotent; concurrent calls collapse into one initialization.
func (c *Coordinator) Initialize(ctx context.Context) error {
	if err := c.db.Initialize(ctx); err != nil {
		return err
	}
	c.RefreshSchema(ctx)
	return nil
}

// Ready reports whether the database handle is initialized.
func (c *Coordinator) Ready() bool {
	return c.db.Ready()
}

// Busy reports whether an execution is currently in flight.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Run validates and executes a query. Preconditions are checked in order:
// the handle must be initialized, then the text must be non-blank after
// trimming. Validation failures return an error and leave the log untouched.
// Engine failures are reported inside the returned Result, not as an error.
func (c *Coordinator) Run(ctx context.Context, sqlText string, opts RunOptions) (Result, error) {
	trimmed := strings.TrimSpace(sqlText)

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Result{}, ErrBusy
	}
	if !c.db.Ready() {
		c.mu.Unlock()
		return Result{}, ErrNotReady
	}
	if trimmed == "" {
		c.mu.Unlock()
		return Result{}, ErrEmptyQuery
	}
	c.busy = true
	c.mu.Unlock()

	res := c.db.Execute(ctx, trimmed)

	if opts.RecordHistory && c.history != nil {
		if err := c.history.AppendHistory(trimmed); err != nil {
			c.logger.Warn("failed to record history", "error", err)
		}
	}

	c.log.append(LogEntry{
		Message:    res.Message,
		Status:     res.Status,
		Timestamp:  time.Now().UTC(),
		DurationMs: res.DurationMs,
	})

	c.mu.Lock()
	if len(res.Rows) > 0 {
		c.columns = res.Columns
		c.rows = res.Rows
	} else {
		c.columns = nil
		c.rows = nil
	}
	c.busy = false
	c.mu.Unlock()

	// Refresh regardless of outcome: DDL may have executed as part of a
	// failed multi-statement batch.
	c.RefreshSchema(ctx)

	return res, nil
}

// RefreshSchema replaces the cached schema snapshot with a fresh catalog
// read. Failures are logged and leave the previous snapshot in place.
func (c *Coordinator) RefreshSchema(ctx context.Context) {
	tables, err := c.db.ListTables(ctx)
	if err != nil {
		c.logger.Warn("schema refresh failed", "error", err)
		return
	}

	c.mu.Lock()
	c.schema = tables
	c.mu.Unlock()
}

// Columns returns the cached column list of the last non-empty result set.
func (c *Coordinator) Columns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// Rows returns the cached rows of the last non-empty result set.
func (c *Coordinator) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Schema returns the cached table-to-columns snapshot.
func (c *Coordinator) Schema() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]string, len(c.schema))
	for table, cols := range c.schema {
		copied := make([]string, len(cols))
		copy(copied, cols)
		out[table] = copied
	}
	return out
}

// LogEntries returns the execution log, newest first.
func (c *Coordinator) LogEntries() []LogEntry {
	return c.log.list()
}
