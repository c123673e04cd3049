package workbench

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/querybench/querybench/internal/adapter"
)

// genericExecError is reported when the engine fails without a usable message.
const genericExecError = "query execution failed"

// Database owns the single live adapter connection. Initialization is
// idempotent: repeated calls return the already-established handle, and
// concurrent calls before the first completes collapse into one underlying
// initialization via singleflight.
type Database struct {
	cfg    adapter.Config
	logger *slog.Logger

	initGroup singleflight.Group

	mu sync.RWMutex
	db adapter.Adapter
}

// NewDatabase creates a Database for the given adapter config. No connection
// is opened until Initialize is called.
func NewDatabase(cfg adapter.Config, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Database{cfg: cfg, logger: logger}
}

// Initialize establishes the engine connection and seeds baseline schema
// objects. Safe to call repeatedly and from concurrent goroutines.
func (d *Database) Initialize(ctx context.Context) error {
	d.mu.RLock()
	ready := d.db != nil
	d.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := d.initGroup.Do("init", func() (any, error) {
		// Re-check under the flight: a previous flight may have finished
		// between the fast path and Do.
		d.mu.RLock()
		ready := d.db != nil
		d.mu.RUnlock()
		if ready {
			return nil, nil
		}

		a, err := adapter.New(d.cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create adapter: %w", err)
		}

		if err := a.Connect(ctx, d.cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		if err := seed(ctx, a); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}

		d.mu.Lock()
		d.db = a
		d.mu.Unlock()

		d.logger.Info("database initialized", "dialect", a.DialectName())
		return nil, nil
	})
	return err
}

// Ready reports whether the handle has been initialized.
func (d *Database) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db != nil
}

// Close releases the engine connection.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Execute runs one or more statements and returns the result of the last
// statement in the batch. Engine failures are converted into a structured
// error result rather than returned; callers never need to catch.
func (d *Database) Execute(ctx context.Context, sqlText string) Result {
	start := time.Now()

	d.mu.RLock()
	db := d.db
	d.mu.RUnlock()
	if db == nil {
		return Result{
			Status:     StatusError,
			Message:    "database not ready",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	stmts := splitStatements(sqlText)
	if len(stmts) == 0 {
		return Result{
			Status:     StatusError,
			Message:    "no statement to execute",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	var last Result
	for _, stmt := range stmts {
		res, err := queryStatement(ctx, db, stmt)
		if err != nil {
			msg := err.Error()
			if msg == "" {
				msg = genericExecError
			}
			return Result{
				Status:     StatusError,
				Message:    msg,
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
		last = res
	}

	last.Status = StatusSuccess
	last.DurationMs = time.Since(start).Milliseconds()
	last.Message = fmt.Sprintf("%d row(s) in %dms", len(last.Rows), last.DurationMs)
	return last
}

// ListTables returns the catalog snapshot from the engine.
func (d *Database) ListTables(ctx context.Context) (map[string][]string, error) {
	d.mu.RLock()
	db := d.db
	d.mu.RUnlock()
	if db == nil {
		return nil, fmt.Errorf("database not ready")
	}
	return db.ListTables(ctx)
}

// queryStatement runs a single statement and collects its row set.
func queryStatement(ctx context.Context, db adapter.Adapter, stmt string) (Result, error) {
	rows, err := db.Query(ctx, stmt)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	var collected []Row
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return Result{}, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			val := values[i]
			// Convert []byte to string for readability
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		collected = append(collected, row)
	}

	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	return Result{Columns: cols, Rows: collected}, nil
}
