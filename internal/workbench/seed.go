package workbench

import (
	"context"
	"fmt"

	"github.com/querybench/querybench/internal/adapter"
)

// Baseline schema objects created on every initialization. IF NOT EXISTS
// keeps table creation idempotent; seed rows are guarded by per-row
// existence checks below.
var seedSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL,
		email VARCHAR NOT NULL,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		amount DOUBLE NOT NULL,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
}

// seedRows maps an existence-check query to the insert to run when the check
// returns zero. Checks are literal SQL because the adapter boundary carries
// plain statements.
var seedRows = []struct {
	check  string
	insert string
}{
	{
		check:  `SELECT count(*) FROM users WHERE id = 1`,
		insert: `INSERT INTO users (id, name, email) VALUES (1, 'Ada Lovelace', 'ada@example.com')`,
	},
	{
		check:  `SELECT count(*) FROM users WHERE id = 2`,
		insert: `INSERT INTO users (id, name, email) VALUES (2, 'Grace Hopper', 'grace@example.com')`,
	},
	{
		check:  `SELECT count(*) FROM orders WHERE id = 1`,
		insert: `INSERT INTO orders (id, user_id, amount) VALUES (1, 1, 42.50)`,
	},
	{
		check:  `SELECT count(*) FROM orders WHERE id = 2`,
		insert: `INSERT INTO orders (id, user_id, amount) VALUES (2, 2, 17.25)`,
	},
}

// seed establishes the baseline schema objects. Re-running must not duplicate
// seed rows.
func seed(ctx context.Context, db adapter.Adapter) error {
	for _, stmt := range seedSchema {
		if err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create seed table: %w", err)
		}
	}

	for _, row := range seedRows {
		exists, err := rowExists(ctx, db, row.check)
		if err != nil {
			return fmt.Errorf("failed to check seed row: %w", err)
		}
		if exists {
			continue
		}
		if err := db.Exec(ctx, row.insert); err != nil {
			return fmt.Errorf("failed to insert seed row: %w", err)
		}
	}

	return nil
}

// rowExists runs a count query and reports whether it returned a non-zero
// count.
func rowExists(ctx context.Context, db adapter.Adapter, check string) (bool, error) {
	rows, err := db.Query(ctx, check)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return false, rows.Err()
	}

	var count int64
	if err := rows.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, rows.Err()
}
