package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDuckDBAdapter_ConnectInMemory(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter()

	err := adapter.Connect(ctx, Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to connect to in-memory DuckDB: %v", err)
	}
	defer adapter.Close()
}

func TestDuckDBAdapter_ConnectFileBased(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.duckdb")

	err := adapter.Connect(ctx, Config{Path: dbPath})
	if err != nil {
		t.Fatalf("failed to connect to file-based DuckDB: %v", err)
	}
	defer adapter.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestDuckDBAdapter_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter()

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Exec(ctx, `CREATE TABLE users (id INTEGER, name VARCHAR)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	if err := adapter.Exec(ctx, `INSERT INTO users VALUES (1, 'alice'), (2, 'bob')`); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}

	rows, err := adapter.Query(ctx, `SELECT id, name FROM users ORDER BY id`)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	defer rows.Close()

	expected := []struct {
		id   int
		name string
	}{
		{1, "alice"},
		{2, "bob"},
	}

	i := 0
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			t.Fatalf("failed to scan row: %v", err)
		}

		if i >= len(expected) {
			t.Fatalf("unexpected extra row: id=%d, name=%s", id, name)
		}

		if id != expected[i].id || name != expected[i].name {
			t.Errorf("row %d: got (%d, %s), want (%d, %s)",
				i, id, name, expected[i].id, expected[i].name)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("row iteration error: %v", err)
	}

	if i != len(expected) {
		t.Errorf("got %d rows, want %d", i, len(expected))
	}
}

func TestDuckDBAdapter_ListTables(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter()

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Exec(ctx, `CREATE TABLE users (id INTEGER, name VARCHAR, email VARCHAR)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if err := adapter.Exec(ctx, `CREATE TABLE orders (id INTEGER, user_id INTEGER)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	tables, err := adapter.ListTables(ctx)
	if err != nil {
		t.Fatalf("failed to list tables: %v", err)
	}

	users, ok := tables["users"]
	if !ok {
		t.Fatal("users table not found in catalog")
	}
	wantUsers := []string{"id", "name", "email"}
	if len(users) != len(wantUsers) {
		t.Fatalf("users columns: got %v, want %v", users, wantUsers)
	}
	for i := range wantUsers {
		if users[i] != wantUsers[i] {
			t.Errorf("users column %d: got %s, want %s", i, users[i], wantUsers[i])
		}
	}

	if _, ok := tables["orders"]; !ok {
		t.Error("orders table not found in catalog")
	}
}

func TestDuckDBAdapter_QueryBeforeConnect(t *testing.T) {
	adapter := NewDuckDBAdapter()

	if _, err := adapter.Query(context.Background(), "SELECT 1"); err == nil {
		t.Error("expected error when querying before connect")
	}
	if err := adapter.Exec(context.Background(), "SELECT 1"); err == nil {
		t.Error("expected error when executing before connect")
	}
	if _, err := adapter.ListTables(context.Background()); err == nil {
		t.Error("expected error when listing tables before connect")
	}
}
