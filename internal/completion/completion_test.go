package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string][]string{
	"users":  {"id", "name", "email", "created_at"},
	"orders": {"id", "user_id", "amount"},
}

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestSuggestColumnsAfterTableDot(t *testing.T) {
	items := Suggest(testSchema, "SELECT users.")
	require.NotEmpty(t, items)

	assert.Equal(t, []string{"id", "name", "email", "created_at"}, labels(items))
	for _, item := range items {
		assert.Equal(t, KindColumn, item.Kind)
		assert.Equal(t, "users", item.Detail)
	}
}

func TestSuggestUnknownTableDot(t *testing.T) {
	assert.Empty(t, Suggest(testSchema, "SELECT missing."))
}

func TestSuggestKeywordsAndTables(t *testing.T) {
	items := Suggest(testSchema, "")
	got := labels(items)

	assert.Contains(t, got, "SELECT")
	assert.Contains(t, got, "users")
	assert.Contains(t, got, "orders")
}

func TestSuggestFiltersByPrefix(t *testing.T) {
	items := Suggest(testSchema, "SELECT * FROM us")
	got := labels(items)

	assert.Contains(t, got, "users")
	assert.NotContains(t, got, "orders")
	assert.NotContains(t, got, "SELECT")
}

func TestSuggestPrefixCaseInsensitive(t *testing.T) {
	items := Suggest(testSchema, "sel")
	got := labels(items)

	assert.Contains(t, got, "SELECT")
}

func TestSuggestReflectsSchemaChanges(t *testing.T) {
	before := Suggest(testSchema, "SELECT * FROM ")
	assert.Contains(t, labels(before), "users")

	// Dropping a table removes its suggestions on the next snapshot.
	after := Suggest(map[string][]string{"orders": {"id"}}, "SELECT * FROM ")
	assert.NotContains(t, labels(after), "users")
	assert.Contains(t, labels(after), "orders")
}

func TestTableAccess(t *testing.T) {
	tests := []struct {
		input string
		table string
		ok    bool
	}{
		{"users.", "users", true},
		{"SELECT users.", "users", true},
		{"SELECT u1.", "u1", true},
		{"SELECT ", "", false},
		{".", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		table, ok := tableAccess(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.table, table, "input %q", tt.input)
	}
}
