// Package completion computes autocomplete suggestions for the query editor
// from the cached schema snapshot.
package completion

import (
	"sort"
	"strings"
)

// ItemKind classifies a suggestion.
type ItemKind string

// Suggestion kinds.
const (
	KindKeyword ItemKind = "keyword"
	KindTable   ItemKind = "table"
	KindColumn  ItemKind = "column"
)

// Item is a single autocomplete suggestion.
type Item struct {
	Label  string   `json:"label"`
	Kind   ItemKind `json:"kind"`
	Detail string   `json:"detail,omitempty"`
}

// Keywords is the fixed SQL keyword list offered alongside table names.
var Keywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT JOIN", "RIGHT JOIN",
	"INNER JOIN", "GROUP BY", "ORDER BY", "HAVING", "LIMIT", "OFFSET",
	"AS", "ON", "AND", "OR", "NOT", "IN", "BETWEEN", "LIKE",
	"IS NULL", "IS NOT NULL", "DISTINCT", "CASE", "WHEN", "THEN",
	"ELSE", "END", "WITH", "UNION", "UNION ALL", "EXCEPT", "INTERSECT",
	"INSERT INTO", "VALUES", "UPDATE", "SET", "DELETE FROM",
	"CREATE TABLE", "DROP TABLE", "ALTER TABLE",
}

// Suggest returns completion items for the text immediately preceding the
// cursor. When the text ends with "<identifier>." and the identifier is a
// known table, only that table's columns are suggested; otherwise the fixed
// keyword list plus all known table names, filtered by the word being typed.
func Suggest(schema map[string][]string, before string) []Item {
	if table, ok := tableAccess(before); ok {
		if cols, known := schema[table]; known {
			items := make([]Item, 0, len(cols))
			for _, col := range cols {
				items = append(items, Item{Label: col, Kind: KindColumn, Detail: table})
			}
			return items
		}
		return nil
	}

	prefix := strings.ToLower(currentWord(before))

	var items []Item
	for _, kw := range Keywords {
		if prefix == "" || strings.HasPrefix(strings.ToLower(kw), prefix) {
			items = append(items, Item{Label: kw, Kind: KindKeyword})
		}
	}

	tables := make([]string, 0, len(schema))
	for table := range schema {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		if prefix == "" || strings.HasPrefix(strings.ToLower(table), prefix) {
			items = append(items, Item{Label: table, Kind: KindTable})
		}
	}

	return items
}

// tableAccess reports whether the text before the cursor ends with
// "<identifier>." and returns that identifier.
func tableAccess(before string) (string, bool) {
	if !strings.HasSuffix(before, ".") {
		return "", false
	}

	end := len(before) - 1
	start := end
	for start > 0 && isIdentChar(before[start-1]) {
		start--
	}
	if start == end {
		return "", false
	}
	return before[start:end], true
}

// currentWord extracts the identifier being typed at the end of the text.
func currentWord(before string) string {
	start := len(before)
	for start > 0 && isIdentChar(before[start-1]) {
		start--
	}
	return before[start:]
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}
