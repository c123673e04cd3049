package results

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybench/querybench/internal/workbench"
)

func makeRows(n int) []workbench.Row {
	rows := make([]workbench.Row, n)
	for i := range rows {
		rows[i] = workbench.Row{"id": i + 1, "name": fmt.Sprintf("user-%d", i+1)}
	}
	return rows
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	rows := []workbench.Row{
		{"id": 1, "name": "Ada Lovelace"},
		{"id": 2, "name": "Grace Hopper"},
		{"id": 3, "name": nil},
	}

	assert.Len(t, Filter(rows, "ada"), 1)
	assert.Len(t, Filter(rows, "LOVELACE"), 1)
	assert.Len(t, Filter(rows, ""), 3)
	assert.Empty(t, Filter(rows, "turing"))

	// Numeric fields are matched on their stringified form.
	assert.Len(t, Filter(rows, "2"), 1)

	// The NULL marker is searchable like any other cell text.
	assert.Len(t, Filter(rows, "null"), 1)
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{11, 2},
		{25, 3},
		{100, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.n), "n=%d", tt.n)
	}
}

func TestPaginate(t *testing.T) {
	rows := makeRows(25)

	page1 := Paginate(rows, 1)
	require.Len(t, page1, PageSize)
	assert.Equal(t, 1, page1[0]["id"])

	page3 := Paginate(rows, 3)
	require.Len(t, page3, 5)
	assert.Equal(t, 21, page3[0]["id"])

	// Out-of-range pages clamp.
	assert.Equal(t, page3, Paginate(rows, 99))
	assert.Equal(t, page1, Paginate(rows, 0))

	assert.Nil(t, Paginate(nil, 1))
}

func TestViewResetsPageOnTermChange(t *testing.T) {
	rows := makeRows(30)
	v := &View{}

	_, pages := v.Apply(rows, "", 3)
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, v.Page)

	// New search term resets to page 1 even though page 3 was requested.
	_, _ = v.Apply(rows, "user", 3)
	assert.Equal(t, 1, v.Page)

	// Same term keeps the requested page.
	_, _ = v.Apply(rows, "user", 2)
	assert.Equal(t, 2, v.Page)
}

func TestViewClampsPageToFilteredSet(t *testing.T) {
	rows := makeRows(30)
	v := &View{SearchTerm: "user"}

	pageRows, pages := v.Apply(rows, "user", 99)
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, v.Page)
	assert.Len(t, pageRows, PageSize)
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"string", "hello", "hello"},
		{"empty string", "", ""},
		{"int", 42, "42"},
		{"float", 3.14, "3.14"},
		{"bytes", []byte("world"), "world"},
		{"bool", true, "true"},
		{"map", map[string]any{"a": 1}, `{"a":1}`},
		{"slice", []any{1, "b"}, `[1,"b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.input))
		})
	}
}
