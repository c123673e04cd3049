package results

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybench/querybench/internal/workbench"
)

func TestExportCSV(t *testing.T) {
	columns := []string{"col1", "col2"}
	rows := []workbench.Row{
		{"col1": "a", "col2": 1},
		{"col1": "b,c", "col2": nil},
	}

	var sb strings.Builder
	require.NoError(t, ExportCSV(&sb, columns, rows))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "col1,col2", lines[0])
	assert.Equal(t, `"a",1`, lines[1])
	assert.Equal(t, `"b,c",null`, lines[2])
}

func TestExportCSVEmptyResult(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, ExportCSV(&sb, []string{"only"}, nil))
	assert.Equal(t, "only\n", sb.String())
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 987654321, time.UTC)
	assert.Equal(t, "query-results-2025-03-14T09:26:53.csv", ExportFilename(ts))
}

func TestExportFilenameConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2025, 3, 14, 11, 0, 0, 0, loc)
	assert.Equal(t, "query-results-2025-03-14T09:00:00.csv", ExportFilename(ts))
}
