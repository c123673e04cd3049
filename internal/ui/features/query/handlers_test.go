package query

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybench/querybench/internal/adapter"
	"github.com/querybench/querybench/internal/artifacts"
	"github.com/querybench/querybench/internal/testutil"
	"github.com/querybench/querybench/internal/ui/notifier"
	"github.com/querybench/querybench/internal/workbench"
)

// fixture holds the wired dependencies for handler tests: an in-memory
// DuckDB workbench, a temp-file artifacts store, and the handlers on top.
type fixture struct {
	handlers *Handlers
	coord    *workbench.Coordinator
	store    *artifacts.SQLiteStore
}

func setup(t *testing.T) *fixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)

	store, err := artifacts.Open(filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	db := workbench.NewDatabase(adapter.Config{Type: "duckdb"}, logger)
	t.Cleanup(func() { _ = db.Close() })

	coord := workbench.NewCoordinator(db, store, logger)
	require.NoError(t, coord.Initialize(context.Background()))

	handlers := NewHandlers(
		coord,
		store,
		sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")),
		notifier.New(),
		t.TempDir(),
		logger,
	)

	return &fixture{handlers: handlers, coord: coord, store: store}
}

// post issues a POST with a datastar signals body and returns the recorder.
func post(t *testing.T, handler http.HandlerFunc, path, signals string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestWorkbenchPageRenders(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.handlers.WorkbenchPage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "QueryBench")
	assert.Contains(t, body, `id="query-results"`)
	assert.Contains(t, body, `id="saved-queries"`)
	assert.Contains(t, body, `id="query-history"`)
}

func TestRunSSEPatchesResults(t *testing.T) {
	f := setup(t)

	rec := post(t, f.handlers.RunSSE, "/api/query/run",
		`{"sql":"SELECT name FROM users ORDER BY id","searchTerm":"","page":1}`)

	body := rec.Body.String()
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "Grace Hopper")
	assert.Contains(t, body, `id="query-results"`)
	assert.Contains(t, body, `id="query-log"`)

	// The explicit submission landed in history.
	history, err := f.store.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "SELECT name FROM users ORDER BY id", history[0].Query)
}

func TestRunSSEEmptyQueryShowsNotice(t *testing.T) {
	f := setup(t)

	rec := post(t, f.handlers.RunSSE, "/api/query/run", `{"sql":"   "}`)

	assert.Contains(t, rec.Body.String(), "Please enter a query to run")

	// Validation failures never reach the log or history.
	assert.Empty(t, f.coord.LogEntries())
	history, err := f.store.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRunSSEEngineErrorIsLogged(t *testing.T) {
	f := setup(t)

	rec := post(t, f.handlers.RunSSE, "/api/query/run",
		`{"sql":"SELECT * FROM no_such_table"}`)

	assert.Contains(t, rec.Body.String(), `id="query-results"`)

	entries := f.coord.LogEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, workbench.StatusError, entries[0].Status)
}

func TestResultsSSEPaginates(t *testing.T) {
	f := setup(t)

	_, err := f.coord.Run(context.Background(), `
		CREATE TABLE nums (n INTEGER);
		INSERT INTO nums VALUES (1),(2),(3),(4),(5),(6),(7),(8),(9),(10),(11),(12);
		SELECT n FROM nums ORDER BY n`, workbench.RunOptions{})
	require.NoError(t, err)

	rec := post(t, f.handlers.ResultsSSE, "/api/query/results",
		`{"searchTerm":"","page":2}`)

	body := rec.Body.String()
	assert.Contains(t, body, "Page 2 of 2")
	assert.Contains(t, body, "<td>11</td>")
	assert.NotContains(t, body, "<td>1</td>")
}

func TestResultsSSEFilterResetsPage(t *testing.T) {
	f := setup(t)

	_, err := f.coord.Run(context.Background(), `
		CREATE TABLE nums (n INTEGER);
		INSERT INTO nums VALUES (1),(2),(3),(4),(5),(6),(7),(8),(9),(10),(11),(12);
		SELECT n FROM nums ORDER BY n`, workbench.RunOptions{})
	require.NoError(t, err)

	// Establish page 2, then change the term; the page must reset to 1.
	post(t, f.handlers.ResultsSSE, "/api/query/results", `{"searchTerm":"","page":2}`)
	rec := post(t, f.handlers.ResultsSSE, "/api/query/results", `{"searchTerm":"1","page":2}`)

	// Rows containing "1" fit on a single page, so page 1 shows them all
	// and no pager is rendered.
	body := rec.Body.String()
	assert.Contains(t, body, "<td>1</td>")
	assert.Contains(t, body, "<td>12</td>")
	assert.NotContains(t, body, "Page 2 of")
}

func TestCompletionSSESuggestsColumns(t *testing.T) {
	f := setup(t)

	rec := post(t, f.handlers.CompletionSSE, "/api/query/complete",
		`{"before":"SELECT users."}`)

	body := rec.Body.String()
	assert.Contains(t, body, "email")
	assert.Contains(t, body, "created_at")
	assert.NotContains(t, body, "SELECT</span>")
}

func TestSaveSSERejectsBlankName(t *testing.T) {
	f := setup(t)

	rec := post(t, f.handlers.SaveSSE, "/api/saved",
		`{"saveName":"   ","sql":"SELECT 1"}`)

	assert.Contains(t, rec.Body.String(), "Please enter a name")

	saved, err := f.store.SavedQueries()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSaveAndDeleteSaved(t *testing.T) {
	f := setup(t)

	rec := post(t, f.handlers.SaveSSE, "/api/saved",
		`{"saveName":"all users","sql":"SELECT * FROM users"}`)
	assert.Contains(t, rec.Body.String(), "all users")

	saved, err := f.store.SavedQueries()
	require.NoError(t, err)
	require.Len(t, saved, 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/saved/"+saved[0].ID, nil)
	req = withParam(req, "id", saved[0].ID)
	del := httptest.NewRecorder()
	f.handlers.DeleteSavedSSE(del, req)

	saved, err = f.store.SavedQueries()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestLoadSavedPatchesEditor(t *testing.T) {
	f := setup(t)

	q, err := f.store.SaveQuery("orders", "SELECT * FROM orders")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/saved/"+q.ID+"/load", nil)
	req = withParam(req, "id", q.ID)
	rec := httptest.NewRecorder()
	f.handlers.LoadSavedSSE(rec, req)

	assert.Contains(t, rec.Body.String(), "SELECT * FROM orders")
}

func TestExportCSVDownload(t *testing.T) {
	f := setup(t)

	_, err := f.coord.Run(context.Background(),
		"SELECT id, name FROM users ORDER BY id", workbench.RunOptions{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/query/export.csv", nil)
	rec := httptest.NewRecorder()
	f.handlers.ExportCSV(rec, req)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "query-results-")
	assert.Contains(t, disposition, ".csv")

	body := rec.Body.String()
	assert.Contains(t, body, "id,name")
	assert.Contains(t, body, `"Ada Lovelace"`)
}
