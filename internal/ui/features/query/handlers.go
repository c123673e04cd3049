package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/querybench/querybench/internal/artifacts"
	"github.com/querybench/querybench/internal/completion"
	"github.com/querybench/querybench/internal/results"
	"github.com/querybench/querybench/internal/workbench"
)

const (
	sessionName  = "querybench"
	sessionKeySQL = "editorSQL"

	queryTimeout = 30 * time.Second
)

// Handlers provides HTTP handlers for the workbench feature.
type Handlers struct {
	coord        *workbench.Coordinator
	store        artifacts.Store
	sessionStore sessions.Store
	notifier     Broadcaster
	scriptsDir   string
	logger       *slog.Logger

	mu   sync.Mutex
	view results.View
}

// Broadcaster delivers pings when workspace scripts change on disk.
type Broadcaster interface {
	Subscribe() chan struct{}
	Unsubscribe(ch chan struct{})
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(coord *workbench.Coordinator, store artifacts.Store, sessionStore sessions.Store, notify Broadcaster, scriptsDir string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		coord:        coord,
		store:        store,
		sessionStore: sessionStore,
		notifier:     notify,
		scriptsDir:   scriptsDir,
		logger:       logger,
	}
}

// WorkbenchPage renders the full workbench page. The editor buffer is
// restored from the session so a reload does not lose the draft.
func (h *Handlers) WorkbenchPage(w http.ResponseWriter, r *http.Request) {
	sql := h.sessionSQL(r)

	quoted, err := json.Marshal(sql)
	if err != nil {
		quoted = []byte(`""`)
	}

	data := pageData{SQL: template.JS(quoted)}
	data.Results = template.HTML(h.mustFragment("results", h.buildResultsView("", 1, "")))
	data.Log = template.HTML(h.mustFragment("log", h.buildLogView()))
	data.Saved = template.HTML(h.mustFragment("saved", h.savedQueries()))
	data.History = template.HTML(h.mustFragment("history", h.historyItems()))
	data.Scripts = template.HTML(h.mustFragment("scripts", h.listScripts()))

	if err := pageTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RunSSE executes the editor buffer and patches the results table, log panel,
// and history list. Validation failures (busy, empty, not ready) surface as a
// transient notice and never touch the log.
func (h *Handlers) RunSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	// Persist the buffer before the SSE response starts; cookies cannot be
	// set once the stream is open.
	h.saveSessionSQL(w, r, signals.SQL)

	sse := datastar.NewSSE(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	_, err := h.coord.Run(ctx, signals.SQL, workbench.RunOptions{RecordHistory: true})
	if err != nil {
		h.patchNotice(sse, noticeFor(err))
		return
	}

	// A fresh result set starts at page 1 with the current search term.
	h.patchFragment(sse, "results", h.buildResultsView(signals.SearchTerm, 1, ""))
	h.patchFragment(sse, "log", h.buildLogView())
	h.patchFragment(sse, "history", h.historyItems())
	h.patchNotice(sse, "")
}

// ResultsSSE re-renders the results table for the current search term and
// page signals against the cached result set.
func (h *Handlers) ResultsSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	view := h.buildResultsView(signals.SearchTerm, signals.Page, "")
	h.patchFragment(sse, "results", view)
	if view.Page != signals.Page {
		_ = sse.MarshalAndPatchSignals(map[string]any{"page": view.Page})
	}
}

// CompletionSSE computes autocomplete suggestions for the text before the
// cursor against the cached schema snapshot.
func (h *Handlers) CompletionSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	items := completion.Suggest(h.coord.Schema(), signals.Before)
	h.patchFragment(sse, "completion", items)
}

// SaveSSE stores the editor buffer under the submitted name.
func (h *Handlers) SaveSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)

	if _, err := h.store.SaveQuery(signals.SaveName, signals.SQL); err != nil {
		if errors.Is(err, artifacts.ErrBlankName) {
			h.patchNotice(sse, "Please enter a name for the query")
			return
		}
		_ = sse.ConsoleError(err)
		return
	}

	h.patchFragment(sse, "saved", h.savedQueries())
	h.patchNotice(sse, "")
	_ = sse.MarshalAndPatchSignals(map[string]any{"saveName": ""})
}

// DeleteSavedSSE removes a saved query. Deleting a missing id is a no-op.
func (h *Handlers) DeleteSavedSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if err := h.store.DeleteSavedQuery(chi.URLParam(r, "id")); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	h.patchFragment(sse, "saved", h.savedQueries())
}

// LoadSavedSSE copies a saved query into the editor buffer.
func (h *Handlers) LoadSavedSSE(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var found *artifacts.SavedQuery
	for _, q := range h.savedQueries() {
		if q.ID == id {
			found = &q
			break
		}
	}
	if found != nil {
		h.saveSessionSQL(w, r, found.Query)
	}

	sse := datastar.NewSSE(w, r)
	if found == nil {
		_ = sse.ConsoleError(fmt.Errorf("saved query not found: %s", id))
		return
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"sql": found.Query})
}

// LoadHistorySSE copies a history entry into the editor buffer.
func (h *Handlers) LoadHistorySSE(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var found *artifacts.HistoryItem
	for _, item := range h.historyItems() {
		if item.ID == id {
			found = &item
			break
		}
	}
	if found != nil {
		h.saveSessionSQL(w, r, found.Query)
	}

	sse := datastar.NewSSE(w, r)
	if found == nil {
		_ = sse.ConsoleError(fmt.Errorf("history entry not found: %s", id))
		return
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"sql": found.Query})
}

// ExportCSV downloads the cached result set, filtered by the current search
// term, as comma-separated text.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	filtered := results.Filter(h.coord.Rows(), term)
	columns := h.coord.Columns()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", results.ExportFilename(time.Now())))

	if err := results.ExportCSV(w, columns, filtered); err != nil {
		h.logger.Warn("csv export failed", "error", err)
	}
}

// LoadScriptSSE reads a workspace SQL script into the editor buffer.
func (h *Handlers) LoadScriptSSE(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "name"))
	if !strings.HasSuffix(name, ".sql") {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("not a SQL script: %s", name))
		return
	}

	content, readErr := os.ReadFile(filepath.Join(h.scriptsDir, name))
	if readErr == nil {
		h.saveSessionSQL(w, r, string(content))
	}

	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		_ = sse.ConsoleError(fmt.Errorf("failed to read script: %w", readErr))
		return
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"sql": string(content)})
}

// UpdatesSSE is a long-lived stream that re-patches the workspace script list
// whenever the watcher reports a change.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ch := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			h.patchFragment(sse, "scripts", h.listScripts())
		}
	}
}

// buildResultsView applies the search term and page to the cached rows and
// formats cells for display.
func (h *Handlers) buildResultsView(term string, page int, message string) resultsView {
	h.mu.Lock()
	rows, pageCount := h.view.Apply(h.coord.Rows(), term, page)
	current := h.view.Page
	h.mu.Unlock()

	columns := h.coord.Columns()

	formatted := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = results.FormatCell(row[col])
		}
		formatted[i] = cells
	}

	v := resultsView{
		Columns:    columns,
		Rows:       formatted,
		RowCount:   len(rows),
		Page:       current,
		PageCount:  pageCount,
		SearchTerm: term,
		Message:    message,
	}

	if entries := h.coord.LogEntries(); len(entries) > 0 && message == "" {
		latest := entries[0]
		v.Message = latest.Message
		v.IsError = latest.Status == workbench.StatusError
		v.DurationMS = latest.DurationMs
	}
	return v
}

func (h *Handlers) buildLogView() logView {
	entries := h.coord.LogEntries()
	out := logView{Entries: make([]logEntryView, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, logEntryView{
			Message:    e.Message,
			Status:     string(e.Status),
			Time:       e.Timestamp.Local().Format("15:04:05"),
			DurationMS: e.DurationMs,
		})
	}
	return out
}

func (h *Handlers) savedQueries() []artifacts.SavedQuery {
	qs, err := h.store.SavedQueries()
	if err != nil {
		h.logger.Warn("failed to load saved queries", "error", err)
		return nil
	}
	return qs
}

func (h *Handlers) historyItems() []artifacts.HistoryItem {
	items, err := h.store.History()
	if err != nil {
		h.logger.Warn("failed to load history", "error", err)
		return nil
	}
	return items
}

// listScripts returns the workspace *.sql files, sorted by name.
func (h *Handlers) listScripts() []scriptItem {
	entries, err := os.ReadDir(h.scriptsDir)
	if err != nil {
		return nil
	}

	var scripts []scriptItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		scripts = append(scripts, scriptItem{
			Name: entry.Name(),
			Path: filepath.Join(h.scriptsDir, entry.Name()),
		})
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts
}

func (h *Handlers) patchFragment(sse *datastar.ServerSentEventGenerator, name string, data any) {
	html, err := renderFragment(name, data)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) patchNotice(sse *datastar.ServerSentEventGenerator, message string) {
	h.patchFragment(sse, "notice", message)
}

// mustFragment renders a fragment for the initial page load, falling back to
// an empty string on template errors.
func (h *Handlers) mustFragment(name string, data any) string {
	html, err := renderFragment(name, data)
	if err != nil {
		h.logger.Error("template render failed", "fragment", name, "error", err)
		return ""
	}
	return html
}

// sessionSQL reads the persisted editor buffer, if any.
func (h *Handlers) sessionSQL(r *http.Request) string {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return ""
	}
	if sql, ok := session.Values[sessionKeySQL].(string); ok {
		return sql
	}
	return ""
}

// saveSessionSQL persists the editor buffer across reloads.
func (h *Handlers) saveSessionSQL(w http.ResponseWriter, r *http.Request, sql string) {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return
	}
	session.Values[sessionKeySQL] = sql
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}

// noticeFor maps a validation error to the user-facing notice text.
func noticeFor(err error) string {
	switch {
	case errors.Is(err, workbench.ErrBusy):
		return "A query is already running"
	case errors.Is(err, workbench.ErrEmptyQuery):
		return "Please enter a query to run"
	case errors.Is(err, workbench.ErrNotReady):
		return "Database is still initializing"
	default:
		return err.Error()
	}
}
