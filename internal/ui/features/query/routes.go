package query

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/querybench/querybench/internal/artifacts"
	"github.com/querybench/querybench/internal/workbench"
)

// SetupRoutes registers the workbench feature routes.
func SetupRoutes(
	router chi.Router,
	coord *workbench.Coordinator,
	store artifacts.Store,
	sessionStore sessions.Store,
	notify Broadcaster,
	scriptsDir string,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(coord, store, sessionStore, notify, scriptsDir, logger)

	// Page routes
	router.Get("/", handlers.WorkbenchPage)

	// API routes for query execution and presentation
	router.Route("/api/query", func(r chi.Router) {
		r.Post("/run", handlers.RunSSE)
		r.Post("/results", handlers.ResultsSSE)
		r.Post("/complete", handlers.CompletionSSE)
		r.Get("/export.csv", handlers.ExportCSV)
		r.Get("/updates", handlers.UpdatesSSE)
	})

	// Saved queries and history
	router.Post("/api/saved", handlers.SaveSSE)
	router.Delete("/api/saved/{id}", handlers.DeleteSavedSSE)
	router.Post("/api/saved/{id}/load", handlers.LoadSavedSSE)
	router.Post("/api/history/{id}/load", handlers.LoadHistorySSE)

	// Workspace scripts
	router.Post("/api/scripts/{name}/load", handlers.LoadScriptSSE)

	return nil
}
