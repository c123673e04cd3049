// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/querybench/querybench/internal/artifacts"
	queryFeature "github.com/querybench/querybench/internal/ui/features/query"
	"github.com/querybench/querybench/internal/ui/notifier"
	"github.com/querybench/querybench/internal/ui/resources"
	"github.com/querybench/querybench/internal/workbench"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	coord *workbench.Coordinator,
	store artifacts.Store,
	sessionStore *sessions.CookieStore,
	notify *notifier.Notifier,
	scriptsDir string,
	logger *slog.Logger,
) error {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	return queryFeature.SetupRoutes(router, coord, store, sessionStore, notify, scriptsDir, logger)
}
