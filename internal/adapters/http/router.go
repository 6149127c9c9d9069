// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printcraft/customizer-engine/internal/adapters/http/handlers"
	"github.com/printcraft/customizer-engine/internal/adapters/http/middleware"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given; tenant enforcement is
// scoped to /api/v1 so health probes and media serving stay unauthenticated.
// media may be nil when no managed image storage is mounted.
func NewRouter(
	actionHandler *handlers.ActionHandler,
	configHandler *handlers.ConfigHandler,
	healthHandler *handlers.HealthHandler,
	media http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Re-hosted gallery images.
	if media != nil {
		r.Get("/media/*", media.ServeHTTP)
	}

	// API v1 routes, all tenant-scoped.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Shop())

		// Action lifecycle.
		r.Get("/actions", actionHandler.List)
		r.Get("/actions/{id}", actionHandler.Get)
		r.Post("/actions/{id}/execute", actionHandler.Execute)
		r.Post("/actions/{id}/rollback", actionHandler.Rollback)

		// Direct bulk configuration updates.
		r.Post("/configs/bulk", configHandler.BulkUpdate)
	})

	return r
}
