package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component check made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", s.handleListScenes)
			r.Get("/active", s.handleGetActiveScene)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetScene)
				r.Get("/nodes", s.handleListNodes)
			})
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/{id}", s.handleGetNode)
			r.Get("/{id}/bounds", s.handleGetNodeBounds)
		})

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handleListSources)
			r.Get("/{id}", s.handleGetSource)
		})

		r.Get("/state", s.handleGetState)
		r.Get("/revisions", s.handleListRevisions)

		r.Get(s.wsCfg.Path, s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status and the state of each
// registered component. Any failing component turns the status to
// "degraded" and the response code to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	components := make(map[string]string, len(s.checks))

	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check.HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	activeID, _ := s.studio.ActiveScene()
	writeJSON(w, code, map[string]any{
		"status":          status,
		"version":         s.version,
		"studio":          s.studioName,
		"active_scene_id": activeID,
		"unsaved_changes": s.studio.Dirty(),
		"components":      components,
	})
}
