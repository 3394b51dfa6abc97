package gateway

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired. ctx bounds the
// lifetime of websocket streams.
func (g *Gateway) buildRouter(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	r.Get("/metrics", g.handleMetrics())

	r.Group(func(r chi.Router) {
		if g.config.RateLimit.IsConfigured() {
			r.Use(rateLimitMiddleware(g.config.RateLimit, g.logger))
		}
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.logger))
		}
		r.Get("/status", g.handleStatus())
		r.Route("/api", func(r chi.Router) {
			r.Get("/runs", g.handleListRuns())
			r.Get("/kinds", g.handleListKinds())
		})
		r.Get("/ws/events", serveEvents(ctx, g.hub, g.logger))
	})

	return r
}
