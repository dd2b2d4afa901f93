// Package api assembles the HTTP surface around the simulation core: a
// health/status endpoint, a Prometheus scrape endpoint, a WebSocket
// snapshot stream, and a REST fallback for clients that can't hold a
// socket open. None of this is part of the simulation's public Go
// surface — it is the optional front end described as out of scope for
// the core engine itself.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/nbody-core/internal/api/handlers"
	"github.com/onnwee/nbody-core/internal/config"
	"github.com/onnwee/nbody-core/internal/middleware"
)

// Router builds the full mux.Router for the simulation's HTTP surface.
func Router(cfg *config.Config, health *handlers.HealthHandler, snapshot *handlers.SnapshotHandler, ws *handlers.WebSocketHandler, limiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoverWithSentry)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.EnableRateLimit && limiter != nil {
		r.Use(limiter.Limit)
	}

	r.HandleFunc("/healthz", health.ServeHealthz).Methods(http.MethodGet)
	r.HandleFunc("/status", health.ServeStatus).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.Handle("/snapshot", middleware.Gzip(middleware.ETag(http.HandlerFunc(snapshot.ServeSnapshot)))).Methods(http.MethodGet)
	r.HandleFunc("/ws/particles", ws.HandleWebSocket)

	return r
}
