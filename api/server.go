/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Metrics:    Prometheus request counters and latency
  4. Logging:    Structured request log (zap)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/compliance/*         Compliance calculations and trip validation
  /api/stays/*              Stay history management
  /api/policies/*           Policy catalog inspection
  /api/profile/*            Traveler profile and special statuses
  /api/scenarios/*          Demo scenarios
  /healthz                  Liveness probe
  /metrics                  Prometheus exposition

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, metrics *Metrics, logger *zap.Logger) *chi.Mux {
	h.Metrics = metrics

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Compliance routes
		r.Route("/compliance", func(r chi.Router) {
			r.Post("/status", h.CountryStatus)
			r.Post("/validate-trip", h.ValidateTrip)
			r.Get("/overview", h.Overview)
		})

		// Stay routes
		r.Route("/stays", func(r chi.Router) {
			r.Get("/", h.ListStays)
			r.Post("/", h.CreateStay)
			r.Post("/{id}/close", h.CloseStay)
			r.Delete("/{id}", h.DeleteStay)
		})

		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Get("/{code}", h.GetPolicy)
		})

		// Profile routes
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Put("/", h.UpdateProfile)
			r.Get("/statuses", h.ListSpecialStatuses)
			r.Post("/statuses", h.CreateSpecialStatus)
			r.Delete("/statuses/{id}", h.DeleteSpecialStatus)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Operational endpoints
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// requestLogger logs each request with its route, status, and duration.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
