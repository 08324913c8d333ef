/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, the middleware stack and the route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for log correlation
  2. Logger:     Structured request logging (slog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request counters and latency
  5. CORS:       Cross-origin requests for the admin frontend

SECURITY NOTE:
  No authentication middleware. Auth and role checks live in front of this
  service and are out of scope here.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(recoverer(h.Log))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Healthz)
	r.Method("GET", "/metrics", metricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.EnrollStudent)
			r.Get("/{id}", h.GetStudent)
			r.Post("/{id}/status", h.SetStudentStatus)
			r.Get("/{id}/summary", h.GetSummary)
			r.Get("/{id}/summary/{category}", h.GetCategorySummary)

			r.Post("/{id}/payments", h.RecordPayment)
			r.Post("/{id}/payments/{receiptID}/status", h.UpdatePaymentStatus)
			r.Delete("/{id}/payments/{receiptID}", h.DeletePayment)

			r.Post("/{id}/rollover", h.RolloverStudent)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/rollover", h.BatchRollover)
		})
	})

	return r
}
