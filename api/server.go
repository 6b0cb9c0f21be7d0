/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/punches/*      Time punch pipeline (fetch, export, display)
  /api/labor/*        Weekly labor cost dashboards
  /api/employees/*    Employee management
  /api/pay-periods/*  Pay period management
  /health             Liveness check

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Punch routes
		r.Route("/punches", func(r chi.Router) {
			r.Post("/", h.FetchPunches)
			r.Post("/export", h.ExportPunches)
			r.Post("/shifts-display", h.ShiftsDisplay)
		})

		// Labor dashboard routes
		r.Route("/labor", func(r chi.Router) {
			r.Get("/shifts/week", h.WeeklyLabor)
			r.Get("/shifts/week/hourly", h.HourlyLabor)
			r.Get("/shifts/week/hourly/overtime", h.HourlyLaborOvertime)
			r.Get("/shifts/raw", h.RawShifts)
			r.Get("/analysis/week", h.LaborAnalysis)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
		})

		// Pay period routes
		r.Route("/pay-periods", func(r chi.Router) {
			r.Get("/", h.ListPayPeriods)
			r.Post("/", h.CreatePayPeriod)
			r.Get("/{id}", h.GetPayPeriod)
			r.Put("/{id}", h.UpdatePayPeriod)
			r.Delete("/{id}", h.DeletePayPeriod)
		})
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
