package api

import (
	"encoding/json"
	"net/http"

	"github.com/caseflow/caseflow/backend/internal/api/handlers"
	"github.com/caseflow/caseflow/backend/internal/api/middleware"
	"github.com/caseflow/caseflow/backend/internal/config"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Cases
		r.Route("/cases", func(r chi.Router) {
			r.Get("/", h.ListCases)
			r.Post("/", h.CreateCase)
			r.Route("/{caseID}", func(r chi.Router) {
				r.Get("/", h.GetCase)
				r.Put("/", h.UpdateCase)
				r.Delete("/", h.DeleteCase)

				// AI operations on a case
				r.Post("/summary", h.GenerateSummary)
				r.Post("/recommendation", h.RecommendStep)
				r.Post("/final-summary", h.GenerateFinalSummary)

				// Summary history
				r.Route("/summaries", func(r chi.Router) {
					r.Get("/", h.ListSummaries)
					r.Get("/latest", h.GetLatestSummary)
				})

				// Audit log of model interactions
				r.Get("/interactions", h.ListInteractions)
			})
		})

		// Applications
		r.Route("/applications", func(r chi.Router) {
			r.Post("/", h.CreateApplication)
			r.Route("/{appID}", func(r chi.Router) {
				r.Get("/", h.GetApplication)
				r.Put("/", h.UpdateApplication)

				// AI operations on an application
				r.Post("/analysis", h.AnalyzeApplication)
				r.Post("/completeness", h.ValidateCompleteness)
				r.Post("/missing-fields", h.DetectMissingFields)
			})
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "caseflow-backend",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "caseflow-backend",
		})
	}
}
