package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"elevate.dev/internal/config"
	"elevate.dev/internal/mail"
	"elevate.dev/internal/middleware"
	"elevate.dev/internal/services"
)

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, projectService *services.ProjectService, mailer mail.Mailer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Initialize handlers
	projectHandler := NewProjectHandler(projectService)
	contactHandler := NewContactHandler(mailer, cfg.MailTimeout, logger)
	limiter := middleware.NewRateLimiter(cfg.ContactRatePerMinute, cfg.ContactBurst)

	routes := func(r chi.Router) {
		// Project endpoints
		r.Get("/projects", projectHandler.ListProjects)
		r.Get("/projects/{slug}", projectHandler.GetProject)
		r.Get("/categories", projectHandler.ListCategories)

		// Contact relay
		r.With(limiter.Handler).Post("/contact", contactHandler.Send)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]any{
				"status":   "ok",
				"projects": len(projectService.ListAll()),
				"time":     time.Now().UTC().Format(time.RFC3339),
			})
		})
	}

	if cfg.APIPrefix == "" || cfg.APIPrefix == "/" {
		routes(r)
	} else {
		r.Route(cfg.APIPrefix, routes)
	}

	return r
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// errorBody mirrors the error shape the frontend already understands
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    any    `json:"message"`
}

// respondError writes an error JSON response. message is a string or a list
// of strings for validation failures.
func respondError(w http.ResponseWriter, status int, message any) {
	respondJSON(w, status, errorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}
