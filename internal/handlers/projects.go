package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"elevate.dev/internal/services"
)

// ProjectHandler handles project-related endpoints
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(ps *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: ps}
}

// ListProjects handles GET /api/projects, optionally filtered by ?category=
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		respondJSON(w, http.StatusOK, h.projectService.ListByCategory(category))
		return
	}
	respondJSON(w, http.StatusOK, h.projectService.ListAll())
}

// GetProject handles GET /api/projects/{slug}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	// chi matches on the escaped path when one is present
	slug := chi.URLParam(r, "slug")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(slug); err == nil {
			slug = decoded
		}
	}

	project, err := h.projectService.FindBySlug(slug)
	if errors.Is(err, services.ErrProjectNotFound) {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// ListCategories handles GET /api/categories
func (h *ProjectHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.projectService.Categories())
}
