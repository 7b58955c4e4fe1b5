package services

import (
	"errors"
	"fmt"
	"slices"

	"elevate.dev/internal/models"
)

// ErrProjectNotFound is returned when no project matches a lookup.
var ErrProjectNotFound = errors.New("project not found")

// ProjectSource provides the loaded, slug-normalized project collection.
type ProjectSource interface {
	Projects() []models.Project
}

// ProjectService handles project-related operations
type ProjectService struct {
	projects []models.Project
}

// NewProjectService creates a new ProjectService over an already loaded source
func NewProjectService(src ProjectSource) *ProjectService {
	return &ProjectService{projects: src.Projects()}
}

// ListAll returns all projects in source order
func (s *ProjectService) ListAll() []models.Project {
	return slices.Clone(s.projects)
}

// FindBySlug returns the first project whose slug equals slug exactly
func (s *ProjectService) FindBySlug(slug string) (models.Project, error) {
	for i := range s.projects {
		if s.projects[i].Slug == slug {
			return s.projects[i], nil
		}
	}
	return models.Project{}, fmt.Errorf("%w: %q", ErrProjectNotFound, slug)
}

// ListByCategory returns projects tagged with category, in source order.
// An empty category returns every project.
func (s *ProjectService) ListByCategory(category string) []models.Project {
	if category == "" {
		return s.ListAll()
	}
	matched := []models.Project{}
	for i := range s.projects {
		if slices.Contains(s.projects[i].Categories(), category) {
			matched = append(matched, s.projects[i])
		}
	}
	return matched
}

// Categories returns the sorted set of categories across all projects
func (s *ProjectService) Categories() []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for i := range s.projects {
		for _, c := range s.projects[i].Categories() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			categories = append(categories, c)
		}
	}
	slices.Sort(categories)
	return categories
}
