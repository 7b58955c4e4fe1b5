package models

// DefaultCategory is assumed for projects that list no category.
const DefaultCategory = "Development"

// Pillar groups related capabilities under a heading
type Pillar struct {
	Title        string   `json:"title" yaml:"title"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// Project represents a portfolio project or service offering
type Project struct {
	Name         string   `json:"name" yaml:"name"`
	Slug         string   `json:"slug" yaml:"slug"`
	URL          string   `json:"url" yaml:"url"`
	Award        string   `json:"award,omitempty" yaml:"award,omitempty"`
	Summary      string   `json:"summary" yaml:"summary"`
	Description  []string `json:"description" yaml:"description"`
	Pillars      []Pillar `json:"pillars" yaml:"pillars"`
	Impact       string   `json:"impact,omitempty" yaml:"impact,omitempty"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	Logo         string   `json:"logo,omitempty" yaml:"logo,omitempty"`
	Technologies []string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	Category     []string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Categories returns the project's categories, falling back to DefaultCategory.
func (p *Project) Categories() []string {
	if len(p.Category) == 0 {
		return []string{DefaultCategory}
	}
	return p.Category
}

// ProjectList wraps the array of projects
type ProjectList struct {
	Projects []Project `json:"projects" yaml:"projects"`
}
