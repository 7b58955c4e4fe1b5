// Package store loads the project catalog once at startup and holds it in
// memory for the lifetime of the process.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"elevate.dev/data"
	"elevate.dev/internal/models"
	"elevate.dev/internal/services"
)

// Source identifies where the raw catalog document comes from.
type Source struct {
	// Name is used for format detection and in error messages.
	Name string
	// Path is read from disk when Data is nil.
	Path string
	Data []byte
}

// FileSource reads the catalog from path.
func FileSource(path string) Source {
	return Source{Name: filepath.Base(path), Path: path}
}

// EmbeddedSource returns the catalog compiled into the binary.
func EmbeddedSource() Source {
	return Source{Name: data.ProjectsFile, Data: data.Projects}
}

func (s Source) read() ([]byte, error) {
	if s.Data != nil {
		return s.Data, nil
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return raw, nil
}

// Store holds the immutable, slug-normalized project collection
type Store struct {
	source   string
	projects []models.Project
}

// Load reads, parses and normalizes the catalog. Any error means the
// process must not serve traffic.
func Load(src Source, logger *zap.Logger) (*Store, error) {
	raw, err := src.read()
	if err != nil {
		return nil, err
	}

	projects, err := Parse(src.Name, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", src.Name, err)
	}

	if err := normalize(projects); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", src.Name, err)
	}

	seen := make(map[string]int, len(projects))
	for i := range projects {
		if first, dup := seen[projects[i].Slug]; dup {
			logger.Warn("duplicate project slug, first entry wins",
				zap.String("slug", projects[i].Slug),
				zap.Int("first_index", first),
				zap.Int("index", i),
			)
			continue
		}
		seen[projects[i].Slug] = i
	}

	logger.Info("catalog loaded",
		zap.String("source", src.Name),
		zap.Int("projects", len(projects)),
	)

	return &Store{source: src.Name, projects: projects}, nil
}

// Projects returns the loaded collection. Callers must not modify it.
func (s *Store) Projects() []models.Project {
	return s.projects
}

// Len returns the number of loaded projects
func (s *Store) Len() int {
	return len(s.projects)
}

// Source returns the name of the document the store was loaded from
func (s *Store) Source() string {
	return s.source
}

// document is the wrapped layout: {"projects": [...]}
type document struct {
	Projects *[]models.Project `json:"projects" yaml:"projects"`
}

var errMissingProjects = errors.New(`document has no "projects" list`)

// Parse decodes a catalog document. Files named *.yaml or *.yml are YAML;
// everything else is JSON, with comments and trailing commas allowed.
// Both a bare list and an object with a "projects" key are accepted.
func Parse(name string, raw []byte) ([]models.Project, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return parseYAML(raw)
	default:
		return parseJSON(raw)
	}
}

func parseJSON(raw []byte) ([]models.Project, error) {
	clean := bytes.TrimSpace(jsonc.ToJSON(raw))
	if len(clean) == 0 {
		return nil, errors.New("empty document")
	}

	if clean[0] == '[' {
		var projects []models.Project
		if err := json.Unmarshal(clean, &projects); err != nil {
			return nil, err
		}
		return nonNil(projects), nil
	}

	var doc document
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, err
	}
	if doc.Projects == nil {
		return nil, errMissingProjects
	}
	return nonNil(*doc.Projects), nil
}

func parseYAML(raw []byte) ([]models.Project, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, errors.New("empty document")
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var projects []models.Project
		if err := node.Decode(&projects); err != nil {
			return nil, err
		}
		return nonNil(projects), nil
	}

	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Projects == nil {
		return nil, errMissingProjects
	}
	return nonNil(*doc.Projects), nil
}

func nonNil(projects []models.Project) []models.Project {
	if projects == nil {
		return []models.Project{}
	}
	return projects
}

// normalize derives missing slugs and replaces nil lists with empty ones so
// they serialize as [] rather than null.
func normalize(projects []models.Project) error {
	for i := range projects {
		p := &projects[i]
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("project %d: name is required", i)
		}
		if p.Slug == "" {
			p.Slug = services.Slugify(p.Name)
		}
		if p.Slug == "" {
			return fmt.Errorf("project %d (%q): cannot derive a slug from name", i, p.Name)
		}
		if p.Description == nil {
			p.Description = []string{}
		}
		if p.Pillars == nil {
			p.Pillars = []models.Pillar{}
		}
		for j := range p.Pillars {
			if p.Pillars[j].Capabilities == nil {
				p.Pillars[j].Capabilities = []string{}
			}
		}
	}
	return nil
}
