// Package assets manages the model catalog and turns parsed rig documents
// into scene graphs ready for interaction.
package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banyapon/vrmecanism/internal/engine/scene"
	"github.com/banyapon/vrmecanism/pkg/formats"
)

// Entry is one selectable model in the catalog.
type Entry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	File string `yaml:"file"` // rig document path, relative to the models dir
}

// Catalog lists the models available to the selection screen.
type Catalog struct {
	Models []Entry `yaml:"models"`
}

// LoadCatalog reads and validates a catalog manifest.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(cat.Models))
	for i, entry := range cat.Models {
		if entry.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if entry.File == "" {
			return nil, fmt.Errorf("catalog entry %q has no file", entry.ID)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return &cat, nil
}

// Find returns the catalog entry with the given id.
func (c *Catalog) Find(id string) (*Entry, bool) {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i], true
		}
	}
	return nil, false
}

// Library resolves catalog entries against a models directory and loads
// them into scene graphs.
type Library struct {
	dir     string
	catalog *Catalog
}

// OpenLibrary loads the catalog manifest from the models directory.
func OpenLibrary(dir, catalogFile string) (*Library, error) {
	cat, err := LoadCatalog(filepath.Join(dir, catalogFile))
	if err != nil {
		return nil, err
	}
	return &Library{dir: dir, catalog: cat}, nil
}

// Entries returns the selectable models in catalog order.
func (l *Library) Entries() []Entry {
	return l.catalog.Models
}

// Load parses the rig document for a catalog id and builds its scene
// graph. Every load returns a fresh graph; derived interaction state is
// the caller's to rebuild.
func (l *Library) Load(id string) (*scene.Graph, error) {
	entry, ok := l.catalog.Find(id)
	if !ok {
		return nil, fmt.Errorf("model %q not in catalog", id)
	}
	rig, err := formats.ParseRigFile(filepath.Join(l.dir, entry.File))
	if err != nil {
		return nil, fmt.Errorf("loading model %q: %w", id, err)
	}
	graph, err := BuildGraph(rig)
	if err != nil {
		return nil, fmt.Errorf("building model %q: %w", id, err)
	}
	return graph, nil
}
