package game

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const (
	specFileName     = "clemgame.json"
	registryFileName = "game_registry.json"

	// maxLookupDepth bounds the breadth-first directory walk.
	maxLookupDepth = 10
)

// Registry is an ordered collection of game specs.
type Registry struct {
	specs []Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a spec unless one with the same name is already registered.
func (r *Registry) Add(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	for _, existing := range r.specs {
		if existing.Name == spec.Name {
			return fmt.Errorf("game %q is already registered", spec.Name)
		}
	}
	r.specs = append(r.specs, spec)
	return nil
}

// Specs returns the registered specs in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	return len(r.specs)
}

// Select returns all specs matching the selector, in registration order.
func (r *Registry) Select(selector Selector) ([]Spec, error) {
	var matched []Spec
	for _, spec := range r.specs {
		if spec.Matches(selector) {
			matched = append(matched, spec)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %+v", ErrNoMatch, selector)
	}
	return matched, nil
}

// LoadRegistry discovers game specs under contextPath. A file path is read as
// a game_registry.json listing; a directory is walked breadth-first for
// clemgame.json files, skipping hidden directories.
func LoadRegistry(contextPath string) (*Registry, error) {
	contextPath = strings.TrimSpace(contextPath)
	if contextPath == "" {
		contextPath = "."
	}
	info, err := os.Stat(contextPath)
	if err != nil {
		return nil, fmt.Errorf("stat context path: %w", err)
	}
	if !info.IsDir() {
		return loadRegistryFile(contextPath)
	}
	return loadRegistryFromDirectories(contextPath)
}

func loadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game registry: %w", err)
	}
	var listing []Spec
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("parse game registry: %w", err)
	}
	registry := NewRegistry()
	base := filepath.Dir(path)
	for _, spec := range listing {
		if spec.Path != "" && !filepath.IsAbs(spec.Path) {
			spec.Path = filepath.Join(base, spec.Path)
		}
		if err := registry.Add(spec); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func loadRegistryFromDirectories(root string) (*Registry, error) {
	registry := NewRegistry()

	type candidate struct {
		dir   string
		depth int
	}
	queue := []candidate{{dir: root}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth > maxLookupDepth {
			continue
		}

		spec, err := loadSpecFromDirectory(current.dir)
		switch {
		case err == nil:
			if addErr := registry.Add(spec); addErr != nil {
				log.Printf("skipping game at %s: %v", current.dir, addErr)
			}
		case os.IsNotExist(err) || os.IsPermission(err):
			// Not a game directory; keep walking.
		default:
			log.Printf("game lookup failed at %s: %v", current.dir, err)
			continue
		}

		entries, err := os.ReadDir(current.dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				queue = append(queue, candidate{
					dir:   filepath.Join(current.dir, entry.Name()),
					depth: current.depth + 1,
				})
			}
		}
	}
	return registry, nil
}

func loadSpecFromDirectory(dir string) (Spec, error) {
	data, err := os.ReadFile(filepath.Join(dir, specFileName))
	if err != nil {
		return Spec{}, err
	}
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse %s: %w", specFileName, err)
	}
	spec.Path = dir
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
