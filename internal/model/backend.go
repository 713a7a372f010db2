package model

import (
	"fmt"
	"strings"
)

// Backend constructs models for specs bound to it.
type Backend interface {
	// Name returns the backend name as referenced by model specs.
	Name() string
	// ModelFor builds a Model for the given resolved spec.
	ModelFor(spec Spec) (Model, error)
}

// BackendRegistry holds the available backends by name.
type BackendRegistry struct {
	backends map[string]Backend
}

// NewBackendRegistry creates a registry with the given backends.
func NewBackendRegistry(backends ...Backend) (*BackendRegistry, error) {
	registry := &BackendRegistry{backends: make(map[string]Backend, len(backends))}
	for _, backend := range backends {
		if err := registry.Register(backend); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a backend to the registry.
func (r *BackendRegistry) Register(backend Backend) error {
	if backend == nil {
		return fmt.Errorf("backend is required")
	}
	name := strings.TrimSpace(backend.Name())
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("backend %q is already registered", name)
	}
	r.backends[name] = backend
	return nil
}

// Names returns the registered backend names.
func (r *BackendRegistry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}

// Lookup returns the named backend.
func (r *BackendRegistry) Lookup(name string) (Backend, error) {
	backend, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return backend, nil
}

// ModelFor builds a model for a resolved spec.
func (r *BackendRegistry) ModelFor(spec Spec) (Model, error) {
	if spec.Backend == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedBackend, spec.ModelName)
	}
	backend, ok := r.backends[spec.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, spec.Backend)
	}
	return backend.ModelFor(spec)
}
