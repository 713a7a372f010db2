package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyModelName indicates a spec without a model name.
	ErrEmptyModelName = errors.New("model name is required")
	// ErrUnresolvedBackend indicates a spec that could not be bound to a backend.
	ErrUnresolvedBackend = errors.New("model spec does not resolve to a backend")
)

// Spec binds a model name to a backend plus optional provider attributes.
type Spec struct {
	ModelName  string         `json:"model_name" yaml:"model_name"`
	Backend    string         `json:"backend,omitempty" yaml:"backend,omitempty"`
	ModelID    string         `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	Attributes map[string]any `json:"-" yaml:",inline"`
}

// EffectiveModelID returns the provider-side model identifier.
func (s Spec) EffectiveModelID() string {
	if s.ModelID != "" {
		return s.ModelID
	}
	return s.ModelName
}

// Attr returns a string attribute value, or "" when unset.
func (s Spec) Attr(key string) string {
	value, ok := s.Attributes[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}
	return text
}

// HasAttr reports whether a truthy attribute is present, mirroring feature
// flags such as supports_images in registry entries.
func (s Spec) HasAttr(key string) bool {
	value, ok := s.Attributes[key]
	if !ok {
		return false
	}
	if flag, ok := value.(bool); ok {
		return flag
	}
	return true
}

// Unify fills the empty fields of this spec from another spec. Attributes of
// this spec win over the other's.
func (s Spec) Unify(other Spec) Spec {
	merged := s
	if merged.ModelName == "" {
		merged.ModelName = other.ModelName
	}
	if merged.Backend == "" {
		merged.Backend = other.Backend
	}
	if merged.ModelID == "" {
		merged.ModelID = other.ModelID
	}
	if len(other.Attributes) > 0 {
		attributes := make(map[string]any, len(other.Attributes)+len(merged.Attributes))
		for key, value := range other.Attributes {
			attributes[key] = value
		}
		for key, value := range merged.Attributes {
			attributes[key] = value
		}
		merged.Attributes = attributes
	}
	return merged
}

// ParseSpec interprets a CLI model argument: either a plain model name or a
// JSON fragment such as {"model_name":"x","backend":"openai"}.
func ParseSpec(raw string) (Spec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Spec{}, ErrEmptyModelName
	}
	if !strings.HasPrefix(raw, "{") {
		return Spec{ModelName: raw}, nil
	}
	normalized := strings.ReplaceAll(raw, "'", `"`)
	var fields map[string]any
	if err := json.Unmarshal([]byte(normalized), &fields); err != nil {
		return Spec{}, fmt.Errorf("parse model spec: %w", err)
	}
	spec := Spec{Attributes: make(map[string]any)}
	for key, value := range fields {
		switch key {
		case "model_name":
			spec.ModelName, _ = value.(string)
		case "backend":
			spec.Backend, _ = value.(string)
		case "model_id":
			spec.ModelID, _ = value.(string)
		default:
			spec.Attributes[key] = value
		}
	}
	if spec.ModelName == "" {
		return Spec{}, ErrEmptyModelName
	}
	return spec, nil
}

// ParseSpecs parses a list of CLI model arguments.
func ParseSpecs(raws []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(raws))
	for _, raw := range raws {
		spec, err := ParseSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Registry holds known model specs keyed by model name.
type Registry struct {
	specs []Spec
}

// BuiltinRegistry returns the registry entries compiled into the binary. It
// covers the mock backend and the common OpenAI chat models; a model registry
// file extends or overrides the list.
func BuiltinRegistry() *Registry {
	return &Registry{specs: []Spec{
		{ModelName: "mock", Backend: "mock"},
		{ModelName: "gpt-4o", Backend: "openai"},
		{ModelName: "gpt-4o-mini", Backend: "openai"},
		{ModelName: "gpt-4-turbo", Backend: "openai"},
		{ModelName: "gpt-3.5-turbo", Backend: "openai"},
	}}
}

// LoadRegistry reads a YAML model registry file and prepends its entries to
// the builtin ones, so file entries take precedence during resolution.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model registry: %w", err)
	}
	var entries []Spec
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse model registry: %w", err)
	}
	registry := &Registry{specs: entries}
	registry.specs = append(registry.specs, BuiltinRegistry().specs...)
	return registry, nil
}

// Specs returns all registered specs.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Resolve unifies a spec with the first registry entry of the same model
// name. Specs that already name a backend pass through unchanged except for
// attribute merging.
func (r *Registry) Resolve(spec Spec) (Spec, error) {
	if spec.ModelName == "" {
		return Spec{}, ErrEmptyModelName
	}
	for _, entry := range r.specs {
		if entry.ModelName == spec.ModelName {
			resolved := spec.Unify(entry)
			if resolved.Backend == "" {
				return Spec{}, fmt.Errorf("%w: %q", ErrUnresolvedBackend, spec.ModelName)
			}
			return resolved, nil
		}
	}
	if spec.Backend != "" {
		return spec, nil
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrUnresolvedBackend, spec.ModelName)
}
