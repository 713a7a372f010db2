package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Spec
		wantErr error
	}{
		{
			name: "plain name",
			raw:  "gpt-4o-mini",
			want: Spec{ModelName: "gpt-4o-mini"},
		},
		{
			name: "json fragment",
			raw:  `{"model_name":"local-llama","backend":"generic_openai_compatible","model_id":"llama-3-8b"}`,
			want: Spec{ModelName: "local-llama", Backend: "generic_openai_compatible", ModelID: "llama-3-8b"},
		},
		{
			name: "single quoted fragment",
			raw:  `{'model_name': 'mock', 'backend': 'mock'}`,
			want: Spec{ModelName: "mock", Backend: "mock"},
		},
		{
			name:    "missing name",
			raw:     `{"backend":"openai"}`,
			wantErr: ErrEmptyModelName,
		},
		{
			name:    "empty",
			raw:     " ",
			wantErr: ErrEmptyModelName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpec(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSpec error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec error = %v", err)
			}
			if got.ModelName != tt.want.ModelName || got.Backend != tt.want.Backend || got.ModelID != tt.want.ModelID {
				t.Fatalf("ParseSpec = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSpecUnify(t *testing.T) {
	spec := Spec{ModelName: "gpt-4o", Attributes: map[string]any{"context_size": 128000}}
	entry := Spec{ModelName: "gpt-4o", Backend: "openai", ModelID: "gpt-4o-2024-08-06",
		Attributes: map[string]any{"context_size": 8192, "supports_images": true}}

	merged := spec.Unify(entry)
	if merged.Backend != "openai" {
		t.Fatalf("Backend = %q, want openai", merged.Backend)
	}
	if merged.ModelID != "gpt-4o-2024-08-06" {
		t.Fatalf("ModelID = %q", merged.ModelID)
	}
	if merged.Attributes["context_size"] != 128000 {
		t.Fatalf("own attributes must win, got %v", merged.Attributes["context_size"])
	}
	if !merged.HasAttr("supports_images") {
		t.Fatal("expected registry attribute to be merged")
	}
}

func TestRegistryResolve(t *testing.T) {
	registry := BuiltinRegistry()

	resolved, err := registry.Resolve(Spec{ModelName: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Backend != "openai" {
		t.Fatalf("Backend = %q, want openai", resolved.Backend)
	}

	passthrough, err := registry.Resolve(Spec{ModelName: "my-model", Backend: "generic_openai_compatible"})
	if err != nil {
		t.Fatalf("resolve passthrough: %v", err)
	}
	if passthrough.Backend != "generic_openai_compatible" {
		t.Fatalf("Backend = %q", passthrough.Backend)
	}

	_, err = registry.Resolve(Spec{ModelName: "unknown-model"})
	if !errors.Is(err, ErrUnresolvedBackend) {
		t.Fatalf("expected ErrUnresolvedBackend, got %v", err)
	}

	_, err = registry.Resolve(Spec{})
	if !errors.Is(err, ErrEmptyModelName) {
		t.Fatalf("expected ErrEmptyModelName, got %v", err)
	}
}

func TestLoadRegistryPrependsFileEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model_registry.yaml")
	content := `
- model_name: gpt-4o-mini
  backend: generic_openai_compatible
  model_id: local-mini
- model_name: vicuna-13b
  backend: generic_openai_compatible
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	registry, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}

	// File entries shadow builtin ones.
	resolved, err := registry.Resolve(Spec{ModelName: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Backend != "generic_openai_compatible" || resolved.ModelID != "local-mini" {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}

	if _, err := registry.Resolve(Spec{ModelName: "vicuna-13b"}); err != nil {
		t.Fatalf("resolve file entry: %v", err)
	}
	if _, err := registry.Resolve(Spec{ModelName: "mock"}); err != nil {
		t.Fatalf("builtin entries must survive: %v", err)
	}
}
