// Package cliutil assembles registries, backends and models for the CLI
// subcommands.
package cliutil

import (
	"fmt"

	"github.com/clp-research/clembench-go/internal/bench"
	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/games"
	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/model/openaiapi"
)

// ModelOptions controls how model specs are resolved into playable models.
type ModelOptions struct {
	// RegistryPath points to a model_registry.yaml; empty uses builtins.
	RegistryPath string
	// KeyPath points to a key.json credentials file.
	KeyPath string

	// Environment overrides for key.json entries.
	APIKey       string
	Organisation string
	BaseURL      string

	GenArgs model.GenArgs
}

// LoadModelRegistry loads the model registry, falling back to the builtin
// entries when no file is configured.
func LoadModelRegistry(path string) (*model.Registry, error) {
	if path == "" {
		return model.BuiltinRegistry(), nil
	}
	return model.LoadRegistry(path)
}

// Backends builds the backend registry from the available credentials. The
// mock backend is always registered; provider backends join when their
// credentials resolve.
func Backends(creds model.Credentials, genArgs model.GenArgs) (*model.BackendRegistry, error) {
	registry, err := model.NewBackendRegistry(model.MockBackend{})
	if err != nil {
		return nil, err
	}

	if entry, err := creds.For(openaiapi.BackendName); err == nil {
		backend, err := openaiapi.New(entry, genArgs)
		if err != nil {
			return nil, fmt.Errorf("configure openai backend: %w", err)
		}
		if err := registry.Register(backend); err != nil {
			return nil, err
		}
	}
	if entry, err := creds.For(openaiapi.CompatibleBackendName); err == nil {
		backend, err := openaiapi.NewCompatible(entry, genArgs)
		if err != nil {
			return nil, fmt.Errorf("configure compatible backend: %w", err)
		}
		if err := registry.Register(backend); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// ResolveModels turns CLI model arguments into playable models.
func ResolveModels(specArgs []string, opts ModelOptions) ([]model.Model, error) {
	if len(specArgs) == 0 {
		return nil, fmt.Errorf("at least one model is required")
	}

	registry, err := LoadModelRegistry(opts.RegistryPath)
	if err != nil {
		return nil, err
	}

	creds, err := model.LoadCredentials(opts.KeyPath)
	if err != nil {
		return nil, err
	}
	if opts.APIKey != "" || opts.Organisation != "" {
		creds = creds.WithOverrides(openaiapi.BackendName, model.BackendCredentials{
			APIKey:       opts.APIKey,
			Organisation: opts.Organisation,
		})
	}
	if opts.BaseURL != "" {
		creds = creds.WithOverrides(openaiapi.CompatibleBackendName, model.BackendCredentials{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
		})
	}

	backends, err := Backends(creds, opts.GenArgs)
	if err != nil {
		return nil, err
	}

	resolved := make([]model.Model, 0, len(specArgs))
	for _, raw := range specArgs {
		spec, err := model.ParseSpec(raw)
		if err != nil {
			return nil, err
		}
		spec, err = registry.Resolve(spec)
		if err != nil {
			return nil, err
		}
		m, err := backends.ModelFor(spec)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", spec.ModelName, err)
		}
		resolved = append(resolved, m)
	}
	return resolved, nil
}

// Benchmarks selects built-in benchmarks with a CLI game selector.
func Benchmarks(selectorRaw string) ([]bench.Benchmark, error) {
	selector, err := game.ParseSelector(selectorRaw)
	if err != nil {
		return nil, err
	}
	registry, err := games.NewRegistry()
	if err != nil {
		return nil, err
	}
	return registry.Select(selector)
}
