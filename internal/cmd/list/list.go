// Package list implements the list subcommand: it prints the known games,
// models and backends.
package list

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/clp-research/clembench-go/internal/cmd/cliutil"
	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/games"
	"github.com/clp-research/clembench-go/internal/model"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
)

// Config holds list command configuration.
type Config struct {
	// Kind is what to list: games, models or backends.
	Kind string
	// Remote also queries configured backends for the models they serve.
	Remote bool

	GameDir       string `env:"CLEM_GAME_DIR"`
	ModelRegistry string `env:"CLEM_MODEL_REGISTRY"`
	KeyFile       string `env:"CLEM_KEY_FILE" envDefault:"key.json"`
}

// ParseConfig parses env defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.GameDir, "d", cfg.GameDir, "directory to scan for external game definitions")
	fs.StringVar(&cfg.ModelRegistry, "m", cfg.ModelRegistry, "model registry file (default: builtin entries)")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "credentials file")
	fs.BoolVar(&cfg.Remote, "remote", false, "also list the models served by configured backends")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	cfg.Kind = strings.TrimSpace(fs.Arg(0))
	if cfg.Kind == "" {
		cfg.Kind = "games"
	}
	return cfg, nil
}

// Run executes the list command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch cfg.Kind {
	case "games":
		return listGames(cfg, out)
	case "models":
		return listModels(ctx, cfg, out)
	case "backends":
		return listBackends(cfg, out)
	default:
		return fmt.Errorf("unknown listing %q (want games, models or backends)", cfg.Kind)
	}
}

func listGames(cfg Config, out io.Writer) error {
	registry, err := games.NewRegistry()
	if err != nil {
		return err
	}

	specs := registry.Specs()
	if cfg.GameDir != "" {
		external, err := game.LoadRegistry(cfg.GameDir)
		if err != nil {
			return err
		}
		specs = append(specs, external.Specs()...)
	}

	fmt.Fprintf(out, "Found %d games:\n", len(specs))
	for _, spec := range specs {
		source := "builtin"
		if !spec.Builtin {
			source = spec.Path
		}
		fmt.Fprintf(out, "  %s (%s): %s\n", spec.Name, source, spec.Description)
	}
	return nil
}

// modelLister is implemented by backends that can enumerate their remote
// models.
type modelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

func listModels(ctx context.Context, cfg Config, out io.Writer) error {
	registry, err := cliutil.LoadModelRegistry(cfg.ModelRegistry)
	if err != nil {
		return err
	}

	specs := registry.Specs()
	fmt.Fprintf(out, "Found %d models:\n", len(specs))
	for _, spec := range specs {
		fmt.Fprintf(out, "  %s -> %s (%s)\n", spec.ModelName, spec.EffectiveModelID(), spec.Backend)
	}
	if !cfg.Remote {
		return nil
	}

	creds, err := model.LoadCredentials(cfg.KeyFile)
	if err != nil {
		return err
	}
	backends, err := cliutil.Backends(creds, model.GenArgs{})
	if err != nil {
		return err
	}

	names := backends.Names()
	sort.Strings(names)
	for _, name := range names {
		backend, err := backends.Lookup(name)
		if err != nil {
			return err
		}
		lister, ok := backend.(modelLister)
		if !ok {
			continue
		}
		remote, err := lister.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("list %s models: %w", name, err)
		}
		fmt.Fprintf(out, "%s serves %d models:\n", name, len(remote))
		for _, modelID := range remote {
			fmt.Fprintf(out, "  %s\n", modelID)
		}
	}
	return nil
}

func listBackends(cfg Config, out io.Writer) error {
	creds, err := model.LoadCredentials(cfg.KeyFile)
	if err != nil {
		return err
	}
	backends, err := cliutil.Backends(creds, model.GenArgs{})
	if err != nil {
		return err
	}

	names := backends.Names()
	sort.Strings(names)
	fmt.Fprintf(out, "Found %d configured backends:\n", len(names))
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}
