// Package run implements the run subcommand: it plays benchmark episodes
// and writes the results tree.
package run

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/clp-research/clembench-go/internal/bench"
	"github.com/clp-research/clembench-go/internal/cmd/cliutil"
	"github.com/clp-research/clembench-go/internal/model"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
)

// Config holds run command configuration.
type Config struct {
	Game   string
	Models multiFlag

	ResultsDir    string `env:"CLEM_RESULTS_DIR" envDefault:"results"`
	KeyFile       string `env:"CLEM_KEY_FILE" envDefault:"key.json"`
	ModelRegistry string `env:"CLEM_MODEL_REGISTRY"`
	APIKey        string `env:"CLEM_OPENAI_API_KEY"`
	Organisation  string `env:"CLEM_OPENAI_ORGANISATION"`
	BaseURL       string `env:"CLEM_OPENAI_BASE_URL"`

	Experiment  string
	MaxEpisodes int
	Temperature float64 `env:"CLEM_TEMPERATURE" envDefault:"0"`
	MaxTokens   int     `env:"CLEM_MAX_TOKENS" envDefault:"300"`
	Workers     int     `env:"CLEM_WORKERS" envDefault:"1"`
}

type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// ParseConfig parses env defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Game, "g", "", "game selector: all, a game name or a JSON fragment")
	fs.Var(&cfg.Models, "m", "model spec, repeat for distinct player models")
	fs.StringVar(&cfg.ResultsDir, "r", cfg.ResultsDir, "results directory")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "credentials file")
	fs.StringVar(&cfg.ModelRegistry, "registry", cfg.ModelRegistry, "model registry file")
	fs.StringVar(&cfg.Experiment, "e", "", "run only this experiment")
	fs.IntVar(&cfg.MaxEpisodes, "i", 0, "max episodes per experiment (0 = all)")
	fs.Float64Var(&cfg.Temperature, "t", cfg.Temperature, "sampling temperature")
	fs.IntVar(&cfg.MaxTokens, "l", cfg.MaxTokens, "max completion tokens")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "concurrent episodes")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	if cfg.Game == "" {
		return Config{}, fmt.Errorf("game selector is required (-g)")
	}
	if len(cfg.Models) == 0 {
		return Config{}, fmt.Errorf("at least one model is required (-m)")
	}
	return cfg, nil
}

// Run executes the run command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	benchmarks, err := cliutil.Benchmarks(cfg.Game)
	if err != nil {
		return err
	}

	models, err := cliutil.ResolveModels(cfg.Models, cliutil.ModelOptions{
		RegistryPath: cfg.ModelRegistry,
		KeyPath:      cfg.KeyFile,
		APIKey:       cfg.APIKey,
		Organisation: cfg.Organisation,
		BaseURL:      cfg.BaseURL,
		GenArgs: model.GenArgs{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	})
	if err != nil {
		return err
	}

	runner := bench.NewRunner()
	for _, benchmark := range benchmarks {
		summary, err := runner.Run(ctx, benchmark, models, bench.RunConfig{
			ResultsDir:  cfg.ResultsDir,
			Experiment:  cfg.Experiment,
			MaxEpisodes: cfg.MaxEpisodes,
			Workers:     cfg.Workers,
		})
		if err != nil {
			return fmt.Errorf("run %s: %w", benchmark.Spec().Name, err)
		}
		fmt.Fprintf(out, "%s: %d episodes played, %d aborted\n", summary.Game, summary.Episodes, summary.Aborted)
	}
	return nil
}
