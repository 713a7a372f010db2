// Package evalcmd implements the eval subcommand: it aggregates scored
// episodes into benchmark tables and publishes them to the leaderboard
// store.
package evalcmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/clp-research/clembench-go/internal/eval"
	"github.com/clp-research/clembench-go/internal/leaderboard"
	"github.com/clp-research/clembench-go/internal/leaderboard/storage/sqlite"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
	"github.com/clp-research/clembench-go/internal/records"
)

// Config holds eval command configuration.
type Config struct {
	ResultsDir string `env:"CLEM_RESULTS_DIR" envDefault:"results"`
	StorePath  string `env:"CLEM_STORE_PATH" envDefault:"leaderboard.db"`

	// SkipStore leaves the leaderboard database untouched.
	SkipStore bool
}

// ParseConfig parses env defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ResultsDir, "r", cfg.ResultsDir, "results directory")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "leaderboard database path")
	fs.BoolVar(&cfg.SkipStore, "no-store", false, "skip writing to the leaderboard database")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the eval command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	report, err := eval.Evaluate(cfg.ResultsDir)
	if err != nil {
		return err
	}

	csvData, err := report.CSV()
	if err != nil {
		return err
	}
	if err := records.WriteFile(filepath.Join(cfg.ResultsDir, eval.CSVFile), csvData); err != nil {
		return err
	}
	htmlData, err := report.HTML()
	if err != nil {
		return err
	}
	if err := records.WriteFile(filepath.Join(cfg.ResultsDir, eval.HTMLFile), htmlData); err != nil {
		return err
	}

	for _, summary := range report.Models {
		fmt.Fprintf(out, "%s: clemscore %.2f (%.2f%% played, quality %.2f)\n",
			summary.Model, summary.ClemScore, summary.Played, summary.Quality)
	}
	fmt.Fprintf(out, "wrote %s and %s\n",
		filepath.Join(cfg.ResultsDir, eval.CSVFile), filepath.Join(cfg.ResultsDir, eval.HTMLFile))

	if cfg.SkipStore {
		return nil
	}

	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := leaderboard.Publish(ctx, store, report); err != nil {
		return err
	}
	fmt.Fprintf(out, "published to %s\n", cfg.StorePath)
	return nil
}
