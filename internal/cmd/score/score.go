// Package score implements the score subcommand: it computes scores.json
// for every recorded episode of the selected games.
package score

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/clp-research/clembench-go/internal/cmd/cliutil"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

// Config holds score command configuration.
type Config struct {
	Game       string
	Experiment string

	ResultsDir string `env:"CLEM_RESULTS_DIR" envDefault:"results"`
}

// ParseConfig parses env defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Game, "g", "all", "game selector: all, a game name or a JSON fragment")
	fs.StringVar(&cfg.Experiment, "e", "", "score only this experiment")
	fs.StringVar(&cfg.ResultsDir, "r", cfg.ResultsDir, "results directory")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the score command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	benchmarks, err := cliutil.Benchmarks(cfg.Game)
	if err != nil {
		return err
	}

	total := 0
	for _, benchmark := range benchmarks {
		spec := benchmark.Spec()

		refs, err := records.ListEpisodes(cfg.ResultsDir, spec.Name)
		if err != nil {
			if errors.Is(err, records.ErrNoEpisodes) {
				continue
			}
			return err
		}
		scorer, err := benchmark.NewScorer()
		if err != nil {
			return fmt.Errorf("scorer for %s: %w", spec.Name, err)
		}

		scored := 0
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if cfg.Experiment != "" && !matchesExperiment(ref.Experiment, cfg.Experiment) {
				continue
			}

			instance, err := os.ReadFile(filepath.Join(ref.Dir, records.InstanceFile))
			if err != nil {
				return fmt.Errorf("read instance: %w", err)
			}
			interactions, err := records.ReadInteractions(ref.Dir)
			if err != nil {
				return err
			}

			scores, err := scorer.ScoreEpisode(instance, interactions)
			if err != nil {
				return fmt.Errorf("score %s episode %d: %w", spec.Name, ref.Episode, err)
			}
			if err := scoring.WriteScores(ref.Dir, scores); err != nil {
				return err
			}
			scored++
		}

		fmt.Fprintf(out, "%s: scored %d episodes\n", spec.Name, scored)
		total += scored
	}

	if total == 0 {
		return records.ErrNoEpisodes
	}
	return nil
}

// matchesExperiment compares against the experiment directory, which is
// prefixed with its index ("0_high_en").
func matchesExperiment(dirName, experiment string) bool {
	if dirName == experiment {
		return true
	}
	for i := 0; i < len(dirName); i++ {
		if dirName[i] == '_' {
			return dirName[i+1:] == experiment
		}
		if dirName[i] < '0' || dirName[i] > '9' {
			break
		}
	}
	return false
}
