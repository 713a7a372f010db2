// Package transcribe implements the transcribe subcommand: it renders
// recorded episodes into HTML and markdown transcripts.
package transcribe

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/clp-research/clembench-go/internal/cmd/cliutil"
	platformcmd "github.com/clp-research/clembench-go/internal/platform/cmd"
	"github.com/clp-research/clembench-go/internal/records"
)

// Config holds transcribe command configuration.
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
	fs.StringVar(&cfg.Experiment, "e", "", "transcribe only this experiment")
	fs.StringVar(&cfg.ResultsDir, "r", cfg.ResultsDir, "results directory")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the transcribe command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	benchmarks, err := cliutil.Benchmarks(cfg.Game)
	if err != nil {
		return err
	}

	total := 0
	for _, benchmark := range benchmarks {
		name := benchmark.Spec().Name

		refs, err := records.ListEpisodes(cfg.ResultsDir, name)
		if err != nil {
			if errors.Is(err, records.ErrNoEpisodes) {
				continue
			}
			return err
		}

		written := 0
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if cfg.Experiment != "" && !matchesExperiment(ref.Experiment, cfg.Experiment) {
				continue
			}

			interactions, err := records.ReadInteractions(ref.Dir)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("%s, %s, episode %d (%s)", name, ref.Experiment, ref.Episode, ref.Pair)
			html, err := records.TranscriptHTML(title, interactions)
			if err != nil {
				return err
			}
			if err := records.WriteFile(filepath.Join(ref.Dir, records.TranscriptHTMLFile), html); err != nil {
				return err
			}
			md := records.TranscriptMarkdown(title, interactions)
			if err := records.WriteFile(filepath.Join(ref.Dir, records.TranscriptMDFile), md); err != nil {
				return err
			}
			written++
		}

		fmt.Fprintf(out, "%s: transcribed %d episodes\n", name, written)
		total += written
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
