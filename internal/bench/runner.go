package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/records"
)

// RunConfig controls one benchmark run.
type RunConfig struct {
	ResultsDir  string
	Experiment  string // run only this experiment when set
	MaxEpisodes int    // per experiment, 0 means all
	Workers     int    // concurrent episodes, minimum 1
}

// RunSummary reports what a run produced.
type RunSummary struct {
	Game     string
	Episodes int
	Aborted  int
}

type experimentMeta struct {
	Name      string    `json:"name"`
	Game      string    `json:"game"`
	Models    []string  `json:"models"`
	Episodes  int       `json:"episodes"`
	Timestamp time.Time `json:"timestamp"`
}

// Runner plays benchmark episodes and writes the results tree.
type Runner struct {
	now func() time.Time
}

func NewRunner() *Runner {
	return &Runner{now: time.Now}
}

// Run plays every selected instance of one game. A single model is paired
// with itself when the game needs more players. Episodes run concurrently
// up to cfg.Workers; the first infrastructure error cancels the rest.
// Aborted episodes are recorded, not treated as errors.
func (r *Runner) Run(ctx context.Context, b Benchmark, models []model.Model, cfg RunConfig) (RunSummary, error) {
	spec := b.Spec()

	models, err := expandModels(models, spec.Players)
	if err != nil {
		return RunSummary{}, err
	}
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name()
	}

	instances, err := b.Instances()
	if err != nil {
		return RunSummary{}, fmt.Errorf("load instances for %s: %w", spec.Name, err)
	}
	// The directory index is the position in the full experiments list, so
	// a filtered run writes into the same directory as a full run would.
	type indexedExperiment struct {
		index      int
		experiment game.Experiment
	}
	experiments := make([]indexedExperiment, 0, len(instances.Experiments))
	for i, experiment := range instances.Experiments {
		if cfg.Experiment != "" && experiment.Name != cfg.Experiment {
			continue
		}
		experiments = append(experiments, indexedExperiment{index: i, experiment: experiment})
	}
	if cfg.Experiment != "" && len(experiments) == 0 {
		return RunSummary{}, fmt.Errorf("%w: %q", game.ErrExperimentNotFound, cfg.Experiment)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var played, aborted atomic.Int64

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, entry := range experiments {
		expIndex, experiment := entry.index, entry.experiment
		episodes := experiment.Instances
		if cfg.MaxEpisodes > 0 && len(episodes) > cfg.MaxEpisodes {
			episodes = episodes[:cfg.MaxEpisodes]
		}

		expDir := filepath.Join(cfg.ResultsDir, records.PairDirName(names), spec.Name,
			records.ExperimentDirName(expIndex, experiment.Name))
		meta := experimentMeta{
			Name:      experiment.Name,
			Game:      spec.Name,
			Models:    names,
			Episodes:  len(episodes),
			Timestamp: r.now().UTC(),
		}
		if err := records.WriteJSON(filepath.Join(expDir, records.ExperimentFile), meta); err != nil {
			return RunSummary{}, err
		}

		for position, instance := range episodes {
			experiment := experiment
			instance := instance
			episode := episodeNumber(instance, position)

			group.Go(func() error {
				master, err := b.NewMaster(experiment, models)
				if err != nil {
					return fmt.Errorf("new master for %s: %w", spec.Name, err)
				}
				if err := master.Play(ctx, instance); err != nil {
					return fmt.Errorf("play %s %s episode %d: %w", spec.Name, experiment.Name, episode, err)
				}

				dir := filepath.Join(expDir, records.EpisodeDirName(episode))
				if err := records.WriteJSON(filepath.Join(dir, records.InstanceFile), instance); err != nil {
					return err
				}
				if err := records.WriteJSON(filepath.Join(dir, records.InteractionsFile), master.Interactions()); err != nil {
					return err
				}
				if err := records.WriteJSON(filepath.Join(dir, records.RequestsFile), master.Requests()); err != nil {
					return err
				}

				played.Add(1)
				if master.Aborted() {
					aborted.Add(1)
					log.Printf("%s %s episode %d aborted", spec.Name, experiment.Name, episode)
				}
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		Game:     spec.Name,
		Episodes: int(played.Load()),
		Aborted:  int(aborted.Load()),
	}, nil
}

// expandModels pairs a single model with itself for multi-player games.
func expandModels(models []model.Model, players int) ([]model.Model, error) {
	if players < 1 {
		players = 1
	}
	if len(models) == 1 && players > 1 {
		expanded := make([]model.Model, players)
		for i := range expanded {
			expanded[i] = models[0]
		}
		return expanded, nil
	}
	if len(models) != players {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrPlayerCount, len(models), players)
	}
	return models, nil
}

// episodeNumber prefers the instance's own game_id so episode directories
// stay stable across partial runs.
func episodeNumber(instance json.RawMessage, position int) int {
	var probe struct {
		GameID *int `json:"game_id"`
	}
	if err := json.Unmarshal(instance, &probe); err == nil && probe.GameID != nil {
		return *probe.GameID
	}
	return position
}
