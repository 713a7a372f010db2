package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var ErrNoEpisodes = errors.New("records: no episodes found")

// PairDirName joins the participating model names into the directory name
// grouping all results for that combination, e.g. "gpt-4o--gpt-4o".
func PairDirName(models []string) string {
	sanitized := make([]string, len(models))
	for i, name := range models {
		sanitized[i] = strings.ReplaceAll(name, string(filepath.Separator), "_")
	}
	return strings.Join(sanitized, "--")
}

// ExperimentDirName names an experiment directory, e.g. "0_high_en".
func ExperimentDirName(index int, name string) string {
	return fmt.Sprintf("%d_%s", index, name)
}

// EpisodeDirName names an episode directory, e.g. "episode_3".
func EpisodeDirName(index int) string {
	return fmt.Sprintf("episode_%d", index)
}

// EpisodeRef locates one episode directory inside a results tree.
type EpisodeRef struct {
	Dir        string
	Pair       string
	Game       string
	Experiment string
	Episode    int
}

// EpisodeDir builds the directory path for one episode.
func EpisodeDir(resultsDir string, models []string, game string, expIndex int, expName string, episode int) string {
	return filepath.Join(resultsDir, PairDirName(models), game,
		ExperimentDirName(expIndex, expName), EpisodeDirName(episode))
}

// ListEpisodes walks a results tree and returns every episode directory that
// holds an interactions record, sorted by pair, game, experiment and episode.
// An empty game filters nothing.
func ListEpisodes(resultsDir, game string) ([]EpisodeRef, error) {
	pairs, err := os.ReadDir(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	var refs []EpisodeRef
	for _, pair := range pairs {
		if !pair.IsDir() {
			continue
		}
		games, err := os.ReadDir(filepath.Join(resultsDir, pair.Name()))
		if err != nil {
			return nil, fmt.Errorf("read pair dir: %w", err)
		}
		for _, gameDir := range games {
			if !gameDir.IsDir() {
				continue
			}
			if game != "" && gameDir.Name() != game {
				continue
			}
			experiments, err := os.ReadDir(filepath.Join(resultsDir, pair.Name(), gameDir.Name()))
			if err != nil {
				return nil, fmt.Errorf("read game dir: %w", err)
			}
			for _, exp := range experiments {
				if !exp.IsDir() {
					continue
				}
				expDir := filepath.Join(resultsDir, pair.Name(), gameDir.Name(), exp.Name())
				episodes, err := os.ReadDir(expDir)
				if err != nil {
					return nil, fmt.Errorf("read experiment dir: %w", err)
				}
				for _, ep := range episodes {
					index, ok := episodeIndex(ep.Name())
					if !ok || !ep.IsDir() {
						continue
					}
					dir := filepath.Join(expDir, ep.Name())
					if _, err := os.Stat(filepath.Join(dir, InteractionsFile)); err != nil {
						continue
					}
					refs = append(refs, EpisodeRef{
						Dir:        dir,
						Pair:       pair.Name(),
						Game:       gameDir.Name(),
						Experiment: exp.Name(),
						Episode:    index,
					})
				}
			}
		}
	}

	if len(refs) == 0 {
		return nil, ErrNoEpisodes
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Pair != b.Pair {
			return a.Pair < b.Pair
		}
		if a.Game != b.Game {
			return a.Game < b.Game
		}
		if a.Experiment != b.Experiment {
			return a.Experiment < b.Experiment
		}
		return a.Episode < b.Episode
	})
	return refs, nil
}

func episodeIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "episode_")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return index, true
}
