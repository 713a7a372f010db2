// Package eval aggregates episode scores across a results tree into
// benchmark-level numbers: the played percentage, the quality score over
// played episodes and the combined clemscore.
package eval

import (
	"errors"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

var ErrNoScores = errors.New("eval: no scored episodes found")

// GameResult aggregates one model pair on one game.
type GameResult struct {
	Model    string  `json:"model"`
	Game     string  `json:"game"`
	Episodes int     `json:"episodes"`
	Aborted  int     `json:"aborted"`
	Played   float64 `json:"played_percent"`

	// Quality is the mean main score over played episodes. It is unset
	// when every episode was aborted.
	Quality    float64 `json:"quality,omitempty"`
	HasQuality bool    `json:"-"`
}

// ModelResult is the cross-game summary for one model pair. Played and
// Quality are macro-averages over the games the model was run on.
type ModelResult struct {
	Model     string  `json:"model"`
	Games     int     `json:"games"`
	Played    float64 `json:"played_percent"`
	Quality   float64 `json:"quality"`
	ClemScore float64 `json:"clemscore"`
}

// Report is the full evaluation output.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Games       []GameResult  `json:"games"`
	Models      []ModelResult `json:"models"`
}

type cell struct {
	episodes int
	aborted  int
	success  float64
	quality  float64
	played   int
}

// Evaluate reads every scored episode under resultsDir and aggregates per
// model pair and game. Episodes without a scores record are skipped with a
// log note so partially scored trees still evaluate.
func Evaluate(resultsDir string) (Report, error) {
	refs, err := records.ListEpisodes(resultsDir, "")
	if err != nil {
		return Report{}, err
	}

	cells := make(map[[2]string]*cell)
	scored := 0
	for _, ref := range refs {
		scores, err := scoring.ReadScores(ref.Dir)
		if err != nil {
			log.Printf("skipping unscored episode %s", filepath.Join(ref.Pair, ref.Game, ref.Experiment, records.EpisodeDirName(ref.Episode)))
			continue
		}
		scored++

		key := [2]string{ref.Pair, ref.Game}
		c := cells[key]
		if c == nil {
			c = &cell{}
			cells[key] = c
		}
		c.episodes++
		if scores.Episode[scoring.MetricAborted] == 1 {
			c.aborted++
			continue
		}
		c.played++
		c.success += scores.Episode[scoring.MetricSuccess]
		c.quality += scores.Episode[scoring.MetricMainScore]
	}
	if scored == 0 {
		return Report{}, ErrNoScores
	}

	report := Report{GeneratedAt: time.Now().UTC()}
	for key, c := range cells {
		result := GameResult{
			Model:    key[0],
			Game:     key[1],
			Episodes: c.episodes,
			Aborted:  c.aborted,
			Played:   100 * float64(c.episodes-c.aborted) / float64(c.episodes),
		}
		if c.played > 0 {
			result.Quality = c.quality / float64(c.played)
			result.HasQuality = true
		}
		report.Games = append(report.Games, result)
	}
	sort.Slice(report.Games, func(i, j int) bool {
		a, b := report.Games[i], report.Games[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		return a.Game < b.Game
	})

	report.Models = summarize(report.Games)
	return report, nil
}

// summarize macro-averages game results per model. The clemscore combines
// robustness and quality: (played/100) * quality.
func summarize(results []GameResult) []ModelResult {
	perModel := make(map[string][]GameResult)
	for _, result := range results {
		perModel[result.Model] = append(perModel[result.Model], result)
	}

	var models []ModelResult
	for name, games := range perModel {
		summary := ModelResult{Model: name, Games: len(games)}
		quality, withQuality := 0.0, 0
		for _, g := range games {
			summary.Played += g.Played
			if g.HasQuality {
				quality += g.Quality
				withQuality++
			}
		}
		summary.Played /= float64(len(games))
		if withQuality > 0 {
			summary.Quality = quality / float64(withQuality)
		}
		summary.ClemScore = summary.Played / 100 * summary.Quality
		models = append(models, summary)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].ClemScore != models[j].ClemScore {
			return models[i].ClemScore > models[j].ClemScore
		}
		return models[i].Model < models[j].Model
	})
	return models
}
