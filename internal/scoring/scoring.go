// Package scoring computes per-episode metrics from recorded interactions.
//
// Scores split into turn-level and episode-level values. The episode level
// carries the canonical outcome metrics shared by all games; the main score
// is each game's own quality measure on a 0-100 scale.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/clp-research/clembench-go/internal/records"
)

// Canonical metric names.
const (
	MetricAborted              = "Aborted"
	MetricLose                 = "Lose"
	MetricSuccess              = "Success"
	MetricRequestCount         = "Request Count"
	MetricParsedRequestCount   = "Parsed Request Count"
	MetricViolatedRequestCount = "Violated Request Count"
	MetricRequestSuccessRatio  = "Request Success Ratio"
	MetricMainScore            = "Main Score"
	MetricPlayed               = "Played"
)

var (
	ErrDuplicateScore = errors.New("scoring: score already logged")
	ErrMainScoreRange = errors.New("scoring: main score out of range")
)

// Scores is the content of an episode's scores.json. Turn scores are keyed
// by turn index. Metrics that do not apply to an episode are absent rather
// than set to a sentinel value: an aborted episode has no Success, Lose or
// Main Score entries.
type Scores struct {
	Turns   map[int]map[string]float64 `json:"turn scores"`
	Episode map[string]float64         `json:"episode scores"`
}

func NewScores() *Scores {
	return &Scores{
		Turns:   make(map[int]map[string]float64),
		Episode: make(map[string]float64),
	}
}

// LogTurnScore records a turn-level metric value.
func (s *Scores) LogTurnScore(turn int, name string, value float64) error {
	if s.Turns[turn] == nil {
		s.Turns[turn] = make(map[string]float64)
	}
	if _, ok := s.Turns[turn][name]; ok {
		return fmt.Errorf("%w: turn %d %q", ErrDuplicateScore, turn, name)
	}
	s.Turns[turn][name] = value
	return nil
}

// LogEpisodeScore records an episode-level metric value.
func (s *Scores) LogEpisodeScore(name string, value float64) error {
	if _, ok := s.Episode[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateScore, name)
	}
	s.Episode[name] = value
	return nil
}

// LogOutcome records the canonical outcome metrics. Aborted episodes get
// only Aborted=1; played episodes additionally get Success, Lose and the
// game's main score.
func (s *Scores) LogOutcome(aborted, success bool, mainScore float64) error {
	if aborted {
		return s.LogEpisodeScore(MetricAborted, 1)
	}
	if mainScore < 0 || mainScore > 100 {
		return fmt.Errorf("%w: %v", ErrMainScoreRange, mainScore)
	}
	if err := s.LogEpisodeScore(MetricAborted, 0); err != nil {
		return err
	}
	successValue, loseValue := 0.0, 1.0
	if success {
		successValue, loseValue = 1, 0
	}
	if err := s.LogEpisodeScore(MetricSuccess, successValue); err != nil {
		return err
	}
	if err := s.LogEpisodeScore(MetricLose, loseValue); err != nil {
		return err
	}
	return s.LogEpisodeScore(MetricMainScore, mainScore)
}

// Scorer turns one episode's interaction log into scores. The raw game
// instance is passed along so scorers can compare against targets that are
// not part of the log itself.
type Scorer interface {
	ScoreEpisode(instance json.RawMessage, interactions records.Interactions) (*Scores, error)
}

// WriteScores writes scores.json into an episode directory.
func WriteScores(episodeDir string, scores *Scores) error {
	return records.WriteJSON(filepath.Join(episodeDir, records.ScoresFile), scores)
}

// ReadScores loads an episode's scores.json.
func ReadScores(episodeDir string) (*Scores, error) {
	scores := NewScores()
	if err := records.ReadJSON(filepath.Join(episodeDir, records.ScoresFile), scores); err != nil {
		return nil, err
	}
	return scores, nil
}
