package wordle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

type scorer struct{}

// ScoreEpisode scores one wordle episode. The main score rewards early
// wins: 100 divided by the number of attempts used.
func (scorer) ScoreEpisode(raw json.RawMessage, interactions records.Interactions) (*scoring.Scores, error) {
	var inst instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("parse wordle instance: %w", err)
	}
	target := strings.ToLower(strings.TrimSpace(inst.TargetWord))

	scores := scoring.NewScores()
	if err := scoring.ScoreRequests(scores, interactions); err != nil {
		return nil, err
	}

	aborted := false
	success := false
	attempts := 0
	for turnIndex, turn := range interactions.Turns {
		for _, event := range turn {
			switch event.Action.Type {
			case records.ActionInvalidFormat:
				aborted = true
			case records.ActionParse:
				attempts++
				correct := 0.0
				if event.Action.Guess == target {
					success = true
					correct = 1
				}
				if err := scores.LogTurnScore(turnIndex, "Closeness", closeness(event.Action.Feedback)); err != nil {
					return nil, err
				}
				if err := scores.LogTurnScore(turnIndex, "Correct Guess", correct); err != nil {
					return nil, err
				}
			}
		}
	}

	mainScore := 0.0
	if success && attempts > 0 {
		mainScore = 100 / float64(attempts)
	}
	if err := scores.LogOutcome(aborted, success, mainScore); err != nil {
		return nil, err
	}
	return scores, nil
}

// closeness is the share of green letters in a feedback string.
func closeness(feedback string) float64 {
	if feedback == "" {
		return 0
	}
	green := strings.Count(feedback, "<green>")
	return float64(green) / wordLength
}
