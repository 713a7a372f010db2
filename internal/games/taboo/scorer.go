package taboo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

type scorer struct{}

// ScoreEpisode walks the interaction log and scores the episode. The main
// score rewards fast guessing: 100 divided by the number of turns played.
func (scorer) ScoreEpisode(raw json.RawMessage, interactions records.Interactions) (*scoring.Scores, error) {
	var inst instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("parse taboo instance: %w", err)
	}
	target := strings.ToLower(strings.TrimSpace(inst.TargetWord))

	scores := scoring.NewScores()
	if err := scoring.ScoreRequests(scores, interactions); err != nil {
		return nil, err
	}

	aborted := false
	success := false
	turnsPlayed := 0
	for _, turn := range interactions.Turns {
		played := false
		for _, event := range turn {
			switch event.Action.Type {
			case records.ActionInvalidFormat:
				aborted = true
			case records.ActionParse:
				played = true
				if event.Action.Guess != "" && event.Action.Guess == target {
					success = true
				}
			}
		}
		if played {
			turnsPlayed++
		}
	}

	mainScore := 0.0
	if success && turnsPlayed > 0 {
		mainScore = 100 / float64(turnsPlayed)
	}
	if err := scores.LogOutcome(aborted, success, mainScore); err != nil {
		return nil, err
	}
	return scores, nil
}
