package referencegame

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/clp-research/clembench-go/internal/records"
	"github.com/clp-research/clembench-go/internal/scoring"
)

type scorer struct{}

// ScoreEpisode scores the single exchange. The main score is 100 for a
// correct grid choice and 0 otherwise; expression statistics are logged as
// extra scores.
func (scorer) ScoreEpisode(raw json.RawMessage, interactions records.Interactions) (*scoring.Scores, error) {
	var inst instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("parse referencegame instance: %w", err)
	}
	accepted := answerAliases(inst.TargetGridName)

	scores := scoring.NewScores()
	if err := scoring.ScoreRequests(scores, interactions); err != nil {
		return nil, err
	}

	aborted := false
	success := false
	for _, turn := range interactions.Turns {
		for _, event := range turn {
			switch event.Action.Type {
			case records.ActionInvalidFormat:
				aborted = true
			case records.ActionParse:
				if event.Action.Expression != "" {
					length := float64(len(event.Action.Expression))
					tokens := float64(len(strings.Fields(event.Action.Expression)))
					if err := scores.LogTurnScore(0, "Generated Expression Length", length); err != nil {
						return nil, err
					}
					if err := scores.LogTurnScore(0, "Generated Expression Number of Tokens", tokens); err != nil {
						return nil, err
					}
					if err := scores.LogEpisodeScore("Generated Expression Length", length); err != nil {
						return nil, err
					}
					if err := scores.LogEpisodeScore("Generated Expression Number of Tokens", tokens); err != nil {
						return nil, err
					}
				}
				if event.Action.Answer != "" && slices.Contains(accepted, event.Action.Answer) {
					success = true
				}
			}
		}
	}

	mainScore := 0.0
	if success {
		mainScore = 100
	}
	if err := scores.LogOutcome(aborted, success, mainScore); err != nil {
		return nil, err
	}
	return scores, nil
}
