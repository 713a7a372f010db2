package scoring

import "github.com/clp-research/clembench-go/internal/records"

// RequestTally counts model requests per turn. A "get message" event is one
// request; an "invalid format" event marks the preceding response as a rule
// violation.
type RequestTally struct {
	Requests int
	Violated int
}

func (t RequestTally) Parsed() int {
	return t.Requests - t.Violated
}

// TallyRequests derives per-turn request counts from an interaction log.
func TallyRequests(interactions records.Interactions) []RequestTally {
	tallies := make([]RequestTally, len(interactions.Turns))
	for i, turn := range interactions.Turns {
		for _, event := range turn {
			switch event.Action.Type {
			case records.ActionGetMessage:
				tallies[i].Requests++
			case records.ActionInvalidFormat:
				tallies[i].Violated++
			}
		}
	}
	return tallies
}

// ScoreRequests logs the canonical request metrics, per turn and summed
// over the episode. The success ratio is parsed over total requests; an
// episode without requests scores a ratio of zero.
func ScoreRequests(scores *Scores, interactions records.Interactions) error {
	var total RequestTally
	for i, tally := range TallyRequests(interactions) {
		if err := scores.LogTurnScore(i, MetricRequestCount, float64(tally.Requests)); err != nil {
			return err
		}
		if err := scores.LogTurnScore(i, MetricParsedRequestCount, float64(tally.Parsed())); err != nil {
			return err
		}
		if err := scores.LogTurnScore(i, MetricViolatedRequestCount, float64(tally.Violated)); err != nil {
			return err
		}
		total.Requests += tally.Requests
		total.Violated += tally.Violated
	}

	if err := scores.LogEpisodeScore(MetricRequestCount, float64(total.Requests)); err != nil {
		return err
	}
	if err := scores.LogEpisodeScore(MetricParsedRequestCount, float64(total.Parsed())); err != nil {
		return err
	}
	if err := scores.LogEpisodeScore(MetricViolatedRequestCount, float64(total.Violated)); err != nil {
		return err
	}

	ratio := 0.0
	if total.Requests > 0 {
		ratio = float64(total.Parsed()) / float64(total.Requests)
	}
	return scores.LogEpisodeScore(MetricRequestSuccessRatio, ratio)
}
