package referencegame

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/scoring"
)

var testInstance = json.RawMessage(`{
	"game_id": 0,
	"player_1_prompt": "Describe the target grid.",
	"player_2_prompt": "Referring expression: TARGET_EXPRESSION. Which grid?",
	"target_grid_name": "first"
}`)

func playEpisode(t *testing.T, giverReply, followerReply string) (*master, *scoring.Scores) {
	t.Helper()

	benchmark := Benchmark{}
	m, err := benchmark.NewMaster(game.Experiment{Name: "line_grids"}, []model.Model{
		model.NewScriptedModel("mock-giver", giverReply),
		model.NewScriptedModel("mock-follower", followerReply),
	})
	if err != nil {
		t.Fatalf("new master: %v", err)
	}
	if err := m.Play(context.Background(), testInstance); err != nil {
		t.Fatalf("play: %v", err)
	}

	scorer, err := benchmark.NewScorer()
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	scores, err := scorer.ScoreEpisode(testInstance, m.Interactions())
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	return m.(*master), scores
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "valid",
			raw:  "Expression: the grid with a filled top row",
			want: "the grid with a filled top row",
			ok:   true,
		},
		{
			name: "case insensitive tag",
			raw:  "EXPRESSION: filled top row",
			want: "filled top row",
			ok:   true,
		},
		{name: "missing tag", raw: "the grid with a filled top row"},
		{name: "tag not at start", raw: "Here: Expression: filled top row"},
		{name: "extra paragraph", raw: "Expression: filled top row\n\nI hope that helps!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseExpression(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("parseExpression(%q) = %q, %v", tt.raw, got, ok)
			}
		})
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "valid", raw: "Answer: first", want: "first", ok: true},
		{name: "numeral", raw: "Answer: 2", want: "2", ok: true},
		{name: "tag anywhere", raw: "I think the answer is clear. Answer: third grid.", want: "third", ok: true},
		{name: "no tag", raw: "first"},
		{name: "no option", raw: "Answer: the left one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAnswer(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("parseAnswer(%q) = %q, %v", tt.raw, got, ok)
			}
		})
	}
}

func TestSuccessfulEpisode(t *testing.T) {
	m, scores := playEpisode(t,
		"Expression: the grid with a filled top row",
		"Answer: first",
	)

	if m.Aborted() {
		t.Fatal("episode must not abort")
	}
	if scores.Episode[scoring.MetricSuccess] != 1 {
		t.Fatalf("Success = %v", scores.Episode[scoring.MetricSuccess])
	}
	if scores.Episode[scoring.MetricMainScore] != 100 {
		t.Fatalf("Main Score = %v", scores.Episode[scoring.MetricMainScore])
	}
	if scores.Episode["Generated Expression Number of Tokens"] != 7 {
		t.Fatalf("token count = %v", scores.Episode["Generated Expression Number of Tokens"])
	}

	// The expression, not the raw reply, is substituted into the prompt.
	history := m.History(instructionFollower)
	if !strings.Contains(history[0].Content, "Referring expression: the grid with a filled top row.") {
		t.Fatalf("unexpected follower prompt %q", history[0].Content)
	}
}

func TestNumeralAnswerCountsAsSuccess(t *testing.T) {
	_, scores := playEpisode(t,
		"Expression: the grid with a filled top row",
		"Answer: 1",
	)
	if scores.Episode[scoring.MetricSuccess] != 1 {
		t.Fatalf("Success = %v", scores.Episode[scoring.MetricSuccess])
	}
}

func TestWrongAnswerLoses(t *testing.T) {
	_, scores := playEpisode(t,
		"Expression: the grid with a filled top row",
		"Answer: second",
	)
	if scores.Episode[scoring.MetricLose] != 1 {
		t.Fatalf("Lose = %v", scores.Episode[scoring.MetricLose])
	}
	if scores.Episode[scoring.MetricMainScore] != 0 {
		t.Fatalf("Main Score = %v", scores.Episode[scoring.MetricMainScore])
	}
}

func TestInvalidExpressionAborts(t *testing.T) {
	m, scores := playEpisode(t,
		"The target grid has a filled top row",
		"Answer: first",
	)

	if !m.Aborted() {
		t.Fatal("expected abort")
	}
	if scores.Episode[scoring.MetricAborted] != 1 {
		t.Fatalf("Aborted = %v", scores.Episode[scoring.MetricAborted])
	}
	// Player 2 is never prompted after an invalid expression.
	if scores.Episode[scoring.MetricRequestCount] != 1 {
		t.Fatalf("Request Count = %v, want 1", scores.Episode[scoring.MetricRequestCount])
	}
}

func TestInvalidAnswerAborts(t *testing.T) {
	m, _ := playEpisode(t,
		"Expression: the grid with a filled top row",
		"It must be the first grid",
	)
	if !m.Aborted() {
		t.Fatal("expected abort")
	}
}

func TestEmbeddedInstances(t *testing.T) {
	instances, err := Benchmark{}.Instances()
	if err != nil {
		t.Fatalf("instances: %v", err)
	}
	experiment, err := instances.Experiment("line_grids")
	if err != nil {
		t.Fatalf("experiment: %v", err)
	}
	for _, raw := range experiment.Instances {
		var inst instance
		if err := json.Unmarshal(raw, &inst); err != nil {
			t.Fatalf("parse instance: %v", err)
		}
		if !strings.Contains(inst.Player2Prompt, expressionPlaceholder) {
			t.Fatalf("instance %d misses the expression placeholder", inst.GameID)
		}
		if len(answerAliases(inst.TargetGridName)) != 2 {
			t.Fatalf("instance %d has unexpected target %q", inst.GameID, inst.TargetGridName)
		}
	}
}
