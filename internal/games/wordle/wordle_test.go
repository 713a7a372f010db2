package wordle

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/clp-research/clembench-go/internal/game"
	"github.com/clp-research/clembench-go/internal/model"
	"github.com/clp-research/clembench-go/internal/scoring"
)

var testInstance = json.RawMessage(`{"game_id": 0, "target_word": "house"}`)

func playEpisode(t *testing.T, guesses ...string) (*master, *scoring.Scores) {
	t.Helper()

	benchmark := Benchmark{}
	m, err := benchmark.NewMaster(game.Experiment{Name: "high_frequency"}, []model.Model{
		model.NewScriptedModel("mock", guesses...),
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

func TestLetterFeedback(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		target string
		want   string
	}{
		{
			name:  "all green",
			guess: "house", target: "house",
			want: "h<green> o<green> u<green> s<green> e<green>",
		},
		{
			name:  "mixed",
			guess: "mouse", target: "house",
			want: "m<red> o<green> u<green> s<green> e<green>",
		},
		{
			name:  "yellow letters",
			guess: "notes", target: "house",
			want: "n<red> o<green> t<red> e<yellow> s<yellow>",
		},
		{
			name:  "duplicate letters marked red once used up",
			guess: "eeeee", target: "house",
			want: "e<red> e<red> e<red> e<red> e<green>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := letterFeedback(tt.guess, tt.target); got != tt.want {
				t.Fatalf("letterFeedback = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseGuess(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "guess: house", want: "house", ok: true},
		{raw: "GUESS: House", want: "house", ok: true},
		{raw: "guess:plant", want: "plant", ok: true},
		{raw: "house", ok: false},
		{raw: "guess: too long", ok: false},
		{raw: "guess: hou5e", ok: false},
	}

	for _, tt := range tests {
		got, ok := parseGuess(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseGuess(%q) = %q, %v", tt.raw, got, ok)
		}
	}
}

func TestWinOnThirdAttempt(t *testing.T) {
	m, scores := playEpisode(t, "guess: mouse", "guess: louse", "guess: house")

	if m.Aborted() {
		t.Fatal("episode must not abort")
	}
	if scores.Episode[scoring.MetricSuccess] != 1 {
		t.Fatalf("Success = %v", scores.Episode[scoring.MetricSuccess])
	}
	want := 100.0 / 3
	if scores.Episode[scoring.MetricMainScore] != want {
		t.Fatalf("Main Score = %v, want %v", scores.Episode[scoring.MetricMainScore], want)
	}

	// Feedback after a wrong guess goes back to the player.
	history := m.History(guesserName)
	found := false
	for _, message := range history {
		if strings.HasPrefix(message.Content, "guess_feedback:") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected guess_feedback message in history")
	}
}

func TestSixWrongGuessesLose(t *testing.T) {
	_, scores := playEpisode(t,
		"guess: mouse", "guess: louse", "guess: blimp",
		"guess: crane", "guess: squat", "guess: wrong")

	if scores.Episode[scoring.MetricLose] != 1 {
		t.Fatalf("Lose = %v, want 1", scores.Episode[scoring.MetricLose])
	}
	if scores.Episode[scoring.MetricMainScore] != 0 {
		t.Fatalf("Main Score = %v, want 0", scores.Episode[scoring.MetricMainScore])
	}
	if scores.Episode[scoring.MetricRequestCount] != 6 {
		t.Fatalf("Request Count = %v, want 6", scores.Episode[scoring.MetricRequestCount])
	}
}

func TestInvalidGuessAborts(t *testing.T) {
	m, scores := playEpisode(t, "I will start with mouse")

	if !m.Aborted() {
		t.Fatal("expected abort")
	}
	if scores.Episode[scoring.MetricAborted] != 1 {
		t.Fatalf("Aborted = %v, want 1", scores.Episode[scoring.MetricAborted])
	}
}

func TestEmbeddedInstances(t *testing.T) {
	instances, err := Benchmark{}.Instances()
	if err != nil {
		t.Fatalf("instances: %v", err)
	}
	if len(instances.Experiments) != 2 {
		t.Fatalf("experiments = %d, want 2", len(instances.Experiments))
	}
	for _, experiment := range instances.Experiments {
		for _, raw := range experiment.Instances {
			var inst instance
			if err := json.Unmarshal(raw, &inst); err != nil {
				t.Fatalf("parse instance: %v", err)
			}
			if len(inst.TargetWord) != wordLength {
				t.Fatalf("target %q must have %d letters", inst.TargetWord, wordLength)
			}
		}
	}
}
