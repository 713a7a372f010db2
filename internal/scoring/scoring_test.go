package scoring

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/clp-research/clembench-go/internal/records"
)

func TestLogOutcome(t *testing.T) {
	tests := []struct {
		name      string
		aborted   bool
		success   bool
		mainScore float64
		want      map[string]float64
		wantErr   error
	}{
		{
			name:      "won",
			success:   true,
			mainScore: 100,
			want: map[string]float64{
				MetricAborted: 0, MetricSuccess: 1, MetricLose: 0, MetricMainScore: 100,
			},
		},
		{
			name:      "lost",
			mainScore: 25,
			want: map[string]float64{
				MetricAborted: 0, MetricSuccess: 0, MetricLose: 1, MetricMainScore: 25,
			},
		},
		{
			name:    "aborted",
			aborted: true,
			want:    map[string]float64{MetricAborted: 1},
		},
		{
			name:      "main score out of range",
			mainScore: 120,
			wantErr:   ErrMainScoreRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := NewScores()
			err := scores.LogOutcome(tt.aborted, tt.success, tt.mainScore)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LogOutcome error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LogOutcome error = %v", err)
			}
			if len(scores.Episode) != len(tt.want) {
				t.Fatalf("episode scores = %v, want %v", scores.Episode, tt.want)
			}
			for name, want := range tt.want {
				if got, ok := scores.Episode[name]; !ok || got != want {
					t.Fatalf("%s = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestDuplicateScoresRejected(t *testing.T) {
	scores := NewScores()
	if err := scores.LogEpisodeScore(MetricMainScore, 50); err != nil {
		t.Fatalf("log episode score: %v", err)
	}
	if err := scores.LogEpisodeScore(MetricMainScore, 60); !errors.Is(err, ErrDuplicateScore) {
		t.Fatalf("expected ErrDuplicateScore, got %v", err)
	}

	if err := scores.LogTurnScore(0, MetricRequestCount, 1); err != nil {
		t.Fatalf("log turn score: %v", err)
	}
	if err := scores.LogTurnScore(0, MetricRequestCount, 2); !errors.Is(err, ErrDuplicateScore) {
		t.Fatalf("expected ErrDuplicateScore, got %v", err)
	}
	if err := scores.LogTurnScore(1, MetricRequestCount, 2); err != nil {
		t.Fatalf("other turns must stay loggable: %v", err)
	}
}

func TestScoreRequests(t *testing.T) {
	interactions := records.Interactions{Turns: [][]records.Event{
		{
			{Action: records.Action{Type: records.ActionSendMessage}},
			{Action: records.Action{Type: records.ActionGetMessage}},
			{Action: records.Action{Type: records.ActionParse}},
		},
		{
			{Action: records.Action{Type: records.ActionSendMessage}},
			{Action: records.Action{Type: records.ActionGetMessage}},
			{Action: records.Action{Type: records.ActionInvalidFormat}},
		},
	}}

	scores := NewScores()
	if err := ScoreRequests(scores, interactions); err != nil {
		t.Fatalf("score requests: %v", err)
	}

	if got := scores.Episode[MetricRequestCount]; got != 2 {
		t.Fatalf("Request Count = %v, want 2", got)
	}
	if got := scores.Episode[MetricViolatedRequestCount]; got != 1 {
		t.Fatalf("Violated Request Count = %v, want 1", got)
	}
	if got := scores.Episode[MetricRequestSuccessRatio]; got != 0.5 {
		t.Fatalf("Request Success Ratio = %v, want 0.5", got)
	}
	if got := scores.Turns[1][MetricParsedRequestCount]; got != 0 {
		t.Fatalf("turn 1 Parsed Request Count = %v, want 0", got)
	}
}

func TestWriteAndReadScores(t *testing.T) {
	dir := t.TempDir()
	episodeDir := filepath.Join(dir, "episode_0")

	scores := NewScores()
	if err := scores.LogOutcome(false, true, 100); err != nil {
		t.Fatalf("log outcome: %v", err)
	}
	if err := scores.LogTurnScore(0, MetricRequestCount, 2); err != nil {
		t.Fatalf("log turn score: %v", err)
	}

	if err := WriteScores(episodeDir, scores); err != nil {
		t.Fatalf("write scores: %v", err)
	}

	loaded, err := ReadScores(episodeDir)
	if err != nil {
		t.Fatalf("read scores: %v", err)
	}
	if loaded.Episode[MetricMainScore] != 100 {
		t.Fatalf("Main Score = %v, want 100", loaded.Episode[MetricMainScore])
	}
	if loaded.Turns[0][MetricRequestCount] != 2 {
		t.Fatalf("turn scores lost: %+v", loaded.Turns)
	}
}
