package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/clp-research/clembench-go/internal/eval"
	"github.com/clp-research/clembench-go/internal/leaderboard/storage/sqlite"
)

func newTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "leaderboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewServer(store), store
}

func seedReport(t *testing.T, store *sqlite.Store) {
	t.Helper()
	report := eval.Report{
		Games: []eval.GameResult{
			{Model: "gpt-4o--gpt-4o", Game: "taboo", Episodes: 10, Aborted: 1, Played: 90, Quality: 80, HasQuality: true},
			{Model: "mock--mock", Game: "taboo", Episodes: 10, Aborted: 10, Played: 0},
		},
		Models: []eval.ModelResult{
			{Model: "gpt-4o--gpt-4o", Games: 1, Played: 90, Quality: 80, ClemScore: 72},
			{Model: "mock--mock", Games: 1, Played: 0, Quality: 0, ClemScore: 0},
		},
	}
	if err := Publish(context.Background(), store, report); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)
	rec := get(t, server.Routes(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedReport(t, store)

	rec := get(t, server.Routes(), "/api/leaderboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Leaderboard []leaderboardEntry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Leaderboard) != 2 {
		t.Fatalf("entries = %d, want 2", len(body.Leaderboard))
	}
	first := body.Leaderboard[0]
	if first.Rank != 1 || first.Model != "gpt-4o--gpt-4o" || first.ClemScore != 72 {
		t.Fatalf("first entry = %+v", first)
	}
}

func TestGamesEndpoints(t *testing.T) {
	server, store := newTestServer(t)
	seedReport(t, store)
	handler := server.Routes()

	rec := get(t, handler, "/api/games")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var games struct {
		Games []string `json:"games"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &games); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(games.Games) != 1 || games.Games[0] != "taboo" {
		t.Fatalf("games = %v", games.Games)
	}

	rec = get(t, handler, "/api/games/taboo/results")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var results struct {
		Results []gameResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(results.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(results.Results))
	}
	// Fully aborted runs surface a null quality, not a zero.
	for _, result := range results.Results {
		if result.Model == "mock--mock" && result.Quality != nil {
			t.Fatalf("expected null quality, got %v", *result.Quality)
		}
	}

	rec = get(t, handler, "/api/games/imagegame/results")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestModelEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedReport(t, store)
	handler := server.Routes()

	rec := get(t, handler, "/api/models/gpt-4o--gpt-4o")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["clemscore"] != 72.0 {
		t.Fatalf("clemscore = %v", body["clemscore"])
	}

	rec = get(t, handler, "/api/models/unknown")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	server, store := newTestServer(t)
	seedReport(t, store)
	seedReport(t, store)

	rec := get(t, server.Routes(), "/api/leaderboard")
	var body struct {
		Leaderboard []leaderboardEntry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Leaderboard) != 2 {
		t.Fatalf("entries = %d, want 2", len(body.Leaderboard))
	}
}
