package leaderboard

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/clp-research/clembench-go/internal/leaderboard/storage"
)

// Server exposes stored leaderboard results over HTTP.
type Server struct {
	store storage.Store
}

func NewServer(store storage.Store) *Server {
	return &Server{store: store}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/games", s.handleGames)
		r.Get("/games/{game}/results", s.handleGameResults)
		r.Get("/models/{model}", s.handleModel)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type leaderboardEntry struct {
	Rank      int     `json:"rank"`
	Model     string  `json:"model"`
	ClemScore float64 `json:"clemscore"`
	Played    float64 `json:"played_percent"`
	Quality   float64 `json:"quality"`
	Games     int     `json:"games"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListModelSummaries(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list leaderboard", err)
		return
	}

	entries := make([]leaderboardEntry, len(summaries))
	for i, summary := range summaries {
		entries[i] = leaderboardEntry{
			Rank:      i + 1,
			Model:     summary.Model,
			ClemScore: summary.ClemScore,
			Played:    summary.Played,
			Quality:   summary.Quality,
			Games:     summary.Games,
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list games", err)
		return
	}
	if games == nil {
		games = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

type gameResult struct {
	Model    string   `json:"model"`
	Episodes int      `json:"episodes"`
	Aborted  int      `json:"aborted"`
	Played   float64  `json:"played_percent"`
	Quality  *float64 `json:"quality"`
}

func (s *Server) handleGameResults(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")

	results, err := s.store.ListGameResults(r.Context(), game)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list game results", err)
		return
	}
	if len(results) == 0 {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}

	out := make([]gameResult, len(results))
	for i, rec := range results {
		out[i] = gameResult{
			Model:    rec.Model,
			Episodes: rec.Episodes,
			Aborted:  rec.Aborted,
			Played:   rec.Played,
			Quality:  rec.Quality,
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"game": game, "results": out})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")

	summary, err := s.store.GetModelSummary(r.Context(), model)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "model not found"})
			return
		}
		s.writeError(w, http.StatusInternalServerError, "get model", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"model":          summary.Model,
		"clemscore":      summary.ClemScore,
		"played_percent": summary.Played,
		"quality":        summary.Quality,
		"games":          summary.Games,
		"updated_at":     summary.UpdatedAt,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, context string, err error) {
	log.Printf("%s: %v", context, err)
	s.writeJSON(w, status, map[string]string{"error": context + " failed"})
}
