// Package storage defines the persistence contract for leaderboard results.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// GameResultRecord stores one model pair's aggregate on one game.
type GameResultRecord struct {
	ID       string
	Model    string
	Game     string
	Episodes int
	Aborted  int
	Played   float64
	// Quality is nil when every episode of the game was aborted.
	Quality   *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ModelSummaryRecord stores one model pair's cross-game leaderboard entry.
type ModelSummaryRecord struct {
	ID        string
	Model     string
	Games     int
	Played    float64
	Quality   float64
	ClemScore float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists leaderboard records. Writes are upserts keyed on the
// model/game combination so re-evaluating a results tree is idempotent.
type Store interface {
	PutGameResult(ctx context.Context, record GameResultRecord) error
	PutModelSummary(ctx context.Context, record ModelSummaryRecord) error

	ListGameResults(ctx context.Context, game string) ([]GameResultRecord, error)
	ListGames(ctx context.Context) ([]string, error)
	GetModelSummary(ctx context.Context, model string) (ModelSummaryRecord, error)
	ListModelSummaries(ctx context.Context) ([]ModelSummaryRecord, error)

	Close() error
}
