// Package leaderboard persists benchmark evaluations and serves them over
// HTTP.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/clp-research/clembench-go/internal/eval"
	"github.com/clp-research/clembench-go/internal/leaderboard/storage"
	"github.com/clp-research/clembench-go/internal/platform/id"
)

// Publish writes an evaluation report into the store. Existing entries for
// the same model and game are overwritten.
func Publish(ctx context.Context, store storage.Store, report eval.Report) error {
	now := time.Now().UTC()

	for _, result := range report.Games {
		recordID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		record := storage.GameResultRecord{
			ID:        recordID,
			Model:     result.Model,
			Game:      result.Game,
			Episodes:  result.Episodes,
			Aborted:   result.Aborted,
			Played:    result.Played,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if result.HasQuality {
			quality := result.Quality
			record.Quality = &quality
		}
		if err := store.PutGameResult(ctx, record); err != nil {
			return fmt.Errorf("publish %s/%s: %w", result.Model, result.Game, err)
		}
	}

	for _, summary := range report.Models {
		recordID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		record := storage.ModelSummaryRecord{
			ID:        recordID,
			Model:     summary.Model,
			Games:     summary.Games,
			Played:    summary.Played,
			Quality:   summary.Quality,
			ClemScore: summary.ClemScore,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.PutModelSummary(ctx, record); err != nil {
			return fmt.Errorf("publish summary %s: %w", summary.Model, err)
		}
	}
	return nil
}
