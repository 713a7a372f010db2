package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clp-research/clembench-go/internal/leaderboard/storage"
)

// PutGameResult upserts a per-game aggregate keyed on (model, game).
func (s *Store) PutGameResult(ctx context.Context, record storage.GameResultRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("result id is required")
	}
	if strings.TrimSpace(record.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(record.Game) == "" {
		return fmt.Errorf("game is required")
	}

	var quality sql.NullFloat64
	if record.Quality != nil {
		quality = sql.NullFloat64{Float64: *record.Quality, Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO game_results (
	id, model, game, episodes, aborted, played, quality, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(model, game) DO UPDATE SET
	episodes = excluded.episodes,
	aborted = excluded.aborted,
	played = excluded.played,
	quality = excluded.quality,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Model,
		record.Game,
		record.Episodes,
		record.Aborted,
		record.Played,
		quality,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put game result: %w", err)
	}
	return nil
}

// PutModelSummary upserts a leaderboard entry keyed on the model.
func (s *Store) PutModelSummary(ctx context.Context, record storage.ModelSummaryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("summary id is required")
	}
	if strings.TrimSpace(record.Model) == "" {
		return fmt.Errorf("model is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO model_summaries (
	id, model, games, played, quality, clemscore, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(model) DO UPDATE SET
	games = excluded.games,
	played = excluded.played,
	quality = excluded.quality,
	clemscore = excluded.clemscore,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Model,
		record.Games,
		record.Played,
		record.Quality,
		record.ClemScore,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put model summary: %w", err)
	}
	return nil
}

// ListGameResults returns per-game aggregates, optionally filtered by game,
// ordered by game then model.
func (s *Store) ListGameResults(ctx context.Context, game string) ([]storage.GameResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT id, model, game, episodes, aborted, played, quality, created_at, updated_at
FROM game_results
`
	var args []any
	if strings.TrimSpace(game) != "" {
		query += "WHERE game = ?\n"
		args = append(args, game)
	}
	query += "ORDER BY game, model"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	defer rows.Close()

	var results []storage.GameResultRecord
	for rows.Next() {
		var (
			rec       storage.GameResultRecord
			quality   sql.NullFloat64
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Model,
			&rec.Game,
			&rec.Episodes,
			&rec.Aborted,
			&rec.Played,
			&quality,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan game result: %w", err)
		}
		if quality.Valid {
			value := quality.Float64
			rec.Quality = &value
		}
		rec.CreatedAt = fromMillis(createdAt)
		rec.UpdatedAt = fromMillis(updatedAt)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game results: %w", err)
	}
	return results, nil
}

// ListGames returns the distinct games with stored results.
func (s *Store) ListGames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT game FROM game_results ORDER BY game`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []string
	for rows.Next() {
		var game string
		if err := rows.Scan(&game); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// GetModelSummary fetches one model's leaderboard entry.
func (s *Store) GetModelSummary(ctx context.Context, model string) (storage.ModelSummaryRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ModelSummaryRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ModelSummaryRecord{}, fmt.Errorf("storage is not configured")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return storage.ModelSummaryRecord{}, fmt.Errorf("model is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, model, games, played, quality, clemscore, created_at, updated_at
FROM model_summaries
WHERE model = ?
`, model)

	rec, err := scanModelSummary(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ModelSummaryRecord{}, storage.ErrNotFound
		}
		return storage.ModelSummaryRecord{}, fmt.Errorf("get model summary: %w", err)
	}
	return rec, nil
}

// ListModelSummaries returns the leaderboard ordered by clemscore.
func (s *Store) ListModelSummaries(ctx context.Context) ([]storage.ModelSummaryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, model, games, played, quality, clemscore, created_at, updated_at
FROM model_summaries
ORDER BY clemscore DESC, model
`)
	if err != nil {
		return nil, fmt.Errorf("list model summaries: %w", err)
	}
	defer rows.Close()

	var summaries []storage.ModelSummaryRecord
	for rows.Next() {
		rec, err := scanModelSummary(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan model summary: %w", err)
		}
		summaries = append(summaries, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model summaries: %w", err)
	}
	return summaries, nil
}

func scanModelSummary(scan func(dest ...any) error) (storage.ModelSummaryRecord, error) {
	var (
		rec       storage.ModelSummaryRecord
		createdAt int64
		updatedAt int64
	)
	if err := scan(
		&rec.ID,
		&rec.Model,
		&rec.Games,
		&rec.Played,
		&rec.Quality,
		&rec.ClemScore,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.ModelSummaryRecord{}, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}
