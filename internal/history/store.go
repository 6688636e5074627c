package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Result is one won game. Only finished games are recorded; live session
// state is never persisted.
type Result struct {
	GameID    string `json:"gameId"`
	Mode      string `json:"mode"`
	Date      string `json:"date,omitempty"`
	Max       int    `json:"max"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// LBRow is one leaderboard line for a daily date.
type LBRow struct {
	GameID    string `json:"gameId"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Summary aggregates every recorded result.
type Summary struct {
	Games        int     `json:"games"`
	BestAttempts int     `json:"bestAttempts"`
	AvgAttempts  float64 `json:"avgAttempts"`
}

// Store records and queries game results.
type Store struct{ db *sql.DB }

// Open opens the SQLite database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Insert records a result. Re-inserting the same GameID is ignored.
func (s *Store) Insert(ctx context.Context, r Result) error {
	if r.GameID == "" {
		return errors.New("result requires a game id")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO results
            (game_id, mode, date, max_value, attempts, elapsed_ms)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.GameID, r.Mode, r.Date, r.Max, r.Attempts, r.ElapsedMs,
	)
	return err
}

// Leaderboard returns the best daily results for date, ordered by
// attempts, then elapsed time, then insertion time. limit <= 0 means 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT game_id, attempts, elapsed_ms
        FROM results
        WHERE mode='daily' AND date=?
        ORDER BY attempts ASC, elapsed_ms ASC, created_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.GameID, &r.Attempts, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates all recorded results.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var (
		sum  Summary
		best sql.NullInt64
		avg  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), MIN(attempts), AVG(attempts) FROM results`,
	).Scan(&sum.Games, &best, &avg)
	if err != nil {
		return Summary{}, err
	}
	sum.BestAttempts = int(best.Int64)
	sum.AvgAttempts = avg.Float64
	return sum, nil
}
