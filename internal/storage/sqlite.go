// Package storage provides SQLite-based persistence for match history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

// DefaultPath is where the CLI keeps match history.
const DefaultPath = "~/.pong/history.db"

// Store manages the SQLite database connection for match history.
type Store struct {
	db *sqlx.DB
}

// MatchRecord is one finished match.
type MatchRecord struct {
	ID         int64  `db:"id"`
	MatchID    string `db:"match_id"`
	Mode       string `db:"mode"`
	Players    int    `db:"players"`
	ScoresText string `db:"scores"` // Comma separated, slot order
	Winner     int    `db:"winner"` // -1 when nobody reached the limit
	EndReason  string `db:"end_reason"`
	DurationMs int64  `db:"duration_ms"`
	Ticks      int    `db:"ticks"`
	StartedMs  int64  `db:"started_ms"`
}

// Scores parses the stored score list.
func (r MatchRecord) Scores() []int {
	if r.ScoresText == "" {
		return nil
	}
	parts := strings.Split(r.ScoresText, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

// Duration returns the match duration.
func (r MatchRecord) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// Started returns the match start time.
func (r MatchRecord) Started() time.Time {
	return time.UnixMilli(r.StartedMs)
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			players INTEGER NOT NULL,
			scores TEXT NOT NULL,
			winner INTEGER NOT NULL DEFAULT -1,
			end_reason TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			started_ms INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_matches_mode ON matches(mode);
		CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_ms DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatchResult records a finished match and returns the row id.
func (s *Store) SaveMatchResult(r multiplayer.MatchResult) (int64, error) {
	scores := make([]string, len(r.Scores))
	for i, sc := range r.Scores {
		scores[i] = strconv.Itoa(sc)
	}
	rec := MatchRecord{
		MatchID:    string(r.MatchID),
		Mode:       r.Mode,
		Players:    r.Players,
		ScoresText: strings.Join(scores, ","),
		Winner:     r.Winner,
		EndReason:  r.Reason.String(),
		DurationMs: r.Duration.Milliseconds(),
		Ticks:      r.Ticks,
		StartedMs:  r.Started.UnixMilli(),
	}
	res, err := s.db.NamedExec(
		`INSERT INTO matches
		 (match_id, mode, players, scores, winner, end_reason, duration_ms, ticks, started_ms)
		 VALUES (:match_id, :mode, :players, :scores, :winner, :end_reason, :duration_ms, :ticks, :started_ms)`,
		rec,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// MatchByID retrieves a match by its match id. It returns nil when absent.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	var rec MatchRecord
	err := s.db.Get(&rec, `SELECT * FROM matches WHERE match_id = ?`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &rec, nil
}

// RecentMatches retrieves the most recent matches, optionally for one mode.
func (s *Store) RecentMatches(mode string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		recs []MatchRecord
		err  error
	)
	if mode == "" {
		err = s.db.Select(&recs, `SELECT * FROM matches ORDER BY started_ms DESC, id DESC LIMIT ?`, limit)
	} else {
		err = s.db.Select(&recs, `SELECT * FROM matches WHERE mode = ? ORDER BY started_ms DESC, id DESC LIMIT ?`, mode, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	return recs, nil
}

// ModeStats contains aggregated statistics for a game mode.
type ModeStats struct {
	Mode          string `db:"mode"`
	Matches       int    `db:"matches"`
	Completed     int    `db:"completed"`
	AvgDurationMs int64  `db:"avg_duration_ms"`
	LastStartedMs int64  `db:"last_started_ms"`
}

// LastPlayed returns the start time of the most recent match.
func (m ModeStats) LastPlayed() time.Time {
	return time.UnixMilli(m.LastStartedMs)
}

// AllModeStats retrieves statistics for every mode that has been played.
func (s *Store) AllModeStats() (map[string]ModeStats, error) {
	var rows []ModeStats
	err := s.db.Select(&rows,
		`SELECT mode,
		        COUNT(*) AS matches,
		        SUM(CASE WHEN winner >= 0 THEN 1 ELSE 0 END) AS completed,
		        CAST(AVG(duration_ms) AS INTEGER) AS avg_duration_ms,
		        MAX(started_ms) AS last_started_ms
		 FROM matches
		 GROUP BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}
	stats := make(map[string]ModeStats, len(rows))
	for _, r := range rows {
		stats[r.Mode] = r
	}
	return stats, nil
}

// ClearMatches deletes the whole history.
func (s *Store) ClearMatches() error {
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}
