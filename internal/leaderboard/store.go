// Package leaderboard persists cross-session win/loss/tie/streak totals per
// display name. The store is optional: if the database cannot be opened the
// server runs without it and every operation is a no-op.
package leaderboard

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Outcome is one player's result of a finished round.
type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
	Tie  Outcome = "tie"
)

// Entry is one row of the leaderboard.
type Entry struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Ties   int    `json:"ties"`
	Streak int    `json:"streak"`
}

const maxNameLen = 64

const schema = `
CREATE TABLE IF NOT EXISTS players (
	name TEXT PRIMARY KEY,
	wins INTEGER NOT NULL DEFAULT 0,
	losses INTEGER NOT NULL DEFAULT 0,
	ties INTEGER NOT NULL DEFAULT 0,
	streak INTEGER NOT NULL DEFAULT 0
)`

// Store is the SQLite-backed ranking store. A nil *Store is valid and
// no-ops every method.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the leaderboard database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("leaderboard path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open leaderboard db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping leaderboard db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create leaderboard schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record upserts the entry for name, bumping the matching counter. A win
// extends the streak; anything else resets it.
func (s *Store) Record(name string, result Outcome) error {
	if s == nil || s.db == nil {
		return nil
	}
	name = cleanName(name)
	if name == "" {
		return nil
	}
	var wins, losses, ties int
	switch result {
	case Win:
		wins = 1
	case Loss:
		losses = 1
	case Tie:
		ties = 1
	default:
		return fmt.Errorf("unknown outcome %q", result)
	}
	_, err := s.db.Exec(`
		INSERT INTO players (name, wins, losses, ties, streak)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			ties = ties + excluded.ties,
			streak = CASE WHEN excluded.wins = 1 THEN players.streak + 1 ELSE 0 END`,
		name, wins, losses, ties, wins)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// Top returns up to n entries ordered by wins, then current streak.
func (s *Store) Top(n int) []Entry {
	if s == nil || s.db == nil || n <= 0 {
		return []Entry{}
	}
	rows, err := s.db.Query(`
		SELECT name, wins, losses, ties, streak
		FROM players
		ORDER BY wins DESC, streak DESC
		LIMIT ?`, n)
	if err != nil {
		return []Entry{}
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Wins, &e.Losses, &e.Ties, &e.Streak); err != nil {
			return out
		}
		out = append(out, e)
	}
	return out
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return name
}
