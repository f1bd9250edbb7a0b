// Package activity keeps the human-readable side of the engine: a journal
// of recorded activity text with its classification outcome, and the
// rendered character sheet. The journal is observability only; progression
// state lives in the profile.
package activity

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types

// Entry is one journaled activity with how it was classified.
type Entry struct {
	ID        int
	Text      string
	Stat      string
	Tier      string
	Amount    float64
	Day       string // YYYY-MM-DD
	CreatedAt time.Time
}

// #endregion types

// #region journal

// Journal manages the persistent activity journal in SQLite.
type Journal struct {
	db *sql.DB
}

// NewJournal creates the journal table if needed and returns a journal.
func NewJournal(db *sql.DB) (*Journal, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS activity_journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		stat TEXT NOT NULL,
		tier TEXT NOT NULL,
		amount REAL NOT NULL,
		day TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{db: db}, nil
}

// Add journals one activity. Re-logging the same text on the same day is
// skipped (case-insensitive), so a double-submitted entry stays one row.
func (j *Journal) Add(entry Entry) error {
	var count int
	err := j.db.QueryRow(
		`SELECT COUNT(*) FROM activity_journal WHERE day = ? AND LOWER(text) = LOWER(?)`,
		entry.Day, entry.Text,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check duplicate entry: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = j.db.Exec(
		`INSERT INTO activity_journal (text, stat, tier, amount, day, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Text, entry.Stat, entry.Tier, entry.Amount, entry.Day,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns the most recent journal entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, text, stat, tier, amount, day, created_at
		 FROM activity_journal ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ForDay returns the journal entries logged for one day, oldest first.
func (j *Journal) ForDay(day string) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, text, stat, tier, amount, day, created_at
		 FROM activity_journal WHERE day = ? ORDER BY id ASC`, day,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal for day: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Text, &e.Stat, &e.Tier, &e.Amount, &e.Day, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion journal
