// Package notes persists recalibration notes. Notes are advisory output
// from the parameter recalibration, kept for the user to read; nothing in
// the engine ever branches on them.
package notes

// #region imports
import (
	"database/sql"
	"time"
)

// #endregion imports

// #region types

// Note is one persisted recalibration note.
type Note struct {
	VersionID string
	Text      string
	CreatedAt time.Time
}

// #endregion types

// #region store

// Store persists recalibration notes in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates the recal_notes table if needed and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS recal_notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version_id TEXT NOT NULL,
		note TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

// Save stores the notes produced by one recalibration.
func (s *Store) Save(versionID string, texts []string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, text := range texts {
		_, err := s.db.Exec(
			`INSERT INTO recal_notes (version_id, note, created_at) VALUES (?, ?, ?)`,
			versionID, text, now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Recent returns the most recent notes, newest first.
func (s *Store) Recent(limit int) ([]Note, error) {
	rows, err := s.db.Query(
		`SELECT version_id, note, created_at FROM recal_notes ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []Note
	for rows.Next() {
		var n Note
		var createdAt string
		if err := rows.Scan(&n.VersionID, &n.Text, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		found = append(found, n)
	}
	return found, rows.Err()
}

// #endregion store
