// Package profile persists versioned profile snapshots in SQLite. Every
// committed transition becomes an immutable version row; a single active
// pointer selects the current one, which makes rollback a pointer move
// rather than a destructive update.
package profile

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS profile_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	stats_json    TEXT NOT NULL,
	dynamics_json TEXT NOT NULL,
	legacy_json   TEXT NOT NULL,
	progress_json TEXT NOT NULL,
	wallet_json   TEXT NOT NULL,
	perks_json    TEXT NOT NULL,
	activity_json TEXT NOT NULL,
	legacy_score  REAL NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES profile_versions(version_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	signals_json  TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES profile_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_profile (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES profile_versions(version_id)
);
`

// #endregion schema

// ErrStaleParent is returned by Commit when the record's parent is no longer
// the active version: some other transition won the race, and the caller
// must reload and rebuild its transition.
var ErrStaleParent = errors.New("stale parent version")

// #region store-struct
// Store manages versioned profiles in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already-open database. The caller owns migrations
// and the connection lifetime.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region encode
type encodedProfile struct {
	stats    string
	dynamics string
	legacy   string
	progress string
	wallet   string
	perks    string
	activity string
}

func encodeProfile(p Profile) (encodedProfile, error) {
	var enc encodedProfile
	for _, field := range []struct {
		name string
		v    any
		dst  *string
	}{
		{"stats", p.Stats, &enc.stats},
		{"dynamics", p.Dynamics, &enc.dynamics},
		{"legacy", p.Legacy, &enc.legacy},
		{"progress", p.Progress, &enc.progress},
		{"wallet", p.Wallet, &enc.wallet},
		{"perks", p.Perks, &enc.perks},
		{"activity", p.Activity, &enc.activity},
	} {
		data, err := json.Marshal(field.v)
		if err != nil {
			return encodedProfile{}, fmt.Errorf("marshal %s: %w", field.name, err)
		}
		*field.dst = string(data)
	}
	return enc, nil
}

// decodeProfile tolerates malformed blobs per field: a column that fails to
// unmarshal leaves its zero sub-state for Normalize to repair, matching the
// load-time repair semantics of the engine.
func decodeProfile(enc encodedProfile, legacyScore float64, loadedAt time.Time) Profile {
	var p Profile
	json.Unmarshal([]byte(enc.stats), &p.Stats)
	json.Unmarshal([]byte(enc.dynamics), &p.Dynamics)
	json.Unmarshal([]byte(enc.legacy), &p.Legacy)
	json.Unmarshal([]byte(enc.progress), &p.Progress)
	json.Unmarshal([]byte(enc.wallet), &p.Wallet)
	json.Unmarshal([]byte(enc.perks), &p.Perks)
	json.Unmarshal([]byte(enc.activity), &p.Activity)
	p.LegacyScore = legacyScore
	return Normalize(p, loadedAt)
}

// #endregion encode

// #region create-initial
// CreateInitial creates and activates the first profile version.
func (s *Store) CreateInitial(p Profile) (Record, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	p = Normalize(p, now)

	enc, err := encodeProfile(p)
	if err != nil {
		return Record{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO profile_versions
		 (version_id, parent_id, stats_json, dynamics_json, legacy_json, progress_json,
		  wallet_json, perks_json, activity_json, legacy_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nil, enc.stats, enc.dynamics, enc.legacy, enc.progress,
		enc.wallet, enc.perks, enc.activity, p.LegacyScore, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_profile (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}

	return Record{VersionID: id, Profile: p, CreatedAt: now}, nil
}

// #endregion create-initial

// #region get-current
// Current reads the active profile version.
func (s *Store) Current() (Record, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_profile WHERE id = 1`).Scan(&versionID)
	if err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.Version(versionID)
}

// #endregion get-current

// #region get-version
// Version retrieves a specific profile version by ID. The profile is
// normalized on the way out.
func (s *Store) Version(id string) (Record, error) {
	row := s.db.QueryRow(
		`SELECT version_id, parent_id, stats_json, dynamics_json, legacy_json, progress_json,
		        wallet_json, perks_json, activity_json, legacy_score, created_at
		 FROM profile_versions WHERE version_id = ?`, id,
	)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

func scanRecord(scan func(...any) error) (Record, error) {
	var rec Record
	var parentID sql.NullString
	var enc encodedProfile
	var legacyScore float64
	var createdStr string

	err := scan(&rec.VersionID, &parentID, &enc.stats, &enc.dynamics, &enc.legacy,
		&enc.progress, &enc.wallet, &enc.perks, &enc.activity, &legacyScore, &createdStr)
	if err != nil {
		return Record{}, err
	}

	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.Profile = decodeProfile(enc, legacyScore, rec.CreatedAt)
	return rec, nil
}

// #endregion get-version

// #region commit
// Commit inserts a new version and advances the active pointer atomically.
// The record's ParentID must still be the active version: a mismatch means
// another transition committed first, and the caller gets ErrStaleParent.
// This enforces at most one transition per logical tick.
func (s *Store) Commit(rec Record) error {
	enc, err := encodeProfile(rec.Profile)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var active string
	err = tx.QueryRow(`SELECT version_id FROM active_profile WHERE id = 1`).Scan(&active)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read active: %w", err)
	}
	if rec.ParentID != active {
		return fmt.Errorf("commit %s onto %s: %w", rec.ParentID, active, ErrStaleParent)
	}

	var parentPtr any
	if rec.ParentID != "" {
		parentPtr = rec.ParentID
	}

	_, err = tx.Exec(
		`INSERT INTO profile_versions
		 (version_id, parent_id, stats_json, dynamics_json, legacy_json, progress_json,
		  wallet_json, perks_json, activity_json, legacy_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, parentPtr, enc.stats, enc.dynamics, enc.legacy, enc.progress,
		enc.wallet, enc.perks, enc.activity, rec.Profile.LegacyScore,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE active_profile SET version_id = ? WHERE id = 1`, rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("update active: %w", err)
	}

	return tx.Commit()
}

// NextRecord builds a commit-ready child of parent carrying the given
// profile.
func NextRecord(parent Record, p Profile, now time.Time) Record {
	return Record{
		VersionID: uuid.New().String(),
		ParentID:  parent.VersionID,
		Profile:   p,
		CreatedAt: now.UTC(),
	}
}

// #endregion commit

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM profile_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	_, err = s.db.Exec(`UPDATE active_profile SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent profile versions.
func (s *Store) ListVersions(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, stats_json, dynamics_json, legacy_json, progress_json,
		        wallet_json, perks_json, activity_json, legacy_score, created_at
		 FROM profile_versions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-versions
