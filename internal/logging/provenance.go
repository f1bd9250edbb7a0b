// Package logging records transition provenance: one row per profile
// transition attempt, linking the committed version to what triggered it
// and what the pipeline decided.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (version_id, trigger_type, signals_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		entry.TriggerType,
		nullIfEmpty(entry.SignalsJSON),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region list
// ListForVersion returns the provenance entries recorded for one version,
// oldest first.
func ListForVersion(db *sql.DB, versionID string) ([]ProvenanceEntry, error) {
	rows, err := db.Query(
		`SELECT version_id, trigger_type, signals_json, decision, reason, created_at
		 FROM provenance_log WHERE version_id = ? ORDER BY id ASC`, versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list provenance: %w", err)
	}
	defer rows.Close()

	var entries []ProvenanceEntry
	for rows.Next() {
		var entry ProvenanceEntry
		var signals, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&entry.VersionID, &entry.TriggerType, &signals, &entry.Decision, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan provenance: %w", err)
		}
		entry.SignalsJSON = signals.String
		entry.Reason = reason.String
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// #endregion list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
