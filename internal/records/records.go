// Package records tracks personal records, active-day streaks, and badges
// in SQLite. Its output feeds the legacy score model's PR, consistency, and
// badge components; nothing in the core progression depends on it.
package records

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/score"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS stat_records (
    stat        TEXT PRIMARY KEY,
    best_value  REAL NOT NULL,
    achieved_on TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS streak_state (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    current     INTEGER NOT NULL,
    best        INTEGER NOT NULL,
    last_day    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pr_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    stat        TEXT NOT NULL,
    day         TEXT NOT NULL,
    value       REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS badges (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    awarded_on  TEXT NOT NULL
);
`

// #endregion schema

// prMargin filters float noise: a stat must beat its record by this much to
// count as a new PR.
const prMargin = 0.05

// #region types

// Badge is one awarded badge.
type Badge struct {
	ID        string
	Name      string
	AwardedOn string
}

// DayOutcome reports what one recorded day produced.
type DayOutcome struct {
	PREvents  []score.PREvent
	Streak    int
	NewBadges []string
}

// badgeDef couples a badge with its award condition.
type badgeDef struct {
	id   string
	name string
	test func(outcome DayOutcome, totalPRs int) bool
}

var badgeDefs = []badgeDef{
	{"first-pr", "First Record", func(o DayOutcome, totalPRs int) bool {
		return len(o.PREvents) > 0
	}},
	{"streak-7", "Consistent Week", func(o DayOutcome, totalPRs int) bool {
		return o.Streak >= 7
	}},
	{"streak-30", "Iron Month", func(o DayOutcome, totalPRs int) bool {
		return o.Streak >= 30
	}},
	{"pr-10", "Record Collector", func(o DayOutcome, totalPRs int) bool {
		return totalPRs >= 10
	}},
}

// #endregion types

// #region tracker

// Tracker manages the records tables.
type Tracker struct {
	db *sql.DB
}

// NewTracker creates tables and returns a Tracker.
func NewTracker(db *sql.DB) (*Tracker, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("records schema: %w", err)
	}
	return &Tracker{db: db}, nil
}

// #endregion tracker

// #region record-day

// RecordDay ingests one day's final stat values. active marks a day with
// real training or activity; inactive days break the streak. The first
// sighting of a stat sets its baseline without producing a PR event.
func (t *Tracker) RecordDay(day string, values map[ability.StatKey]float64, active bool) (DayOutcome, error) {
	outcome := DayOutcome{}

	for _, key := range ability.StatKeys {
		value, ok := values[key]
		if !ok {
			continue
		}
		isPR, err := t.updateRecord(key, value, day)
		if err != nil {
			return DayOutcome{}, err
		}
		if isPR {
			outcome.PREvents = append(outcome.PREvents, score.PREvent{Stat: key, Date: day})
		}
	}

	streak, err := t.advanceStreak(day, active)
	if err != nil {
		return DayOutcome{}, err
	}
	outcome.Streak = streak

	newBadges, err := t.awardBadges(outcome, day)
	if err != nil {
		return DayOutcome{}, err
	}
	outcome.NewBadges = newBadges

	return outcome, nil
}

func (t *Tracker) updateRecord(stat ability.StatKey, value float64, day string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var best float64
	err := t.db.QueryRow(`SELECT best_value FROM stat_records WHERE stat = ?`, string(stat)).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = t.db.Exec(
			`INSERT INTO stat_records (stat, best_value, achieved_on, updated_at) VALUES (?, ?, ?, ?)`,
			string(stat), value, day, now,
		)
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("read record for %s: %w", stat, err)
	}

	if value <= best+prMargin {
		return false, nil
	}
	_, err = t.db.Exec(
		`UPDATE stat_records SET best_value = ?, achieved_on = ?, updated_at = ? WHERE stat = ?`,
		value, day, now, string(stat),
	)
	if err != nil {
		return false, fmt.Errorf("update record for %s: %w", stat, err)
	}
	_, err = t.db.Exec(
		`INSERT INTO pr_log (stat, day, value) VALUES (?, ?, ?)`,
		string(stat), day, value,
	)
	if err != nil {
		return false, fmt.Errorf("log pr for %s: %w", stat, err)
	}
	return true, nil
}

// advanceStreak extends the streak on consecutive active days, leaves it
// alone on a repeated day, and resets otherwise.
func (t *Tracker) advanceStreak(day string, active bool) (int, error) {
	var current, best int
	var lastDay string
	err := t.db.QueryRow(`SELECT current, best, last_day FROM streak_state WHERE id = 1`).
		Scan(&current, &best, &lastDay)
	if errors.Is(err, sql.ErrNoRows) {
		current, best, lastDay = 0, 0, ""
	} else if err != nil {
		return 0, fmt.Errorf("read streak: %w", err)
	}

	switch {
	case day == lastDay:
		// Re-recording the same day never changes the streak.
		return current, nil
	case !active:
		current = 0
	case lastDay == previousDay(day):
		current++
	default:
		current = 1
	}
	if current > best {
		best = current
	}

	_, err = t.db.Exec(
		`INSERT INTO streak_state (id, current, best, last_day) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET current = excluded.current, best = excluded.best, last_day = excluded.last_day`,
		current, best, day,
	)
	if err != nil {
		return 0, fmt.Errorf("write streak: %w", err)
	}
	return current, nil
}

func previousDay(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}

func (t *Tracker) awardBadges(outcome DayOutcome, day string) ([]string, error) {
	totalPRs, err := t.totalPRCount()
	if err != nil {
		return nil, err
	}

	var awarded []string
	for _, def := range badgeDefs {
		if !def.test(outcome, totalPRs) {
			continue
		}
		result, err := t.db.Exec(
			`INSERT OR IGNORE INTO badges (id, name, awarded_on) VALUES (?, ?, ?)`,
			def.id, def.name, day,
		)
		if err != nil {
			return nil, fmt.Errorf("award badge %s: %w", def.id, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			awarded = append(awarded, def.name)
		}
	}
	return awarded, nil
}

func (t *Tracker) totalPRCount() (int, error) {
	var count int
	if err := t.db.QueryRow(`SELECT COUNT(*) FROM pr_log`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count prs: %w", err)
	}
	return count, nil
}

// #endregion record-day

// #region read

// Badges returns every awarded badge, oldest first.
func (t *Tracker) Badges() ([]Badge, error) {
	rows, err := t.db.Query(`SELECT id, name, awarded_on FROM badges ORDER BY awarded_on, id`)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.AwardedOn); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// BestValues returns the recorded best value per stat.
func (t *Tracker) BestValues() (map[ability.StatKey]float64, error) {
	rows, err := t.db.Query(`SELECT stat, best_value FROM stat_records`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	best := make(map[ability.StatKey]float64)
	for rows.Next() {
		var stat string
		var value float64
		if err := rows.Scan(&stat, &value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		best[ability.StatKey(stat)] = value
	}
	return best, rows.Err()
}

// #endregion read
