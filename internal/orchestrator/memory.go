package orchestrator

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region schema
const observationSchema = `
CREATE TABLE IF NOT EXISTS stat_observations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	stat       TEXT NOT NULL,
	day        TEXT NOT NULL,
	load       REAL NOT NULL,
	delta      REAL NOT NULL,
	quality    REAL NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stat_observations_stat_day
	ON stat_observations(stat, day);
`

// #endregion schema

// #region types

// DailyObservation is one stat's recorded behavior for one day: the training
// load it received, how its value moved, and the average evidence quality.
type DailyObservation struct {
	Stat    ability.StatKey
	Day     string // YYYY-MM-DD
	Load    float64
	Delta   float64
	Quality float64
}

// AggregatedStat is one stat's observations rolled up over a window.
type AggregatedStat struct {
	Stat        ability.StatKey
	AverageLoad float64
	TotalDelta  float64
	AvgQuality  float64
	Days        int
}

// #endregion types

// #region memory

// ObservationMemory accumulates per-stat daily observations so
// recalibration can compare the model's parameters against what actually
// happened.
type ObservationMemory struct {
	db *sql.DB
}

// NewObservationMemory creates the observation table if needed.
func NewObservationMemory(db *sql.DB) (*ObservationMemory, error) {
	if _, err := db.Exec(observationSchema); err != nil {
		return nil, fmt.Errorf("init observation memory: %w", err)
	}
	return &ObservationMemory{db: db}, nil
}

// Record stores one daily observation.
func (m *ObservationMemory) Record(obs DailyObservation) error {
	_, err := m.db.Exec(
		`INSERT INTO stat_observations (stat, day, load, delta, quality, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(obs.Stat), obs.Day, obs.Load, obs.Delta, obs.Quality,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	return nil
}

// AggregateSince rolls up observations on or after the given day, one row
// per stat. Day strings sort lexically, so the cutoff is a string compare.
func (m *ObservationMemory) AggregateSince(since time.Time) ([]AggregatedStat, error) {
	cutoff := since.UTC().Format("2006-01-02")
	rows, err := m.db.Query(
		`SELECT stat, AVG(load), SUM(delta), AVG(quality), COUNT(DISTINCT day)
		 FROM stat_observations WHERE day >= ? GROUP BY stat ORDER BY stat`, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate observations: %w", err)
	}
	defer rows.Close()

	var aggs []AggregatedStat
	for rows.Next() {
		var agg AggregatedStat
		var stat string
		if err := rows.Scan(&stat, &agg.AverageLoad, &agg.TotalDelta, &agg.AvgQuality, &agg.Days); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		agg.Stat = ability.StatKey(stat)
		aggs = append(aggs, agg)
	}
	return aggs, rows.Err()
}

// #endregion memory
