package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/kibbyd/lifequest/internal/logging"
	"github.com/kibbyd/lifequest/internal/profile"
	"github.com/kibbyd/lifequest/internal/replay"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to lifequest.db")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json")
		os.Exit(2)
	}

	if err := run(*dbPath, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, outPath string) error {
	store, err := profile.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	db := store.DB()

	// Initial profile: the single version with no parent.
	var initVersionID string
	err = db.QueryRow(
		`SELECT version_id FROM profile_versions WHERE parent_id IS NULL ORDER BY created_at ASC LIMIT 1`,
	).Scan(&initVersionID)
	if err != nil {
		return fmt.Errorf("find initial profile: %w", err)
	}
	start, err := store.Version(initVersionID)
	if err != nil {
		return fmt.Errorf("get initial profile: %w", err)
	}

	days := make(map[string]*replay.FixtureDay)
	day := func(date string) *replay.FixtureDay {
		if d, ok := days[date]; ok {
			return d
		}
		d := &replay.FixtureDay{Date: date}
		days[date] = d
		return d
	}

	grants, ticks, err := collectGrants(db, day)
	if err != nil {
		return err
	}
	if err := collectTickLoads(db, day); err != nil {
		return err
	}
	if grants == 0 && ticks == 0 {
		return fmt.Errorf("no committed grant or tick transitions found")
	}

	fixture := buildFixture(start.Profile, days, grants, ticks)
	return writeFixture(fixture, outPath)
}

// collectGrants turns committed grant transitions back into fixture grants.
func collectGrants(db *sql.DB, day func(string) *replay.FixtureDay) (int, int, error) {
	rows, err := db.Query(
		`SELECT signals_json FROM provenance_log
		 WHERE trigger_type IN ('grant', 'tick') AND decision = 'commit' AND signals_json IS NOT NULL
		 ORDER BY id ASC`,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("query provenance: %w", err)
	}
	defer rows.Close()

	grants, ticks := 0, 0
	for rows.Next() {
		var signals string
		if err := rows.Scan(&signals); err != nil {
			return 0, 0, fmt.Errorf("scan provenance: %w", err)
		}
		var trans logging.TransitionRecord
		if err := json.Unmarshal([]byte(signals), &trans); err != nil || trans.Day == "" {
			continue
		}
		switch trans.Trigger {
		case logging.TriggerGrant:
			if trans.Stat == "" {
				continue
			}
			d := day(trans.Day)
			d.Grants = append(d.Grants, replay.FixtureGrant{Stat: trans.Stat, Amount: trans.Amount})
			grants++
		case logging.TriggerTick:
			// The tick itself is reconstructed from stat_observations;
			// mark the day so a zero-load tick still appears.
			d := day(trans.Day)
			if d.Tick == nil {
				d.Tick = &replay.FixtureTick{}
			}
			ticks++
		}
	}
	return grants, ticks, rows.Err()
}

// collectTickLoads rebuilds each tick day's training load and evidence
// quality from the recorded observations.
func collectTickLoads(db *sql.DB, day func(string) *replay.FixtureDay) error {
	rows, err := db.Query(
		`SELECT day, stat, load, AVG(quality) OVER (PARTITION BY day) FROM stat_observations ORDER BY day, stat`,
	)
	if err != nil {
		return fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var date, stat string
		var load, quality float64
		if err := rows.Scan(&date, &stat, &load, &quality); err != nil {
			return fmt.Errorf("scan observation: %w", err)
		}

		d := day(date)
		if d.Tick == nil {
			d.Tick = &replay.FixtureTick{}
		}
		if load > 0 {
			if d.Tick.TrainingLoad == nil {
				d.Tick.TrainingLoad = make(map[string]float64)
			}
			d.Tick.TrainingLoad[stat] = load
		}
		if len(d.Tick.Tokens) == 0 {
			d.Tick.Tokens = []replay.FixtureToken{{ID: "obs-" + date, Source: "export", Quality: quality}}
		}
	}
	return rows.Err()
}

// #endregion extract

// #region output

func buildFixture(start profile.Profile, days map[string]*replay.FixtureDay, grants, ticks int) *replay.Fixture {
	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	fixture := &replay.Fixture{
		Description: fmt.Sprintf("Real session export: %d grants, %d ticks across %d days", grants, ticks, len(dates)),
		Start:       start,
	}
	for _, date := range dates {
		d := days[date]
		fixture.Days = append(fixture.Days, *d)

		for range d.Grants {
			fixture.Expected = append(fixture.Expected,
				replay.FixtureOutcome{Date: date, Kind: "grant", Action: "commit"})
		}
		if d.Tick != nil {
			fixture.Expected = append(fixture.Expected,
				replay.FixtureOutcome{Date: date, Kind: "tick", Action: "commit"})
		}
	}
	return fixture
}

func writeFixture(fixture *replay.Fixture, outPath string) error {
	if err := replay.SaveFixture(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("Wrote fixture to %s (%d days)\n", outPath, len(fixture.Days))
	return nil
}

// #endregion output
