package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/logging"
	"github.com/kibbyd/lifequest/internal/profile"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to lifequest.db")
	last := flag.Int("last", 20, "show N most recent versions")
	version := flag.String("version", "", "show single version detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/lifequest.db [--last N] [--version id] [--json]")
		os.Exit(2)
	}

	store, err := profile.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *version != "" {
		err = runDetailMode(store, *version, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID    string  `json:"version_id"`
	AbilityLevel int     `json:"ability_level"`
	AbilityTotal float64 `json:"ability_total"`
	LegacyLevels int     `json:"legacy_levels"`
	PerkPoints   int     `json:"perk_points"`
	Trigger      string  `json:"trigger,omitempty"`
	Decision     string  `json:"decision,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func runListMode(store *profile.Store, last int, jsonOut bool) error {
	records, err := store.ListVersions(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}

	// Store returns DESC, reverse for chronological order.
	rows := make([]listRow, len(records))
	for i, rec := range records {
		sheet := rec.Profile.Ability()
		row := listRow{
			VersionID:    rec.VersionID,
			AbilityLevel: sheet.Level,
			AbilityTotal: sheet.Total,
			LegacyLevels: rec.Profile.Legacy.TotalLevels,
			PerkPoints:   rec.Profile.Wallet.PerkPoints,
			CreatedAt:    rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if entries, err := logging.ListForVersion(store.DB(), rec.VersionID); err == nil && len(entries) > 0 {
			latest := entries[len(entries)-1]
			row.Trigger = latest.TriggerType
			row.Decision = latest.Decision
		}
		rows[len(records)-1-i] = row
	}

	if jsonOut {
		return printJSON(rows)
	}
	return printListTable(rows)
}

func printListTable(rows []listRow) error {
	fmt.Printf("%-10s  %7s  %7s  %6s  %6s  %-12s  %-8s  %s\n",
		"Version", "Ability", "Total", "Legacy", "Points", "Trigger", "Decision", "Time")
	fmt.Printf("%-10s+-%7s+-%7s+-%6s+-%6s+-%-12s+-%-8s+-%s\n",
		"----------", "-------", "-------", "------", "------", "------------", "--------", "--------------------")

	for _, r := range rows {
		trigger := r.Trigger
		if trigger == "" {
			trigger = "—"
		}
		decision := r.Decision
		if decision == "" {
			decision = "—"
		}
		fmt.Printf("%-10s  %7d  %7.1f  %6d  %6d  %-12s  %-8s  %s\n",
			shortID(r.VersionID), r.AbilityLevel, r.AbilityTotal,
			r.LegacyLevels, r.PerkPoints, trigger, decision, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID    string                    `json:"version_id"`
	ParentID     string                    `json:"parent_id,omitempty"`
	CreatedAt    string                    `json:"created_at"`
	AbilityLevel int                       `json:"ability_level"`
	AbilityTotal float64                   `json:"ability_total"`
	Stats        map[string]float64        `json:"stats"`
	LegacyLevels int                       `json:"legacy_levels"`
	CharLevel    int                       `json:"character_level"`
	PerkPoints   int                       `json:"perk_points"`
	LegacyScore  float64                   `json:"legacy_score,omitempty"`
	ActivePerks  []string                  `json:"active_perks,omitempty"`
	Provenance   []logging.ProvenanceEntry `json:"provenance,omitempty"`
}

func runDetailMode(store *profile.Store, versionID string, jsonOut bool) error {
	rec, err := store.Version(versionID)
	if err != nil {
		return err
	}

	sheet := rec.Profile.Ability()
	stats := make(map[string]float64, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		stats[string(key)] = rec.Profile.Stats[key].Value
	}
	var active []string
	for _, entry := range rec.Profile.Perks {
		if entry.Active {
			active = append(active, entry.Perk.ID)
		}
	}

	provenance, _ := logging.ListForVersion(store.DB(), versionID)

	out := detailOutput{
		VersionID:    rec.VersionID,
		ParentID:     rec.ParentID,
		CreatedAt:    rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		AbilityLevel: sheet.Level,
		AbilityTotal: sheet.Total,
		Stats:        stats,
		LegacyLevels: rec.Profile.Legacy.TotalLevels,
		CharLevel:    rec.Profile.Progress.CharacterLevel,
		PerkPoints:   rec.Profile.Wallet.PerkPoints,
		LegacyScore:  rec.Profile.LegacyScore,
		ActivePerks:  active,
		Provenance:   provenance,
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:    %s\n", out.VersionID)
	fmt.Printf("Parent:     %s\n", out.ParentID)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Ability:    %d / 100 (total %.1f)\n", out.AbilityLevel, out.AbilityTotal)
	fmt.Printf("Legacy:     %d levels | character level %d | %d perk points\n",
		out.LegacyLevels, out.CharLevel, out.PerkPoints)
	if out.LegacyScore > 0 {
		fmt.Printf("Score:      %.1f\n", out.LegacyScore)
	}

	fmt.Printf("\nStats:\n")
	for _, key := range ability.StatKeys {
		fmt.Printf("  %-4s %6.2f\n", key, stats[string(key)])
	}

	if len(active) > 0 {
		fmt.Printf("\nActive perks: %v\n", active)
	}

	if len(provenance) > 0 {
		fmt.Printf("\nProvenance:\n")
		for _, entry := range provenance {
			fmt.Printf("  [%s] %s: %s\n", entry.TriggerType, entry.Decision, entry.Reason)
			if entry.SignalsJSON != "" {
				var trans logging.TransitionRecord
				if err := json.Unmarshal([]byte(entry.SignalsJSON), &trans); err == nil && trans.Trigger != "" {
					printTransition(trans)
				}
			}
		}
	}
	return nil
}

func printTransition(trans logging.TransitionRecord) {
	if trans.Stat != "" {
		fmt.Printf("    grant: %+.0f %s on %s\n", trans.Amount, trans.Stat, trans.Day)
	}
	if trans.Perk != "" {
		fmt.Printf("    perk:  %s\n", trans.Perk)
	}
	if trans.LevelsGained > 0 {
		fmt.Printf("    levels gained: %d\n", trans.LevelsGained)
	}
	if len(trans.Milestones) > 0 {
		fmt.Printf("    milestones: %v\n", trans.Milestones)
	}
	if len(trans.RecalNotes) > 0 {
		for _, note := range trans.RecalNotes {
			fmt.Printf("    %s\n", note)
		}
	}
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
