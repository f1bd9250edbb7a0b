package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kibbyd/lifequest/internal/activity"
	"github.com/kibbyd/lifequest/internal/classifier"
	"github.com/kibbyd/lifequest/internal/config"
	"github.com/kibbyd/lifequest/internal/evidence"
	"github.com/kibbyd/lifequest/internal/orchestrator"
	"github.com/kibbyd/lifequest/internal/perks"
	"github.com/kibbyd/lifequest/internal/profile"
	"github.com/kibbyd/lifequest/internal/score"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := profile.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	// Ensure an initial profile exists
	if _, err := store.Current(); err != nil {
		log.Println("No active profile found, creating initial profile...")
		if _, err := store.CreateInitial(profile.Empty()); err != nil {
			log.Fatalf("failed to create initial profile: %v", err)
		}
	}

	var remote orchestrator.RemoteClassifier
	if cfg.ClassifierURL != "" {
		remote = classifier.NewClient(cfg.ClassifierURL)
	}

	catalog := perks.DefaultCatalog()
	if cfg.PerkCatalogPath != "" {
		catalog, err = perks.LoadCatalog(cfg.PerkCatalogPath)
		if err != nil {
			log.Fatalf("failed to load perk catalog: %v", err)
		}
	}

	orch, err := orchestrator.NewOrchestrator(store, remote, score.NewModel(score.DefaultConfig()), orchestrator.Config{
		QuarterlyDays:   cfg.QuarterlyDays,
		AnnualDays:      cfg.AnnualDays,
		RecalWindowDays: cfg.RecalWindowDays,
	})
	if err != nil {
		log.Fatalf("failed to start orchestrator: %v", err)
	}

	journal, err := activity.NewJournal(store.DB())
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}

	fmt.Println("LifeQuest engine ready.")
	fmt.Printf("  DB: %s | Classifier: %s\n", cfg.DBPath, classifierLabel(cfg.ClassifierURL))
	fmt.Println("Type an activity, or: sheet, perks, assign <id>, perk on|off <id>,")
	fmt.Println("tick [stat=load ...] [injured], recal, versions, rollback <id>, notes, quit")

	repl(orch, store, journal, catalog)
}

func classifierLabel(url string) string {
	if url == "" {
		return "keyword fallback"
	}
	return url
}

// #endregion main

// #region repl
func repl(orch *orchestrator.Orchestrator, store *profile.Store, journal *activity.Journal, catalog []perks.Definition) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		now := time.Now().UTC()
		fields := strings.Fields(line)

		switch fields[0] {
		case "sheet":
			cur, err := store.Current()
			if err != nil {
				log.Printf("error: %v", err)
				continue
			}
			fmt.Print(activity.RenderSheet(cur.Profile))

		case "perks":
			printPerks(store, catalog)

		case "assign":
			if len(fields) != 2 {
				fmt.Println("usage: assign <perk-id>")
				continue
			}
			def, ok := perks.FindDefinition(catalog, fields[1])
			if !ok {
				fmt.Printf("unknown perk %q\n", fields[1])
				continue
			}
			if _, err := orch.AssignPerk(def, now); err != nil {
				log.Printf("error: %v", err)
			}

		case "perk":
			if len(fields) != 3 || (fields[1] != "on" && fields[1] != "off") {
				fmt.Println("usage: perk on|off <perk-id>")
				continue
			}
			if _, err := orch.TogglePerk(fields[2], fields[1] == "on", now); err != nil {
				log.Printf("error: %v", err)
			}

		case "tick":
			records, injured, err := parseTick(fields[1:])
			if err != nil {
				fmt.Println(err)
				continue
			}
			outcome, err := orch.DailyTick(records, injured, now)
			if err != nil {
				log.Printf("error: %v", err)
				continue
			}
			fmt.Printf("ticked: ability %d/100", outcome.Ability.Level)
			if outcome.Score != nil {
				fmt.Printf(", score %.1f (level %d)", outcome.Score.Score, outcome.Score.Level)
			}
			fmt.Println()

		case "recal":
			outcome, err := orch.RunRecalibration(now)
			if err != nil {
				log.Printf("error: %v", err)
				continue
			}
			for _, note := range outcome.Notes {
				fmt.Printf("  %s\n", note)
			}
			if len(outcome.Notes) == 0 {
				fmt.Println("  no parameter changes")
			}

		case "versions":
			printVersions(store)

		case "rollback":
			if len(fields) != 2 {
				fmt.Println("usage: rollback <version-id>")
				continue
			}
			if err := orch.Rollback(fields[1]); err != nil {
				log.Printf("error: %v", err)
			}

		case "notes":
			printNotes(orch)

		default:
			recordActivity(orch, journal, line, now)
		}
	}
}

// #endregion repl

// #region activity
func recordActivity(orch *orchestrator.Orchestrator, journal *activity.Journal, text string, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	outcome, err := orch.ProcessActivity(ctx, text, now)
	cancel()
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := journal.Add(activity.Entry{
		Text:   text,
		Stat:   string(outcome.Classification.Stat),
		Tier:   string(outcome.Classification.Tier),
		Amount: outcome.Amount,
		Day:    now.Format("2006-01-02"),
	}); err != nil {
		log.Printf("journal error: %v", err)
	}

	fmt.Printf("+%.0f %s (%s)", outcome.Amount, outcome.Classification.Stat, outcome.Classification.Tier)
	if outcome.LevelsGained > 0 {
		fmt.Printf(" — legacy level up x%d!", outcome.LevelsGained)
	}
	for _, m := range outcome.Milestones {
		fmt.Printf(" — milestone: character level %d!", m)
	}
	fmt.Println()
}

// parseTick reads "stat=load" pairs and an optional "injured" flag into
// capture records for the daily tick.
func parseTick(args []string) ([]evidence.CaptureRecord, bool, error) {
	var records []evidence.CaptureRecord
	injured := false

	for i, arg := range args {
		if arg == "injured" {
			injured = true
			continue
		}
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			return nil, false, fmt.Errorf("usage: tick [stat=load ...] [injured], got %q", arg)
		}
		load, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, false, fmt.Errorf("bad load %q: %v", parts[1], err)
		}
		records = append(records, evidence.CaptureRecord{
			ID:      fmt.Sprintf("manual-%d", i),
			Source:  "manual",
			Stat:    parts[0],
			Load:    load,
			Quality: 0.7,
		})
	}
	return records, injured, nil
}

// #endregion activity

// #region printing
func printPerks(store *profile.Store, catalog []perks.Definition) {
	cur, err := store.Current()
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	owned := make(map[string]perks.PerkState, len(cur.Profile.Perks))
	for _, entry := range cur.Profile.Perks {
		owned[entry.Perk.ID] = entry
	}

	fmt.Printf("Perk points: %d\n", cur.Profile.Wallet.PerkPoints)
	for _, def := range catalog {
		status := "available"
		if entry, ok := owned[def.ID]; ok && entry.Owned {
			status = "owned"
			if entry.Active {
				status = "active"
			}
		}
		fmt.Printf("  %-14s %-16s %-9s gates: %s\n", def.ID, def.Name, status, gateString(def))
	}
}

func gateString(def perks.Definition) string {
	if len(def.Gates) == 0 {
		return "none"
	}
	var parts []string
	for stat, threshold := range def.Gates {
		parts = append(parts, fmt.Sprintf("%s>=%.0f", stat, threshold))
	}
	return strings.Join(parts, ", ")
}

func printVersions(store *profile.Store) {
	records, err := store.ListVersions(10)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	for _, rec := range records {
		fmt.Printf("  %s  level %d  %s\n",
			rec.VersionID, rec.Profile.Ability().Level,
			rec.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
}

func printNotes(orch *orchestrator.Orchestrator) {
	recent, err := orch.Notes().Recent(10)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if len(recent) == 0 {
		fmt.Println("  no recalibration notes yet")
		return
	}
	for _, note := range recent {
		fmt.Printf("  %s\n", note.Text)
	}
}

// #endregion printing
