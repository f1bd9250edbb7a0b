package activity

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/profile"
	_ "modernc.org/sqlite"
)

func memJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j, err := NewJournal(db)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	return j
}

func TestAddAndRecent(t *testing.T) {
	j := memJournal(t)

	entries := []Entry{
		{Text: "morning run", Stat: "pwr", Tier: "minor", Amount: 10, Day: "2025-03-01"},
		{Text: "studied calculus", Stat: "cog", Tier: "standard", Amount: 50, Day: "2025-03-01"},
		{Text: "evening swim", Stat: "pwr", Tier: "minor", Amount: 10, Day: "2025-03-02"},
	}
	for _, e := range entries {
		if err := j.Add(e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	recent, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Text != "evening swim" {
		t.Fatalf("expected newest first, got %+v", recent[0])
	}
}

func TestAddSkipsSameDayDuplicate(t *testing.T) {
	j := memJournal(t)

	entry := Entry{Text: "Morning Run", Stat: "pwr", Tier: "minor", Amount: 10, Day: "2025-03-01"}
	if err := j.Add(entry); err != nil {
		t.Fatalf("Add: %v", err)
	}
	entry.Text = "morning run"
	if err := j.Add(entry); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}

	day, err := j.ForDay("2025-03-01")
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(day) != 1 {
		t.Fatalf("same-day duplicate should be skipped, got %d entries", len(day))
	}

	// Same text on a different day is a new entry.
	entry.Day = "2025-03-02"
	if err := j.Add(entry); err != nil {
		t.Fatalf("Add next day: %v", err)
	}
	next, _ := j.ForDay("2025-03-02")
	if len(next) != 1 {
		t.Fatalf("different day should journal again, got %d entries", len(next))
	}
}

func TestForDayOrder(t *testing.T) {
	j := memJournal(t)

	j.Add(Entry{Text: "first", Stat: "pwr", Tier: "minor", Amount: 10, Day: "2025-03-01"})
	j.Add(Entry{Text: "second", Stat: "cog", Tier: "minor", Amount: 10, Day: "2025-03-01"})

	day, err := j.ForDay("2025-03-01")
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(day) != 2 || day[0].Text != "first" || day[1].Text != "second" {
		t.Fatalf("expected insertion order, got %+v", day)
	}
}

func TestRenderSheet(t *testing.T) {
	p := profile.Empty()
	snap := p.Stats[ability.Power]
	snap.Value = 14.5
	p.Stats[ability.Power] = snap

	sheet := RenderSheet(p)
	if !strings.Contains(sheet, "[CHARACTER SHEET]") {
		t.Fatalf("missing header:\n%s", sheet)
	}
	if !strings.Contains(sheet, "Power") || !strings.Contains(sheet, "14.5") {
		t.Fatalf("missing power line:\n%s", sheet)
	}
	if !strings.Contains(sheet, "Perk points 0") {
		t.Fatalf("missing perk points line:\n%s", sheet)
	}
	// Zero score is omitted.
	if strings.Contains(sheet, "Score") {
		t.Fatalf("zero score should be omitted:\n%s", sheet)
	}
}
