package currency

import (
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region reasons
// Reason tags why a ledger entry granted (or spent) perk points.
type Reason string

const (
	ReasonLevel     Reason = "level"
	ReasonQuarterly Reason = "quarterly"
	ReasonAnnual    Reason = "annual"
	ReasonMigration Reason = "migration"
	ReasonSpend     Reason = "spend"
	ReasonManual    Reason = "manual"
)

var knownReasons = map[Reason]bool{
	ReasonLevel:     true,
	ReasonQuarterly: true,
	ReasonAnnual:    true,
	ReasonMigration: true,
	ReasonSpend:     true,
	ReasonManual:    true,
}

// #endregion reasons

// #region ledger
// LedgerEntry is one append-only currency movement. IDs are deterministic
// per award type (quarterly:<year>-Q<n>, annual:<year>, level:<n>,
// migration:legacy-credit:<points>, spend:<perk>), which makes every award
// idempotent without external locking.
type LedgerEntry struct {
	ID         string         `json:"id"`
	Reason     Reason         `json:"reason"`
	Points     int            `json:"points"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Wallet is the perk currency balance plus its idempotency log. The balance
// always equals the ledger point sum after normalization; the unexported
// index gives O(1) already-awarded checks.
type Wallet struct {
	PerkPoints int           `json:"perk_points"`
	Ledger     []LedgerEntry `json:"ledger"`

	index map[string]bool
}

// Has reports whether an entry with the given id already exists.
func (w Wallet) Has(id string) bool {
	if w.index != nil {
		return w.index[id]
	}
	for _, entry := range w.Ledger {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// #endregion ledger

// #region activity
// ActivityLogEntry is one recorded active day. Stat and Amount are optional
// annotations; only Date matters for periodic awards.
type ActivityLogEntry struct {
	Date   string           `json:"date"`
	Stat   *ability.StatKey `json:"stat,omitempty"`
	Amount *float64         `json:"amount,omitempty"`
}

// ActivityLog is the raw record of active days.
type ActivityLog struct {
	Entries []ActivityLogEntry `json:"entries"`
}

// #endregion activity

// #region results
// AwardOptions parameterizes a periodic award recompute. Now is the
// reference instant (callers supply it; the engine never reads the clock);
// RequiredDays <= 0 selects the default for the period.
type AwardOptions struct {
	Now          time.Time
	RequiredDays int
}

// AwardResult reports one recompute attempt. Awarded is false both when the
// day count falls short and when the period was already awarded.
type AwardResult struct {
	Wallet     Wallet
	Awarded    bool
	UniqueDays int
}

// MilestoneResult reports a level-milestone sweep.
type MilestoneResult struct {
	Wallet             Wallet
	Triggered          []int
	LastMilestoneLevel int
}

// #endregion results
