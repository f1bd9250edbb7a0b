// Package currency implements the perk-point wallet: an append-only,
// id-deduplicated ledger whose deterministic ids make every periodic award
// idempotent. Replayed or duplicated award calls are self-correcting; no
// external locking is involved.
package currency

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
)

const migrationIDPrefix = "migration:legacy-credit:"

// #region constructors

// EmptyWallet returns a zero-balance wallet with an empty ledger.
func EmptyWallet() Wallet {
	return Wallet{Ledger: []LedgerEntry{}, index: map[string]bool{}}
}

// #endregion constructors

// #region normalize

// NormalizeWallet repairs a persisted wallet: entries with blank ids or zero
// points drop, duplicate ids keep their first occurrence, unknown reasons
// fall back to manual, and the balance is recomputed as the ledger sum.
//
// A positive stored balance that the ledger cannot account for is treated as
// a pre-ledger legacy credit: a one-time migration:legacy-credit:<points>
// entry backfills its provenance (stamped with now) so later idempotency
// checks have a baseline. The balance itself does not change.
func NormalizeWallet(w Wallet, now time.Time) Wallet {
	ledger := make([]LedgerEntry, 0, len(w.Ledger))
	index := make(map[string]bool, len(w.Ledger))
	sum := 0
	hasMigration := false

	for _, entry := range w.Ledger {
		id := strings.TrimSpace(entry.ID)
		if id == "" || entry.Points == 0 || index[id] {
			continue
		}
		if !knownReasons[entry.Reason] {
			entry.Reason = ReasonManual
		}
		entry.ID = id
		ledger = append(ledger, entry)
		index[id] = true
		sum += entry.Points
		if strings.HasPrefix(id, migrationIDPrefix) {
			hasMigration = true
		}
	}

	if credit := w.PerkPoints - sum; credit > 0 && !hasMigration {
		entry := LedgerEntry{
			ID:         fmt.Sprintf("%s%d", migrationIDPrefix, credit),
			Reason:     ReasonMigration,
			Points:     credit,
			OccurredAt: now.UTC(),
		}
		ledger = append(ledger, entry)
		index[entry.ID] = true
		sum += credit
	}

	return Wallet{PerkPoints: sum, Ledger: ledger, index: index}
}

// #endregion normalize

// #region append

// appendEntry adds an entry unless its id already exists, recomputing the
// balance. The input wallet's ledger slice is never mutated.
func appendEntry(w Wallet, entry LedgerEntry) Wallet {
	entry.ID = strings.TrimSpace(entry.ID)
	if entry.ID == "" || entry.Points == 0 || w.Has(entry.ID) {
		return w
	}

	ledger := make([]LedgerEntry, len(w.Ledger), len(w.Ledger)+1)
	copy(ledger, w.Ledger)
	ledger = append(ledger, entry)

	index := make(map[string]bool, len(ledger))
	for _, e := range ledger {
		index[e.ID] = true
	}

	return Wallet{PerkPoints: w.PerkPoints + entry.Points, Ledger: ledger, index: index}
}

// SpendPerkPoint records spending one point on a perk. The deterministic
// spend:<perkID> id makes re-spending on the same perk a no-op, matching the
// assign-is-idempotent rule in the gating state machine.
func SpendPerkPoint(w Wallet, perkID string, now time.Time) (Wallet, bool) {
	id := "spend:" + perkID
	if w.Has(id) {
		return w, true
	}
	if w.PerkPoints <= 0 {
		return w, false
	}
	return appendEntry(w, LedgerEntry{
		ID:         id,
		Reason:     ReasonSpend,
		Points:     -1,
		OccurredAt: now.UTC(),
	}), true
}

// #endregion append

// #region activity-log

// EmptyActivityLog returns a log with no recorded days.
func EmptyActivityLog() ActivityLog {
	return ActivityLog{Entries: []ActivityLogEntry{}}
}

// NormalizeActivityLog drops entries whose dates cannot be parsed and strips
// unknown stat tags and non-finite amounts from the rest.
func NormalizeActivityLog(log ActivityLog) ActivityLog {
	entries := make([]ActivityLogEntry, 0, len(log.Entries))
	for _, entry := range log.Entries {
		parts, ok := parseDateParts(entry.Date)
		if !ok {
			continue
		}
		sanitized := ActivityLogEntry{Date: parts.ISO}
		if entry.Stat != nil && ability.IsStatKey(string(*entry.Stat)) {
			stat := *entry.Stat
			sanitized.Stat = &stat
		}
		if entry.Amount != nil && !math.IsNaN(*entry.Amount) && !math.IsInf(*entry.Amount, 0) {
			amount := *entry.Amount
			sanitized.Amount = &amount
		}
		entries = append(entries, sanitized)
	}
	return ActivityLog{Entries: entries}
}

// #endregion activity-log
