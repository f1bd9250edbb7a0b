package currency

import (
	"fmt"
	"sort"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/legacy"
	"github.com/kibbyd/lifequest/internal/perks"
)

// #region requirements
const (
	// DefaultQuarterlyDays is the unique active days required for the
	// quarterly perk point.
	DefaultQuarterlyDays = 65
	// DefaultAnnualDays is the unique active days required for the annual
	// perk point.
	DefaultAnnualDays = 250
)

// DefaultLevelMilestones are the character levels that award a perk point.
var DefaultLevelMilestones = []int{10, 25, 50, 75, 100}

// #endregion requirements

// #region quarterly

// RecomputeQuarterly awards the quarterly perk point when the calendar
// quarter containing opts.Now holds at least the required unique active
// days. The quarterly:<year>-Q<n> ledger id makes the call idempotent: a
// second recompute in the same quarter never double-awards.
func RecomputeQuarterly(log ActivityLog, wallet Wallet, opts AwardOptions) AwardResult {
	log = NormalizeActivityLog(log)
	wallet = NormalizeWallet(wallet, opts.Now)

	ref := timeParts(opts.Now)
	quarter := quarterOf(ref.Month)
	id := "quarterly:" + quarterID(ref.Year, quarter)

	required := opts.RequiredDays
	if required <= 0 {
		required = DefaultQuarterlyDays
	}

	days := uniqueDays(log.Entries, func(p dateParts) bool {
		return p.Year == ref.Year && quarterOf(p.Month) == quarter
	})

	if wallet.Has(id) || days < required {
		return AwardResult{Wallet: wallet, Awarded: false, UniqueDays: days}
	}

	wallet = appendEntry(wallet, LedgerEntry{
		ID:         id,
		Reason:     ReasonQuarterly,
		Points:     1,
		OccurredAt: opts.Now.UTC(),
		Metadata:   map[string]any{"quarter": quarterID(ref.Year, quarter), "unique_days": days},
	})
	return AwardResult{Wallet: wallet, Awarded: true, UniqueDays: days}
}

// #endregion quarterly

// #region annual

// RecomputeAnnual is the quarterly logic keyed by calendar year, ledger id
// annual:<year>.
func RecomputeAnnual(log ActivityLog, wallet Wallet, opts AwardOptions) AwardResult {
	log = NormalizeActivityLog(log)
	wallet = NormalizeWallet(wallet, opts.Now)

	ref := timeParts(opts.Now)
	id := fmt.Sprintf("annual:%04d", ref.Year)

	required := opts.RequiredDays
	if required <= 0 {
		required = DefaultAnnualDays
	}

	days := uniqueDays(log.Entries, func(p dateParts) bool {
		return p.Year == ref.Year
	})

	if wallet.Has(id) || days < required {
		return AwardResult{Wallet: wallet, Awarded: false, UniqueDays: days}
	}

	wallet = appendEntry(wallet, LedgerEntry{
		ID:         id,
		Reason:     ReasonAnnual,
		Points:     1,
		OccurredAt: opts.Now.UTC(),
		Metadata:   map[string]any{"year": ref.Year, "unique_days": days},
	})
	return AwardResult{Wallet: wallet, Awarded: true, UniqueDays: days}
}

// #endregion annual

// #region milestones

// AwardLevelMilestones grants one perk point per newly crossed character
// level milestone, with ledger id level:<n> guarding each against replays.
// The milestone watermark only moves forward.
func AwardLevelMilestones(progress legacy.CharacterProgress, wallet Wallet, now time.Time, milestones []int) (legacy.CharacterProgress, MilestoneResult) {
	progress = legacy.NormalizeProgress(progress)
	wallet = NormalizeWallet(wallet, now)

	if milestones == nil {
		milestones = DefaultLevelMilestones
	}
	sorted := make([]int, len(milestones))
	copy(sorted, milestones)
	sort.Ints(sorted)

	var triggered []int
	highest := progress.LastMilestoneLevel

	for _, raw := range sorted {
		milestone := raw
		if milestone < 1 {
			milestone = 1
		}
		if milestone <= progress.LastMilestoneLevel {
			continue
		}
		if milestone > progress.CharacterLevel {
			break
		}
		id := fmt.Sprintf("level:%d", milestone)
		if wallet.Has(id) {
			if milestone > highest {
				highest = milestone
			}
			continue
		}
		wallet = appendEntry(wallet, LedgerEntry{
			ID:         id,
			Reason:     ReasonLevel,
			Points:     1,
			OccurredAt: now.UTC(),
			Metadata:   map[string]any{"milestone": milestone},
		})
		triggered = append(triggered, milestone)
		if milestone > highest {
			highest = milestone
		}
	}

	progress.LastMilestoneLevel = highest
	return progress, MilestoneResult{Wallet: wallet, Triggered: triggered, LastMilestoneLevel: highest}
}

// #endregion milestones

// #region perk-activation

// EvaluatePerkActivation reconciles every perk's active flag against the
// current stats and normalizes the wallet, which backfills the one-time
// migration credit for pre-ledger balances.
func EvaluatePerkActivation(list []perks.PerkState, stats map[ability.StatKey]float64, wallet Wallet, now time.Time) ([]perks.PerkState, Wallet) {
	return perks.Reconcile(list, stats), NormalizeWallet(wallet, now)
}

// #endregion perk-activation
