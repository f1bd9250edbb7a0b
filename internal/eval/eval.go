// Package eval runs lightweight post-commit validation on profile
// transitions: the structural invariants every committed version must hold,
// checked as metrics so a violation pinpoints the broken sub-state.
package eval

import (
	"fmt"
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/legacy"
	"github.com/kibbyd/lifequest/internal/perks"
	"github.com/kibbyd/lifequest/internal/profile"
)

// #region run

// Run validates a profile against the engine invariants. parent, when
// non-nil, additionally checks cross-version monotonicity (lifetime earnings
// never shrink). Returns pass/fail with per-check metrics.
func Run(next profile.Profile, parent *profile.Profile) Result {
	var metrics []Metric
	passed := true
	var failReasons []string

	check := func(name string, value float64, pass bool, format string, args ...any) {
		metrics = append(metrics, Metric{Name: name, Value: value, Pass: pass})
		if !pass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf(format, args...))
		}
	}

	// 1. Stat bounds: every stat value in [1, 20], confidence in [0, 1].
	statsOK := true
	for _, key := range ability.StatKeys {
		snap := next.Stats[key]
		if !finite(snap.Value) || snap.Value < ability.MinStat || snap.Value > ability.MaxStat {
			statsOK = false
		}
		if !finite(snap.Confidence) || snap.Confidence < 0 || snap.Confidence > 1 {
			statsOK = false
		}
	}
	check("stat_bounds", boolMetric(statsOK), statsOK, "stat out of bounds: %+v", next.Stats)

	// 2. Ability consistency: the derived composite must agree with the
	// stats it is computed from.
	sheet := next.Ability()
	totalOK := sheet.Total >= ability.MinTotal && sheet.Total <= ability.MaxTotal
	check("ability_total", sheet.Total, totalOK, "ability total %.2f out of [6, 120]", sheet.Total)
	levelOK := sheet.Level >= 0 && sheet.Level <= 100
	check("ability_level", float64(sheet.Level), levelOK, "ability level %d out of [0, 100]", sheet.Level)

	// 3. Legacy ledger: counter range, derived totals, perk point formula.
	legacyOK := true
	totalLevels := 0
	totalEarned := 0
	for _, key := range ability.StatKeys {
		entry := next.Legacy.Stats[key]
		if entry.Counter < 0 || entry.Counter >= legacy.RolloverThreshold {
			legacyOK = false
		}
		if entry.Level < 0 || entry.TotalEarned < 0 {
			legacyOK = false
		}
		totalLevels += entry.Level
		totalEarned += entry.TotalEarned
	}
	if next.Legacy.TotalLevels != totalLevels || next.Legacy.TotalEarned != totalEarned {
		legacyOK = false
	}
	if next.Legacy.PerkPoints != totalLevels/legacy.LevelsPerPerkPoint {
		legacyOK = false
	}
	check("legacy_consistency", float64(totalLevels), legacyOK, "legacy totals inconsistent: %+v", next.Legacy)

	if parent != nil {
		monotonic := true
		for _, key := range ability.StatKeys {
			if next.Legacy.Stats[key].TotalEarned < parent.Legacy.Stats[key].TotalEarned {
				monotonic = false
			}
			if next.Legacy.Stats[key].Level < parent.Legacy.Stats[key].Level {
				monotonic = false
			}
		}
		check("legacy_monotonic", boolMetric(monotonic), monotonic,
			"legacy earnings shrank from parent")
	}

	// 4. Wallet: unique ledger ids, balance equal to the point sum.
	seen := make(map[string]bool, len(next.Wallet.Ledger))
	unique := true
	sum := 0
	for _, entry := range next.Wallet.Ledger {
		if seen[entry.ID] {
			unique = false
		}
		seen[entry.ID] = true
		sum += entry.Points
	}
	check("wallet_unique_ids", boolMetric(unique), unique, "duplicate ledger id")
	balanceOK := next.Wallet.PerkPoints == sum && next.Wallet.PerkPoints >= 0
	check("wallet_balance", float64(next.Wallet.PerkPoints), balanceOK,
		"wallet balance %d does not match ledger sum %d", next.Wallet.PerkPoints, sum)

	// 5. Perks: active implies owned and gates met.
	values := perks.StatValues(next.Stats)
	perksOK := true
	for _, entry := range next.Perks {
		if entry.Active && (!entry.Owned || !perks.GatesMet(entry.Perk, values)) {
			perksOK = false
		}
	}
	check("perk_invariants", boolMetric(perksOK), perksOK, "active perk without ownership or gates")

	// 6. Character progress: level derived from points, watermark bounded.
	derived := legacy.DeriveCharacterLevel(next.Progress.TotalStatPointsEarned)
	progressOK := next.Progress.CharacterLevel == derived &&
		next.Progress.LastMilestoneLevel >= 0 &&
		next.Progress.LastMilestoneLevel <= next.Progress.CharacterLevel
	check("progress_consistency", float64(next.Progress.CharacterLevel), progressOK,
		"character level %d does not match derived %d", next.Progress.CharacterLevel, derived)

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{Passed: passed, Metrics: metrics, Reason: reason}
}

// #endregion run

// #region helpers

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func boolMetric(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// #endregion helpers
