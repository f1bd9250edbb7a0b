// Package legacy implements the per-stat rollover leveling currency. Effort
// amounts accumulate in a counter that rolls into levels every 1000 points;
// each rolled level feeds one point back into the matching ability stat.
// All operations are pure and total: corrupt persisted state is repaired by
// normalization, never rejected.
package legacy

import (
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region constructors

// Empty returns an all-stat zeroed legacy state.
func Empty() State {
	stats := make(map[ability.StatKey]PerStat, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		stats[key] = PerStat{}
	}
	return State{Stats: stats}
}

// #endregion constructors

// #region sanitize

// sanitizePerStat repairs one stat's entry: non-finite or negative values
// fall to 0, the counter re-clamps to [0, 999], and a non-finite lifetime
// total is reconstructed from level and counter.
func sanitizePerStat(counter, level, totalEarned float64) PerStat {
	lvl := 0
	if finite(level) {
		lvl = maxInt(0, int(math.Floor(level)))
	}
	cnt := 0
	if finite(counter) {
		cnt = clampInt(int(math.Floor(counter)), 0, RolloverThreshold-1)
	}
	total := lvl*RolloverThreshold + cnt
	if finite(totalEarned) {
		total = maxInt(0, int(math.Floor(totalEarned)))
	}
	return PerStat{Counter: cnt, Level: lvl, TotalEarned: total}
}

// sanitizeAmount floors a progress amount to a non-negative integer;
// non-finite amounts become 0.
func sanitizeAmount(amount float64) int {
	if !finite(amount) || amount <= 0 {
		return 0
	}
	return int(math.Floor(amount))
}

// #endregion sanitize

// #region normalize

// Normalize repairs a possibly corrupt persisted state: missing stats become
// empty, per-stat values re-clamp, and the derived totals are recomputed
// from scratch.
func Normalize(state State) State {
	stats := make(map[ability.StatKey]PerStat, len(ability.StatKeys))
	totalLevels := 0
	totalEarned := 0

	for _, key := range ability.StatKeys {
		entry := state.Stats[key]
		repaired := sanitizePerStat(float64(entry.Counter), float64(entry.Level), float64(entry.TotalEarned))
		stats[key] = repaired
		totalLevels += repaired.Level
		totalEarned += repaired.TotalEarned
	}

	return State{
		Stats:       stats,
		TotalLevels: totalLevels,
		TotalEarned: totalEarned,
		PerkPoints:  totalLevels / LevelsPerPerkPoint,
	}
}

// #endregion normalize

// #region add-progress

// AddProgress grants a sanitized effort amount to one stat. A grant that
// crosses the rollover threshold (possibly several times) converts into
// levels via floor/mod in a single call; every rolled level increments the
// matching ability stat and the ability is recomputed. Amounts that sanitize
// to 0 are a no-op: the normalized legacy state comes back with the input
// ability untouched. Untargeted stats are copied unchanged.
func AddProgress(in AddProgressInput) AddProgressResult {
	base := Normalize(in.Legacy)
	amount := sanitizeAmount(in.Amount)

	if amount <= 0 || !ability.IsStatKey(string(in.Stat)) {
		return AddProgressResult{Legacy: base, Ability: in.Ability, LevelsGained: 0}
	}

	prev := base.Stats[in.Stat]
	rawCounter := prev.Counter + amount
	levelsGained := rawCounter / RolloverThreshold

	stats := make(map[ability.StatKey]PerStat, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		stats[key] = base.Stats[key]
	}
	stats[in.Stat] = PerStat{
		Counter:     rawCounter % RolloverThreshold,
		Level:       prev.Level + levelsGained,
		TotalEarned: prev.TotalEarned + amount,
	}

	totalLevels := 0
	totalEarned := 0
	for _, key := range ability.StatKeys {
		totalLevels += stats[key].Level
		totalEarned += stats[key].TotalEarned
	}

	next := State{
		Stats:       stats,
		TotalLevels: totalLevels,
		TotalEarned: totalEarned,
		PerkPoints:  totalLevels / LevelsPerPerkPoint,
	}

	resultAbility := in.Ability
	if levelsGained > 0 {
		bumped := make(map[ability.StatKey]ability.Snapshot, len(ability.StatKeys))
		for _, key := range ability.StatKeys {
			bumped[key] = in.Ability.Stats[key]
		}
		snap := bumped[in.Stat]
		snap.Value += float64(levelsGained)
		bumped[in.Stat] = snap
		resultAbility = ability.Calculate(bumped)
	}

	return AddProgressResult{Legacy: next, Ability: resultAbility, LevelsGained: levelsGained}
}

// #endregion add-progress

// #region helpers

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
