// Package perks implements the perk gating state machine:
// unowned → owned/inactive ⇄ owned/active, with the active flag driven
// purely by gate satisfaction against the current ability stats. No
// transition assigns active without a gate check.
package perks

import "github.com/kibbyd/lifequest/internal/ability"

// #region gates

// GatesMet reports whether every defined gate threshold is at or below the
// corresponding stat value.
func GatesMet(perk Definition, stats map[ability.StatKey]float64) bool {
	for key, threshold := range perk.Gates {
		if stats[key] < threshold {
			return false
		}
	}
	return true
}

// StatValues extracts the plain value map gate checks run against.
func StatValues(snapshots map[ability.StatKey]ability.Snapshot) map[ability.StatKey]float64 {
	values := make(map[ability.StatKey]float64, len(snapshots))
	for key, snap := range snapshots {
		values[key] = snap.Value
	}
	return values
}

// #endregion gates

// #region assign

// Assign spends one perk point to take ownership of a perk. Assigning an
// already-owned perk is a no-op success; an empty balance fails with the
// state unchanged. A perk whose gates are already met activates immediately
// on acquisition.
func Assign(perk Definition, current []PerkState, perkPoints int, stats map[ability.StatKey]float64) AssignResult {
	for _, entry := range current {
		if entry.Perk.ID == perk.ID && entry.Owned {
			return AssignResult{OK: true, PerkPointsLeft: perkPoints, State: current}
		}
	}
	if perkPoints <= 0 {
		return AssignResult{OK: false, PerkPointsLeft: perkPoints, State: current}
	}

	next := make([]PerkState, 0, len(current)+1)
	for _, entry := range current {
		if entry.Perk.ID != perk.ID {
			next = append(next, entry)
		}
	}
	next = append(next, PerkState{Perk: perk, Owned: true, Active: GatesMet(perk, stats)})

	return AssignResult{OK: true, PerkPointsLeft: perkPoints - 1, State: next}
}

// #endregion assign

// #region toggle

// Toggle sets an owned perk's desired activation. The final state is
// desired AND gates met: a user cannot force activation past an unmet gate.
// Unowned perks and unknown ids are untouched.
func Toggle(perkID string, desiredActive bool, current []PerkState, stats map[ability.StatKey]float64) []PerkState {
	next := make([]PerkState, len(current))
	for i, entry := range current {
		if entry.Perk.ID != perkID || !entry.Owned {
			next[i] = entry
			continue
		}
		entry.Active = desiredActive && GatesMet(entry.Perk, stats)
		next[i] = entry
	}
	return next
}

// #endregion toggle

// #region reconcile

// Reconcile re-evaluates every owned perk's gate status after an ability
// change, deactivating perks whose gates lapsed and reactivating those that
// qualify again. This is what keeps perks honest as stats decay.
func Reconcile(current []PerkState, stats map[ability.StatKey]float64) []PerkState {
	next := make([]PerkState, len(current))
	for i, entry := range current {
		if entry.Owned {
			entry.Active = GatesMet(entry.Perk, stats)
		} else {
			// Activation never survives without ownership.
			entry.Active = false
		}
		next[i] = entry
	}
	return next
}

// Repair clears activation that violates the perk invariants: active
// without ownership, or active past a lapsed gate. Unlike Reconcile it
// never re-activates, so a deliberately toggled-off perk stays off across
// a store round-trip.
func Repair(current []PerkState, stats map[ability.StatKey]float64) []PerkState {
	next := make([]PerkState, len(current))
	for i, entry := range current {
		if entry.Active && (!entry.Owned || !GatesMet(entry.Perk, stats)) {
			entry.Active = false
		}
		next[i] = entry
	}
	return next
}

// #endregion reconcile
