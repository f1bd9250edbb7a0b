package profile

import (
	"math"
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/currency"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/legacy"
	"github.com/kibbyd/lifequest/internal/perks"
)

// #region profile
// Profile is the complete persisted engine state for one user: the six stat
// snapshots, per-stat dynamics parameters, the legacy ledger, character
// progress, perk wallet and state, the activity log, and the running legacy
// score.
type Profile struct {
	Stats       map[ability.StatKey]ability.Snapshot `json:"stats"`
	Dynamics    dynamics.UserDynamics                `json:"dynamics"`
	Legacy      legacy.State                         `json:"legacy"`
	Progress    legacy.CharacterProgress             `json:"progress"`
	Wallet      currency.Wallet                      `json:"wallet"`
	Perks       []perks.PerkState                    `json:"perks"`
	Activity    currency.ActivityLog                 `json:"activity"`
	LegacyScore float64                              `json:"legacy_score"`
}

// Empty returns the starting profile: every stat at 10 with neutral
// confidence, default dynamics, zeroed progression.
func Empty() Profile {
	stats := make(map[ability.StatKey]ability.Snapshot, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		stats[key] = ability.Snapshot{Value: 10, Confidence: 0.5}
	}
	return Profile{
		Stats:    stats,
		Dynamics: dynamics.Defaults(),
		Legacy:   legacy.Empty(),
		Progress: legacy.EmptyProgress(),
		Wallet:   currency.EmptyWallet(),
		Activity: currency.EmptyActivityLog(),
	}
}

// Normalize repairs a loaded profile. Every sub-state runs through its own
// sanitizer, dynamics parameters with non-finite fields fall back to the
// defaults, and perk activation that violates the invariants is cleared
// against the repaired stats. Repair only removes bad activation; it never
// re-activates, so a toggled-off perk survives the round-trip. Full
// re-evaluation happens at the grant and tick reconcile points.
// Storage hands back whatever it was given; this is the trust boundary.
func Normalize(p Profile, now time.Time) Profile {
	stats := make(map[ability.StatKey]ability.Snapshot, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		snap := p.Stats[key]
		stats[key] = ability.Snapshot{
			Value:      ability.ClampStatValue(snap.Value),
			Confidence: ability.ClampConfidence(snap.Confidence),
		}
	}

	defaults := dynamics.Defaults()
	dyn := make(dynamics.UserDynamics, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		params, ok := p.Dynamics[key]
		if !ok || !paramsFinite(params) {
			params = defaults[key]
		}
		dyn[key] = params
	}

	score := p.LegacyScore
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		score = 0
	}

	return Profile{
		Stats:       stats,
		Dynamics:    dyn,
		Legacy:      legacy.Normalize(p.Legacy),
		Progress:    legacy.NormalizeProgress(p.Progress),
		Wallet:      currency.NormalizeWallet(p.Wallet, now),
		Perks:       perks.Repair(p.Perks, perks.StatValues(stats)),
		Activity:    currency.NormalizeActivityLog(p.Activity),
		LegacyScore: score,
	}
}

// Ability computes the composite ability sheet from the profile's stats.
func (p Profile) Ability() ability.Ability {
	return ability.Calculate(p.Stats)
}

func paramsFinite(p dynamics.Params) bool {
	for _, v := range []float64{p.Tau0, p.Alpha, p.TL0, p.Beta, p.Eta0, p.Gamma, p.SFloor} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Tau0 > 0
}

// #endregion profile

// #region record
// Record is one versioned profile snapshot. ParentID is empty only for the
// initial version.
type Record struct {
	VersionID string
	ParentID  string
	Profile   Profile
	CreatedAt time.Time
}

// #endregion record
