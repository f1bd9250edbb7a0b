// Package progression composes the pure engine operations into the two
// pipelines the host commits as single state transitions: Grant (effort →
// legacy rollover → character progress → awards → perk activation) and
// TickDay (daily dynamics tick → perk reconciliation).
package progression

import (
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/currency"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/legacy"
	"github.com/kibbyd/lifequest/internal/perks"
)

// #region grant

// Grant runs the full effort-grant pipeline: legacy add, character progress
// advance on rolled levels, level milestones, periodic awards (only once the
// activity log is non-empty), and perk activation against the updated stats.
// Every stage is pure; the result is a complete replacement state.
func Grant(in GrantInput) GrantResult {
	added := legacy.AddProgress(legacy.AddProgressInput{
		Legacy:  in.Legacy,
		Ability: in.Ability,
		Stat:    in.Stat,
		Amount:  in.Amount,
	})

	activity := currency.NormalizeActivityLog(in.Activity)
	if granted, amount := grantedAmount(in.Stat, in.Amount); granted {
		stat := in.Stat
		activity.Entries = append(activity.Entries, currency.ActivityLogEntry{
			Date:   in.Now.UTC().Format("2006-01-02"),
			Stat:   &stat,
			Amount: &amount,
		})
	}

	progress := legacy.NormalizeProgress(in.Progress)
	if added.LevelsGained > 0 {
		progress = legacy.AddStatPoints(progress, added.LevelsGained)
	}

	progress, milestone := currency.AwardLevelMilestones(progress, in.Wallet, in.Now, in.Milestones)
	wallet := milestone.Wallet

	quarterlyAwarded := false
	annualAwarded := false
	if len(activity.Entries) > 0 {
		quarterly := currency.RecomputeQuarterly(activity, wallet, currency.AwardOptions{
			Now:          in.Now,
			RequiredDays: in.QuarterlyDays,
		})
		wallet = quarterly.Wallet
		quarterlyAwarded = quarterly.Awarded

		annual := currency.RecomputeAnnual(activity, wallet, currency.AwardOptions{
			Now:          in.Now,
			RequiredDays: in.AnnualDays,
		})
		wallet = annual.Wallet
		annualAwarded = annual.Awarded
	}

	perkState, wallet := currency.EvaluatePerkActivation(
		in.Perks, perks.StatValues(added.Ability.Stats), wallet, in.Now)

	return GrantResult{
		Legacy:              added.Legacy,
		Ability:             added.Ability,
		Progress:            progress,
		Wallet:              wallet,
		Perks:               perkState,
		Activity:            activity,
		LevelsGained:        added.LevelsGained,
		MilestonesTriggered: milestone.Triggered,
		QuarterlyAwarded:    quarterlyAwarded,
		AnnualAwarded:       annualAwarded,
	}
}

// grantedAmount mirrors the legacy amount sanitization: only grants that
// floor to a positive integer on a known stat count as logged activity.
func grantedAmount(stat ability.StatKey, amount float64) (bool, float64) {
	if !ability.IsStatKey(string(stat)) {
		return false, 0
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 1 {
		return false, 0
	}
	return true, math.Floor(amount)
}

// #endregion grant

// #region tick

// TickDay advances one day of dynamics and reconciles perk activation
// against the moved stats. Decayed stats can deactivate perks here; the
// wallet only passes through normalization.
func TickDay(in TickDayInput) TickDayResult {
	state := dynamics.TickState{
		Stats:       in.Stats,
		Dynamics:    in.Dynamics,
		LegacyScore: in.LegacyScore,
	}

	var result dynamics.TickResult
	if in.Scorer != nil {
		result = dynamics.TickWithScore(state, in.Input, in.Scorer)
	} else {
		result = dynamics.Tick(state, in.Input)
	}

	perkState, wallet := currency.EvaluatePerkActivation(
		in.Perks, perks.StatValues(result.UpdatedStats), in.Wallet, in.Now)

	return TickDayResult{Tick: result, Perks: perkState, Wallet: wallet}
}

// #endregion tick
