package dynamics

import (
	"fmt"
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region observation
// Observation summarizes one stat's real-world behavior over a window of
// days, used to nudge that stat's parameters toward what was observed.
type Observation struct {
	Stat             ability.StatKey `json:"stat"`
	AverageLoad      float64         `json:"average_load"`
	MaintenanceGuess float64         `json:"maintenance_guess"`
	ObservedDelta    float64         `json:"observed_delta"`
	Days             float64         `json:"days"`
	Quality          float64         `json:"quality"`
}

// RecalInput carries ability history and observations into Recalibrate.
type RecalInput struct {
	PreviousAbility ability.Ability
	RecentAbility   ability.Ability
	Observations    []Observation
	PrevDynamics    UserDynamics
}

// RecalResult is the adjusted parameter set plus advisory notes. Notes are
// observability output only, never control flow.
type RecalResult struct {
	Dynamics UserDynamics
	Ability  ability.Ability
	Notes    []string
}

// #endregion observation

// #region recalibrate

// Recalibrate blends each stat's parameters toward values that would have
// produced the observed trend. Never fails: observations with non-finite
// fields or unknown stats are skipped rather than rejected.
//
// Growth case (load above the maintenance guess): the growth formula is
// inverted to an implied eta0 at the recent ability value and blended in
// with weight 0.3 * quality, clamped to [0.1, 2.5].
//
// Decay case (load at or under maintenance, negative delta): the half-life
// formula is inverted to a target tau0 and blended in with weight
// 0.2 * quality, clamped to [5, 180].
func Recalibrate(input RecalInput) RecalResult {
	defaults := Defaults()
	updated := make(UserDynamics, len(input.PrevDynamics))
	for key, params := range input.PrevDynamics {
		updated[key] = params
	}
	var notes []string

	for _, obs := range input.Observations {
		if !ability.IsStatKey(string(obs.Stat)) {
			continue
		}
		if !finiteAll(obs.AverageLoad, obs.MaintenanceGuess, obs.ObservedDelta, obs.Days, obs.Quality) {
			continue
		}

		params, ok := updated[obs.Stat]
		if !ok {
			params = defaults[obs.Stat]
		}
		qualityWeight := math.Max(0.1, math.Min(1, obs.Quality))
		trend := obs.ObservedDelta / math.Max(1, obs.Days)

		if obs.AverageLoad > obs.MaintenanceGuess {
			loadAbove := obs.AverageLoad - obs.MaintenanceGuess
			recent := input.RecentAbility.Stats[obs.Stat].Value
			taper := 1 / (1 + params.Gamma*math.Max(0, recent-10))
			implied := trend / math.Max(0.001, loadAbove*taper)
			blended := params.Eta0*(1-0.3*qualityWeight) + implied*0.3*qualityWeight
			params.Eta0 = math.Max(0.1, math.Min(2.5, blended))
			updated[obs.Stat] = params
			notes = append(notes, fmt.Sprintf("eta0 recalibrated for %s -> %.2f", obs.Stat, params.Eta0))
		}

		if obs.AverageLoad <= obs.MaintenanceGuess && obs.ObservedDelta < 0 {
			previous := input.PreviousAbility.Stats[obs.Stat].Value
			ratio := 1 + obs.ObservedDelta/math.Max(1, previous)
			if ratio <= 0 {
				continue
			}
			target := math.Max(5, math.Min(180, math.Log(0.5)/math.Log(ratio)))
			blended := params.Tau0*(1-0.2*qualityWeight) + target*0.2*qualityWeight
			params.Tau0 = math.Max(5, math.Min(halfLifeSafeguard, blended))
			updated[obs.Stat] = params
			notes = append(notes, fmt.Sprintf("tau0 recalibrated for %s -> %.1f", obs.Stat, params.Tau0))
		}
	}

	return RecalResult{
		Dynamics: updated,
		Ability:  input.RecentAbility,
		Notes:    notes,
	}
}

// #endregion recalibrate

func finiteAll(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
