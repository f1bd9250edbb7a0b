// Package dynamics advances the six stat snapshots one time-step at a time.
// Each tick consumes a day's training load and evidence tokens, applies
// growth above the maintenance threshold and half-life decay below it, and
// recomputes the composite ability. Pure value-in/value-out: no I/O, no
// clocks, no shared state.
package dynamics

import (
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/score"
)

const (
	confidenceDecay   = 0.92
	baselineQuality   = 0.4 // assumed quality when a tick carries no tokens
	halfLifeSafeguard = 180 // days
)

// #region quality

type qualityAggregation struct {
	average float64
	byStat  map[ability.StatKey]float64
}

// aggregateQuality averages token quality overall and per hinted stat.
func aggregateQuality(tokens []EvidenceToken) qualityAggregation {
	if len(tokens) == 0 {
		return qualityAggregation{average: baselineQuality, byStat: map[ability.StatKey]float64{}}
	}

	sum := 0.0
	totals := make(map[ability.StatKey]float64)
	counts := make(map[ability.StatKey]int)

	for _, token := range tokens {
		quality := clampQuality(token.Quality)
		sum += quality
		if token.StatHint != nil {
			totals[*token.StatHint] += quality
			counts[*token.StatHint]++
		}
	}

	byStat := make(map[ability.StatKey]float64, len(totals))
	for key, total := range totals {
		byStat[key] = total / math.Max(1, float64(counts[key]))
	}

	return qualityAggregation{average: sum / float64(len(tokens)), byStat: byStat}
}

// qualitySignal blends 70% stat-hinted quality with 30% overall quality,
// falling back to the overall average when no token hinted at the stat.
func qualitySignal(key ability.StatKey, agg qualityAggregation) float64 {
	blended := agg.average
	if hinted, ok := agg.byStat[key]; ok {
		blended = 0.7*hinted + 0.3*agg.average
	}
	return clampQuality(blended)
}

func clampQuality(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, q))
}

// #endregion quality

// #region thresholds

// maintenanceThreshold is the load required merely to avoid decay. It rises
// with mastery above the stat floor.
func maintenanceThreshold(value float64, p Params) float64 {
	return p.TL0 + p.Beta*math.Max(0, value-p.SFloor)
}

// effectiveTau compresses the decay half-life as mastery rises, bounded to
// [1, 180] days.
func effectiveTau(value float64, p Params) float64 {
	divisor := 1 + p.Alpha*math.Max(0, value-p.SFloor)
	tau := p.Tau0 / math.Max(0.5, divisor)
	return math.Max(1, math.Min(halfLifeSafeguard, tau))
}

// #endregion thresholds

// #region tick

// Tick advances every stat one time-step. Per stat: growth from load above
// the maintenance threshold (tapered with mastery, scaled by evidence
// quality), exponential decay toward the stat floor (reduced under surplus
// load, amplified under a maintenance shortfall, dampened during recovery),
// then a confidence update.
func Tick(state TickState, input TickInput) TickResult {
	agg := aggregateQuality(input.Tokens)
	defaults := Defaults()

	updated := make(map[ability.StatKey]ability.Snapshot, len(ability.StatKeys))

	for _, key := range ability.StatKeys {
		prev := state.Stats[key]
		params, ok := state.Dynamics[key]
		if !ok {
			params = defaults[key]
		}
		load := sanitizeLoad(input.TrainingLoad[key])
		quality := qualitySignal(key, agg)

		maintenance := maintenanceThreshold(prev.Value, params)
		loadAbove := math.Max(0, load-maintenance)
		taper := 1 / (1 + params.Gamma*math.Max(0, prev.Value-10))
		qualityFactor := 0.25 + 0.75*quality
		gain := loadAbove * params.Eta0 * taper * qualityFactor

		tau := effectiveTau(prev.Value, params)
		decay := (prev.Value - params.SFloor) * (1 - math.Pow(0.5, 1/tau))

		if loadAbove > 0 {
			decay *= 1 - math.Min(0.7, loadAbove/(maintenance+1)*0.6)
		} else if maintenance > 0 {
			if gap := (maintenance - load) / maintenance; gap > 0 {
				decay *= 1 + math.Min(0.8, gap)
			}
		}

		// Recovery rule: being marked injured or ill slows conditioning
		// loss, more so when the evidence quality is decent.
		if input.InjuryOrIllness {
			if quality > 0.4 {
				decay *= 0.55
			} else {
				decay *= 0.75
			}
		}

		value := prev.Value + gain - decay
		value = math.Max(params.SFloor, value)
		value = ability.ClampStatValue(value)

		confidence := ability.ClampConfidence(
			prev.Confidence*confidenceDecay + quality*0.5 + math.Min(0.1, loadAbove/50),
		)

		updated[key] = ability.Snapshot{Value: value, Confidence: confidence}
	}

	return TickResult{
		AbilityBefore: ability.Calculate(state.Stats),
		Ability:       ability.Calculate(updated),
		UpdatedStats:  updated,
	}
}

// TickWithScore runs Tick and then threads the legacy score recomputation
// across the ability-before/ability-after pair through the Scorer contract.
func TickWithScore(state TickState, input TickInput, scorer Scorer) TickResult {
	result := Tick(state, input)

	qualities := make([]float64, 0, len(input.Tokens))
	for _, token := range input.Tokens {
		qualities = append(qualities, clampQuality(token.Quality))
	}

	scored := scorer.Score(score.Inputs{
		AbilityBefore:  result.AbilityBefore,
		AbilityAfter:   result.Ability,
		TrainingLoad:   []map[ability.StatKey]float64{input.TrainingLoad},
		TokenQualities: qualities,
		PreviousScore:  state.LegacyScore,
	})
	result.Score = &scored

	return result
}

func sanitizeLoad(load float64) float64 {
	if math.IsNaN(load) || math.IsInf(load, 0) || load < 0 {
		return 0
	}
	return load
}

// #endregion tick
