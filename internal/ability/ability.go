// Package ability derives the composite 0-100 ability profile from the six
// per-stat snapshots. Every function here is total and pure: non-finite or
// out-of-range inputs are clamped, never rejected.
package ability

import "math"

// #region clamps

// ClampStatValue sanitizes a raw stat value. Non-finite values fall to the
// stat floor; everything else is clamped to [1, 20].
func ClampStatValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MinStat
	}
	return math.Max(MinStat, math.Min(MaxStat, v))
}

// ClampConfidence sanitizes a raw confidence. Non-finite values fall to 0;
// everything else is clamped to [0, 1].
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, c))
}

// #endregion clamps

// #region calculate

// Calculate sums the six stat values, clamps the total to [6, 120], and
// rescales it linearly onto [0, 100]. The integer part becomes the level and
// the fraction becomes the progress toward the next level.
func Calculate(stats map[StatKey]Snapshot) Ability {
	normalized := make(map[StatKey]Snapshot, len(StatKeys))
	total := 0.0

	for _, key := range StatKeys {
		snap := stats[key]
		value := ClampStatValue(snap.Value)
		normalized[key] = Snapshot{
			Value:      value,
			Confidence: ClampConfidence(snap.Confidence),
		}
		total += value
	}

	total = math.Max(MinTotal, math.Min(MaxTotal, total))
	scaled := 100 * (total - MinTotal) / (MaxTotal - MinTotal)
	level := int(math.Floor(scaled))

	return Ability{
		Stats:      normalized,
		Total:      total,
		Level:      level,
		Progress01: scaled - float64(level),
	}
}

// FromValues builds snapshots from bare stat values and delegates to
// Calculate. Missing confidences default to 0.5.
func FromValues(values map[StatKey]float64, confidences map[StatKey]float64) Ability {
	stats := make(map[StatKey]Snapshot, len(StatKeys))
	for _, key := range StatKeys {
		confidence := 0.5
		if c, ok := confidences[key]; ok {
			confidence = c
		}
		stats[key] = Snapshot{
			Value:      ClampStatValue(values[key]),
			Confidence: ClampConfidence(confidence),
		}
	}
	return Calculate(stats)
}

// #endregion calculate
