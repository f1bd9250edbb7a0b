// Package score implements the legacy score model: a composite of ability
// area-under-curve, work volume, PR events, consistency, and badges with
// fixed weights. The tick engine calls it through an explicit contract
// (Inputs → Result) so the formula stays replaceable without touching the
// per-stat dynamics.
package score

import (
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region model

// Model computes legacy score deltas. Pure and total: non-finite signal
// values contribute zero rather than failing.
type Model struct {
	config Config
}

// NewModel creates a score model with the given configuration.
func NewModel(config Config) *Model {
	return &Model{config: config}
}

// Score recomputes the legacy score across one period. The new score is the
// previous score plus DailyBase scaled by the weighted component sum, so a
// fully maxed period grants exactly DailyBase points.
func (m *Model) Score(in Inputs) Result {
	c := Components{
		AUC:         m.aucComponent(in.AbilityBefore, in.AbilityAfter),
		Work:        m.workComponent(in.TrainingLoad),
		PR:          clamp01(float64(len(in.PREvents)) / m.config.PRScale),
		Consistency: m.consistencyComponent(in.Streaks),
		Badges:      clamp01(float64(len(in.Badges)) / m.config.BadgeScale),
	}

	w := m.config.Weights
	weighted := w.AUC*c.AUC + w.Work*c.Work + w.PR*c.PR + w.Consistency*c.Consistency + w.Badges*c.Badges

	prev := in.PreviousScore
	if math.IsNaN(prev) || math.IsInf(prev, 0) || prev < 0 {
		prev = 0
	}
	total := prev + m.config.DailyBase*weighted

	return Result{
		Score:      total,
		Level:      m.levelFor(total),
		Components: c,
	}
}

// #endregion model

// #region components

// aucComponent averages the scaled 0-100 level across the period endpoints
// and normalizes to [0, 1].
func (m *Model) aucComponent(before, after ability.Ability) float64 {
	b := float64(before.Level) + before.Progress01
	a := float64(after.Level) + after.Progress01
	return clamp01((b + a) / 2 / 100)
}

// workComponent saturates total training load: WorkScale units of load reach
// half of the component, unbounded load approaches 1.
func (m *Model) workComponent(loads []map[ability.StatKey]float64) float64 {
	total := 0.0
	for _, load := range loads {
		for _, key := range ability.StatKeys {
			v := load[key]
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				continue
			}
			total += v
		}
	}
	return clamp01(total / (total + m.config.WorkScale))
}

func (m *Model) consistencyComponent(streaks []Streak) float64 {
	longest := 0
	for _, s := range streaks {
		if s.Days > longest {
			longest = s.Days
		}
	}
	return clamp01(float64(longest) / m.config.StreakScale)
}

// #endregion components

// #region level

// levelFor inverts the level curve score = LevelBase * level^LevelAlpha.
func (m *Model) levelFor(total float64) int {
	if total < m.config.LevelBase {
		return 0
	}
	return int(math.Floor(math.Pow(total/m.config.LevelBase, 1/m.config.LevelAlpha)))
}

// #endregion level

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
