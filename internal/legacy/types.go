package legacy

import (
	"encoding/json"
	"math"

	"github.com/kibbyd/lifequest/internal/ability"
)

// #region constants
const (
	// RolloverThreshold is the counter value at which one legacy level rolls over.
	RolloverThreshold = 1000
	// LevelsPerPerkPoint converts accumulated legacy levels into perk points.
	LevelsPerPerkPoint = 5
	// StatPointsPerCharacterLevel converts earned stat points into character levels.
	StatPointsPerCharacterLevel = 10
)

// #endregion constants

// #region per-stat
// PerStat is one stat's mastery currency: a rollover counter, the levels it
// has rolled into, and the lifetime points earned. Level and TotalEarned are
// monotonic.
type PerStat struct {
	Counter     int `json:"counter"` // [0, 999]
	Level       int `json:"level"`
	TotalEarned int `json:"total_earned"`
}

// UnmarshalJSON repairs corrupt persisted values instead of failing: storage
// round-trips may hand back floats, nulls, or wrong types. Missing or
// unreadable fields sanitize the same way non-finite numbers do.
func (p *PerStat) UnmarshalJSON(data []byte) error {
	var raw struct {
		Counter     json.RawMessage `json:"counter"`
		Level       json.RawMessage `json:"level"`
		TotalEarned json.RawMessage `json:"total_earned"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*p = PerStat{}
		return nil
	}
	*p = sanitizePerStat(looseNumber(raw.Counter), looseNumber(raw.Level), looseNumber(raw.TotalEarned))
	return nil
}

func looseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return math.NaN()
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	return v
}

// #endregion per-stat

// #region state
// State is the full legacy ledger. TotalLevels, TotalEarned, and PerkPoints
// are derived: recomputed from the per-stat map on every normalization and
// update, never stored independently.
type State struct {
	Stats       map[ability.StatKey]PerStat `json:"stats"`
	TotalLevels int                         `json:"total_levels"`
	TotalEarned int                         `json:"total_earned"`
	PerkPoints  int                         `json:"perk_points"`
}

// #endregion state

// #region progress
// CharacterProgress is the character-level track derived from stat points
// earned through legacy rollovers.
type CharacterProgress struct {
	CharacterLevel        int `json:"character_level"`
	TotalStatPointsEarned int `json:"total_stat_points_earned"`
	LastMilestoneLevel    int `json:"last_milestone_level"`
}

// #endregion progress

// #region add-progress
// AddProgressInput targets one stat with a sanitized effort amount.
type AddProgressInput struct {
	Legacy  State
	Ability ability.Ability
	Stat    ability.StatKey
	Amount  float64
}

// AddProgressResult carries the updated legacy state and, when levels rolled
// over, the recomputed ability. LevelsGained is 0 for no-op grants.
type AddProgressResult struct {
	Legacy       State
	Ability      ability.Ability
	LevelsGained int
}

// #endregion add-progress
