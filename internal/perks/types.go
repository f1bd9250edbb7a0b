package perks

import "github.com/kibbyd/lifequest/internal/ability"

// #region definition
// Definition describes an unlockable perk. Gates is a partial map: a stat
// absent from it has no threshold and is vacuously satisfied.
type Definition struct {
	ID    string                      `json:"id"`
	Name  string                      `json:"name"`
	Gates map[ability.StatKey]float64 `json:"gates"`
}

// #endregion definition

// #region state
// PerkState tracks one perk's ownership and activation. Invariants:
// active implies owned, and active implies the gates are met against the
// current stats. Entries are created on first assignment and never deleted
// while owned.
type PerkState struct {
	Perk   Definition `json:"perk"`
	Owned  bool       `json:"owned"`
	Active bool       `json:"active"`
}

// AssignResult reports an ownership attempt. OK is false only when the
// perk point balance was insufficient.
type AssignResult struct {
	OK             bool
	PerkPointsLeft int
	State          []PerkState
}

// #endregion state
