package progression

import (
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/currency"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/legacy"
	"github.com/kibbyd/lifequest/internal/perks"
)

// #region grant-io

// GrantInput carries every piece of state an effort grant touches. Now is
// supplied by the caller; the pipeline never reads the clock.
type GrantInput struct {
	Legacy   legacy.State
	Ability  ability.Ability
	Progress legacy.CharacterProgress
	Wallet   currency.Wallet
	Perks    []perks.PerkState
	Activity currency.ActivityLog

	Stat   ability.StatKey
	Amount float64
	Now    time.Time

	// QuarterlyDays and AnnualDays override the periodic award
	// requirements; <= 0 selects the defaults.
	QuarterlyDays int
	AnnualDays    int
	// Milestones overrides the character-level milestone set; nil selects
	// the default {10, 25, 50, 75, 100}.
	Milestones []int
}

// GrantResult is the full post-grant state plus what the pipeline did.
type GrantResult struct {
	Legacy   legacy.State
	Ability  ability.Ability
	Progress legacy.CharacterProgress
	Wallet   currency.Wallet
	Perks    []perks.PerkState
	Activity currency.ActivityLog

	LevelsGained        int
	MilestonesTriggered []int
	QuarterlyAwarded    bool
	AnnualAwarded       bool
}

// #endregion grant-io

// #region tick-io

// TickDayInput is one daily tick plus the perk/wallet state the tick's
// ability movement must be reconciled against.
type TickDayInput struct {
	Stats       map[ability.StatKey]ability.Snapshot
	Dynamics    dynamics.UserDynamics
	LegacyScore float64

	Input  dynamics.TickInput
	Perks  []perks.PerkState
	Wallet currency.Wallet
	Now    time.Time

	// Scorer, when set, threads the legacy score recomputation through the
	// tick. Nil skips scoring.
	Scorer dynamics.Scorer
}

// TickDayResult bundles the tick outcome with the reconciled perk state.
type TickDayResult struct {
	Tick   dynamics.TickResult
	Perks  []perks.PerkState
	Wallet currency.Wallet
}

// #endregion tick-io
