package dynamics

import (
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/score"
)

// #region params
// Params holds one stat's growth/decay parameters. Immutable during ticks;
// only Recalibrate produces adjusted copies.
type Params struct {
	Tau0   float64 `json:"tau0"`   // decay half-life baseline, days
	Alpha  float64 `json:"alpha"`  // half-life compression per point above the floor
	TL0    float64 `json:"tl0"`    // maintenance-load baseline
	Beta   float64 `json:"beta"`   // maintenance-load slope per point above the floor
	Eta0   float64 `json:"eta0"`   // growth-rate baseline
	Gamma  float64 `json:"gamma"`  // growth taper rate above the mastery midpoint
	SFloor float64 `json:"sfloor"` // stat floor decay pulls toward
}

// UserDynamics maps each stat to its parameters.
type UserDynamics map[ability.StatKey]Params

// Defaults returns the standard per-stat parameter set.
func Defaults() UserDynamics {
	return UserDynamics{
		ability.Power:     {Tau0: 28, Alpha: 0.08, TL0: 1.0, Beta: 0.5, Eta0: 1.0, Gamma: 0.1, SFloor: 8},
		ability.Accuracy:  {Tau0: 21, Alpha: 0.07, TL0: 1.0, Beta: 0.4, Eta0: 0.95, Gamma: 0.08, SFloor: 8},
		ability.Grit:      {Tau0: 35, Alpha: 0.06, TL0: 1.0, Beta: 0.5, Eta0: 0.85, Gamma: 0.08, SFloor: 8},
		ability.Cognition: {Tau0: 60, Alpha: 0.05, TL0: 1.0, Beta: 0.3, Eta0: 0.8, Gamma: 0.06, SFloor: 8},
		ability.Planning:  {Tau0: 45, Alpha: 0.05, TL0: 1.0, Beta: 0.3, Eta0: 0.85, Gamma: 0.06, SFloor: 8},
		ability.Social:    {Tau0: 30, Alpha: 0.07, TL0: 1.0, Beta: 0.4, Eta0: 0.9, Gamma: 0.08, SFloor: 8},
	}
}

// #endregion params

// #region evidence
// EvidenceSource tags where a token was captured.
type EvidenceSource string

const (
	SourceCamera   EvidenceSource = "camera"
	SourceWearable EvidenceSource = "wearable"
	SourceMinitest EvidenceSource = "minitest"
	SourceSpeech   EvidenceSource = "speech"
	SourceSocial   EvidenceSource = "social"
	SourceCalendar EvidenceSource = "calendar"
	SourceFit      EvidenceSource = "fit"
)

// EvidenceToken is one captured piece of effort evidence. The engine trusts
// Quality and StatHint only; PayloadRef stays opaque.
type EvidenceToken struct {
	ID         string           `json:"id"`
	Source     EvidenceSource   `json:"source"`
	StartedAt  time.Time        `json:"started_at"`
	EndedAt    time.Time        `json:"ended_at"`
	Quality    float64          `json:"quality"` // [0, 1]
	PayloadRef string           `json:"payload_ref"`
	StatHint   *ability.StatKey `json:"stat_hint,omitempty"`
}

// #endregion evidence

// #region tick-io
// TickInput is one day's training load and evidence.
type TickInput struct {
	TrainingLoad    map[ability.StatKey]float64 `json:"training_load"`
	Tokens          []EvidenceToken             `json:"tokens"`
	InjuryOrIllness bool                        `json:"injury_or_illness,omitempty"`
}

// TickState is the prior state a tick advances from.
type TickState struct {
	Stats       map[ability.StatKey]ability.Snapshot
	Dynamics    UserDynamics
	LegacyScore float64
}

// TickResult bundles everything produced by one tick.
type TickResult struct {
	AbilityBefore ability.Ability
	Ability       ability.Ability
	UpdatedStats  map[ability.StatKey]ability.Snapshot
	Score         *score.Result // set by TickWithScore only
}

// #endregion tick-io

// #region scorer
// Scorer is the hand-off contract for the legacy score recomputation that
// runs across the ability-before/ability-after pair of each tick. Kept as an
// interface so the score formula stays a separate, replaceable component.
type Scorer interface {
	Score(in score.Inputs) score.Result
}

// #endregion scorer
