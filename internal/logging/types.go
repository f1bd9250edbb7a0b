package logging

import "time"

// #region triggers
// Trigger identifies what caused a profile transition.
const (
	TriggerTick        = "tick"
	TriggerGrant       = "grant"
	TriggerPerk        = "perk"
	TriggerRecalibrate = "recalibrate"
	TriggerRollback    = "rollback"
)

// Decision values recorded per transition attempt.
const (
	DecisionCommit = "commit"
	DecisionReject = "reject"
	DecisionNoOp   = "no_op"
)

// #endregion triggers

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	VersionID   string
	TriggerType string // tick | grant | recalibrate | rollback
	SignalsJSON string
	Decision    string // commit | reject | no_op
	Reason      string
	CreatedAt   time.Time
}

// #endregion provenance-entry

// #region transition-record
// TransitionRecord captures the inputs and outcome of one committed profile
// transition. Serialized as JSON into provenance_log.signals_json so a
// transition can be audited and replayed later.
type TransitionRecord struct {
	Trigger string `json:"trigger"`
	Day     string `json:"day,omitempty"` // YYYY-MM-DD

	// Grant inputs
	Stat   string  `json:"stat,omitempty"`
	Amount float64 `json:"amount,omitempty"`

	// Perk inputs
	Perk string `json:"perk,omitempty"`

	// Outcome
	LevelsGained     int                `json:"levels_gained,omitempty"`
	Milestones       []int              `json:"milestones,omitempty"`
	QuarterlyAwarded bool               `json:"quarterly_awarded,omitempty"`
	AnnualAwarded    bool               `json:"annual_awarded,omitempty"`
	StatValues       map[string]float64 `json:"stat_values,omitempty"`
	AbilityLevel     int                `json:"ability_level"`
	LegacyScore      float64            `json:"legacy_score,omitempty"`
	RecalNotes       []string           `json:"recal_notes,omitempty"`
}

// #endregion transition-record
