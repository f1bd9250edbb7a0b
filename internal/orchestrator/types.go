package orchestrator

import (
	"context"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/classifier"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/score"
)

// #region config

// Config tunes the orchestrator's award and recalibration windows. Zero
// values select the engine defaults.
type Config struct {
	// QuarterlyDays and AnnualDays override the active-day requirements
	// for the periodic awards.
	QuarterlyDays int
	AnnualDays    int
	// Milestones overrides the character-level milestone set.
	Milestones []int
	// RecalWindowDays bounds how far back recalibration reads
	// observations. Defaults to 14.
	RecalWindowDays int
}

// DefaultConfig returns the standard orchestrator configuration.
func DefaultConfig() Config {
	return Config{RecalWindowDays: 14}
}

// #endregion config

// #region classifier-contract

// RemoteClassifier classifies free-text activity descriptions. The concrete
// implementation is an HTTP call; the orchestrator falls back to keyword
// classification whenever the remote is unavailable or fails.
type RemoteClassifier interface {
	Classify(ctx context.Context, text string) (classifier.Classification, error)
}

// #endregion classifier-contract

// #region outcomes

// ActivityOutcome reports what one recorded activity did to the profile.
type ActivityOutcome struct {
	VersionID      string
	Classification classifier.Classification
	Fallback       bool
	Amount         float64
	LevelsGained   int
	Milestones     []int
	AbilityLevel   int
}

// TickOutcome reports one committed daily tick.
type TickOutcome struct {
	VersionID string
	Ability   ability.Ability
	Score     *score.Result
}

// RecalOutcome reports one committed parameter recalibration.
type RecalOutcome struct {
	VersionID string
	Dynamics  dynamics.UserDynamics
	Notes     []string
}

// #endregion outcomes
