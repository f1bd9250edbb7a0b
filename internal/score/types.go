package score

import "github.com/kibbyd/lifequest/internal/ability"

// #region inputs
// PREvent records a personal-record event attributed to one stat.
type PREvent struct {
	Stat ability.StatKey `json:"stat"`
	Date string          `json:"date"`
}

// Streak records a run of consecutive active days.
type Streak struct {
	Days int `json:"days"`
}

// Inputs carries one period's signals into the score model. This is the
// typed hand-off contract between the tick engine and the legacy score:
// ability before/after the tick plus the period's raw signals.
type Inputs struct {
	AbilityBefore  ability.Ability
	AbilityAfter   ability.Ability
	TrainingLoad   []map[ability.StatKey]float64
	TokenQualities []float64
	PREvents       []PREvent
	Streaks        []Streak
	Badges         []string
	PreviousScore  float64
}

// #endregion inputs

// #region components
// Components breaks the period delta into its weighted parts, each in [0, 1]
// before weighting. Exposed for observability; not used for control flow.
type Components struct {
	AUC         float64 `json:"auc"`
	Work        float64 `json:"work"`
	PR          float64 `json:"pr"`
	Consistency float64 `json:"consistency"`
	Badges      float64 `json:"badges"`
}

// Result is the recomputed legacy score after one period.
type Result struct {
	Score      float64    `json:"score"`
	Level      int        `json:"level"`
	Components Components `json:"components"`
}

// #endregion components

// #region config
// Weights holds the fixed component weights. They sum to 1.
type Weights struct {
	AUC         float64
	Work        float64
	PR          float64
	Consistency float64
	Badges      float64
}

// Config holds score model parameters.
type Config struct {
	Weights     Weights
	DailyBase   float64 // score points granted for a fully weighted period
	WorkScale   float64 // load at which the work component reaches 0.5
	PRScale     float64 // PR events for a full PR component
	StreakScale float64 // streak days for a full consistency component
	BadgeScale  float64 // badges for a full badge component
	LevelBase   float64 // score for legacy level 1
	LevelAlpha  float64 // level curve exponent
}

// DefaultConfig returns the standard score model parameters.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			AUC:         0.4,
			Work:        0.25,
			PR:          0.15,
			Consistency: 0.1,
			Badges:      0.1,
		},
		DailyBase:   100,
		WorkScale:   25,
		PRScale:     3,
		StreakScale: 30,
		BadgeScale:  5,
		LevelBase:   1000,
		LevelAlpha:  4.5,
	}
}

// #endregion config
