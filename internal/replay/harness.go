// Package replay re-runs recorded day sequences through the full
// progression pipeline in memory. Because every pipeline stage is pure,
// replaying the same fixture twice must produce identical final profiles;
// that property is what makes committed history auditable.
package replay

import (
	"time"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/eval"
	"github.com/kibbyd/lifequest/internal/profile"
	"github.com/kibbyd/lifequest/internal/progression"
)

// #region types

// Grant is one recorded effort grant.
type Grant struct {
	Stat   ability.StatKey
	Amount float64
}

// Day is one recorded day: zero or more grants, then an optional dynamics
// tick at end of day.
type Day struct {
	Date   string // YYYY-MM-DD
	Grants []Grant
	Tick   *dynamics.TickInput
}

// StepResult captures the outcome of replaying one pipeline step.
type StepResult struct {
	Date   string
	Kind   string // "grant" | "tick"
	Action string // "commit" | "eval_rollback" | "no_op"
	Reason string

	LevelsGained int
	Milestones   []int
	AbilityLevel int
	Eval         *eval.Result
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps    int
	Commits       int
	EvalRollbacks int
	NoOps         int
	LevelsGained  int
	FinalProfile  profile.Profile
}

// #endregion types

// #region replay

// Replay runs the recorded days against the start profile: each grant and
// tick becomes a candidate transition, validated by the invariant harness
// before it is allowed to replace the current profile. A failed validation
// rolls the step back and continues, mirroring the host commit path.
// scorer may be nil; ticks then skip the legacy score recomputation.
func Replay(start profile.Profile, days []Day, scorer dynamics.Scorer) ([]StepResult, profile.Profile) {
	// Normalize against the first replay day so any migration backfill is
	// stamped deterministically, never with the wall clock.
	firstDay := time.Time{}
	for _, day := range days {
		if t := dayTime(day.Date); !t.IsZero() {
			firstDay = t
			break
		}
	}
	current := profile.Normalize(start, firstDay)
	var results []StepResult

	for _, day := range days {
		now := dayTime(day.Date)
		if now.IsZero() {
			results = append(results, StepResult{
				Date:   day.Date,
				Kind:   "grant",
				Action: "no_op",
				Reason: "unparseable date",
			})
			continue
		}

		for _, grant := range day.Grants {
			outcome := progression.Grant(progression.GrantInput{
				Legacy:   current.Legacy,
				Ability:  current.Ability(),
				Progress: current.Progress,
				Wallet:   current.Wallet,
				Perks:    current.Perks,
				Activity: current.Activity,
				Stat:     grant.Stat,
				Amount:   grant.Amount,
				Now:      now,
			})

			next := current
			next.Stats = outcome.Ability.Stats
			next.Legacy = outcome.Legacy
			next.Progress = outcome.Progress
			next.Wallet = outcome.Wallet
			next.Perks = outcome.Perks
			next.Activity = outcome.Activity

			results = append(results, commitStep(&current, next, StepResult{
				Date:         day.Date,
				Kind:         "grant",
				LevelsGained: outcome.LevelsGained,
				Milestones:   outcome.MilestonesTriggered,
			}))
		}

		if day.Tick != nil {
			outcome := progression.TickDay(progression.TickDayInput{
				Stats:       current.Stats,
				Dynamics:    current.Dynamics,
				LegacyScore: current.LegacyScore,
				Input:       *day.Tick,
				Perks:       current.Perks,
				Wallet:      current.Wallet,
				Now:         now,
				Scorer:      scorer,
			})

			next := current
			next.Stats = outcome.Tick.UpdatedStats
			next.Perks = outcome.Perks
			next.Wallet = outcome.Wallet
			if outcome.Tick.Score != nil {
				next.LegacyScore = outcome.Tick.Score.Score
			}

			results = append(results, commitStep(&current, next, StepResult{
				Date: day.Date,
				Kind: "tick",
			}))
		}
	}

	return results, current
}

// commitStep validates the candidate profile and either advances current or
// leaves it untouched.
func commitStep(current *profile.Profile, next profile.Profile, step StepResult) StepResult {
	result := eval.Run(next, current)
	step.Eval = &result

	if !result.Passed {
		step.Action = "eval_rollback"
		step.Reason = result.Reason
		step.AbilityLevel = current.Ability().Level
		return step
	}

	*current = next
	step.Action = "commit"
	step.Reason = result.Reason
	step.AbilityLevel = next.Ability().Level
	return step
}

func dayTime(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult, final profile.Profile) Summary {
	s := Summary{
		TotalSteps:   len(results),
		FinalProfile: final,
	}
	for _, r := range results {
		switch r.Action {
		case "commit":
			s.Commits++
		case "eval_rollback":
			s.EvalRollbacks++
		case "no_op":
			s.NoOps++
		}
		s.LevelsGained += r.LevelsGained
	}
	return s
}

// #endregion replay
