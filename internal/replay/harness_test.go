package replay

import (
	"encoding/json"
	"testing"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/dynamics"
	"github.com/kibbyd/lifequest/internal/profile"
)

func trainingWeek() []Day {
	tick := func(load float64) *dynamics.TickInput {
		return &dynamics.TickInput{
			TrainingLoad: map[ability.StatKey]float64{ability.Power: load},
			Tokens: []dynamics.EvidenceToken{
				{ID: "tok", Quality: 0.8},
			},
		}
	}
	return []Day{
		{Date: "2025-03-01", Grants: []Grant{{Stat: ability.Power, Amount: 600}}, Tick: tick(4)},
		{Date: "2025-03-02", Tick: tick(0)},
		{Date: "2025-03-03", Grants: []Grant{{Stat: ability.Power, Amount: 600}}, Tick: tick(5)},
		{Date: "2025-03-04", Grants: []Grant{{Stat: ability.Cognition, Amount: 75}}},
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	_, finalA := Replay(profile.Empty(), trainingWeek(), nil)
	_, finalB := Replay(profile.Empty(), trainingWeek(), nil)

	a, err := json.Marshal(finalA)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(finalB)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("replay must be bit-identical:\n%s\n%s", a, b)
	}
}

func TestReplayCommitsGrantsAndTicks(t *testing.T) {
	results, final := Replay(profile.Empty(), trainingWeek(), nil)

	// 3 grants + 3 ticks.
	if len(results) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(results))
	}
	for _, step := range results {
		if step.Action != "commit" {
			t.Fatalf("step %s/%s should commit, got %s (%s)", step.Date, step.Kind, step.Action, step.Reason)
		}
	}

	summary := Summarize(results, final)
	if summary.Commits != 6 || summary.EvalRollbacks != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	// 600+600 power points roll one legacy level on day 3.
	if summary.LevelsGained != 1 {
		t.Fatalf("expected 1 rolled level across the week, got %d", summary.LevelsGained)
	}
	if final.Legacy.Stats[ability.Power].Level != 1 {
		t.Fatalf("expected power legacy level 1, got %+v", final.Legacy.Stats[ability.Power])
	}
	if len(final.Activity.Entries) != 3 {
		t.Fatalf("expected 3 logged activity days, got %d", len(final.Activity.Entries))
	}
}

func TestReplayBadDateIsNoOp(t *testing.T) {
	days := []Day{{Date: "not-a-date", Grants: []Grant{{Stat: ability.Power, Amount: 100}}}}

	results, final := Replay(profile.Empty(), days, nil)
	if len(results) != 1 || results[0].Action != "no_op" {
		t.Fatalf("unparseable date should be a no_op, got %+v", results)
	}
	if final.Legacy.TotalEarned != 0 {
		t.Fatalf("no_op day must not change the profile, got %+v", final.Legacy)
	}
}

func TestReplayIdleTickDecays(t *testing.T) {
	start := profile.Empty()
	snap := start.Stats[ability.Power]
	snap.Value = 14
	start.Stats[ability.Power] = snap

	days := []Day{{Date: "2025-03-01", Tick: &dynamics.TickInput{}}}
	_, final := Replay(start, days, nil)

	if final.Stats[ability.Power].Value >= 14 {
		t.Fatalf("idle day should decay power, got %v", final.Stats[ability.Power].Value)
	}
}

func TestSummarizeCounts(t *testing.T) {
	results := []StepResult{
		{Action: "commit", LevelsGained: 2},
		{Action: "commit"},
		{Action: "eval_rollback"},
		{Action: "no_op"},
	}
	summary := Summarize(results, profile.Empty())
	if summary.TotalSteps != 4 || summary.Commits != 2 || summary.EvalRollbacks != 1 || summary.NoOps != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.LevelsGained != 2 {
		t.Fatalf("expected 2 levels, got %d", summary.LevelsGained)
	}
}
