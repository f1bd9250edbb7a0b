package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kibbyd/lifequest/internal/replay"
	"github.com/kibbyd/lifequest/internal/score"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	withScore := flag.Bool("score", false, "recompute the legacy score during ticks")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--score]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *withScore))
}

// #endregion main

// #region run

func run(fixturePath string, withScore bool) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	var results []replay.StepResult
	final := f.Start
	if withScore {
		results, final = replay.Replay(f.Start, f.ToDays(), score.NewModel(score.DefaultConfig()))
	} else {
		results, final = replay.Replay(f.Start, f.ToDays(), nil)
	}

	code := printComparison(results, f.Expected)

	summary := replay.Summarize(results, final)
	fmt.Printf("\nSummary: %d steps, %d commits, %d eval rollbacks, %d no-ops\n",
		summary.TotalSteps, summary.Commits, summary.EvalRollbacks, summary.NoOps)
	fmt.Printf("Levels gained: %d | final ability %d/100\n",
		summary.LevelsGained, final.Ability().Level)
	return code
}

// #endregion run

// #region output

// printComparison prints each replayed step against the fixture's expected
// outcome when one is present. Returns a non-zero exit code on divergence.
func printComparison(results []replay.StepResult, expected []replay.FixtureOutcome) int {
	byKey := make(map[string]string, len(expected))
	for _, e := range expected {
		byKey[e.Date+"/"+e.Kind] = e.Action
	}

	fmt.Printf("%-12s| %-6s| %-14s| %-14s| %s\n", "Date", "Kind", "Expected", "Replayed", "Match")
	fmt.Printf("%-12s+%-7s+%-15s+%-15s+%s\n",
		"------------", "-------", "---------------", "---------------", "------")

	diverged := 0
	for _, step := range results {
		exp, ok := byKey[step.Date+"/"+step.Kind]
		match := "—"
		if ok {
			match = "OK"
			if exp != step.Action {
				match = "DIFF"
				diverged++
			}
		} else {
			exp = "—"
		}
		fmt.Printf("%-12s| %-6s| %-14s| %-14s| %s\n", step.Date, step.Kind, exp, step.Action, match)
	}

	if diverged > 0 {
		return 1
	}
	return 0
}

// #endregion output
