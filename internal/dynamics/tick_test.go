package dynamics

import (
	"math"
	"testing"

	"github.com/kibbyd/lifequest/internal/ability"
	"github.com/kibbyd/lifequest/internal/score"
)

func uniformState(value float64) TickState {
	stats := make(map[ability.StatKey]ability.Snapshot, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		stats[key] = ability.Snapshot{Value: value, Confidence: 0.5}
	}
	return TickState{Stats: stats, Dynamics: Defaults()}
}

func runTicks(state TickState, input TickInput, n int) TickState {
	for i := 0; i < n; i++ {
		result := Tick(state, input)
		state = TickState{Stats: result.UpdatedStats, Dynamics: state.Dynamics, LegacyScore: state.LegacyScore}
	}
	return state
}

func TestTickDeterministic(t *testing.T) {
	state := uniformState(12)
	hint := ability.Power
	input := TickInput{
		TrainingLoad: map[ability.StatKey]float64{ability.Power: 5, ability.Cognition: 2},
		Tokens: []EvidenceToken{
			{ID: "e1", Source: SourceWearable, Quality: 0.9, StatHint: &hint},
			{ID: "e2", Source: SourceCalendar, Quality: 0.3},
		},
	}

	a := Tick(state, input)
	b := Tick(state, input)
	for _, key := range ability.StatKeys {
		if a.UpdatedStats[key] != b.UpdatedStats[key] {
			t.Fatalf("non-deterministic tick for %s: %+v != %+v", key, a.UpdatedStats[key], b.UpdatedStats[key])
		}
	}
	if a.Ability.Total != b.Ability.Total {
		t.Fatalf("non-deterministic ability: %v != %v", a.Ability.Total, b.Ability.Total)
	}
}

func TestTickDoesNotMutatePriorState(t *testing.T) {
	state := uniformState(12)
	input := TickInput{TrainingLoad: map[ability.StatKey]float64{ability.Power: 10}}
	_ = Tick(state, input)
	if state.Stats[ability.Power].Value != 12 || state.Stats[ability.Power].Confidence != 0.5 {
		t.Fatalf("tick mutated prior snapshot: %+v", state.Stats[ability.Power])
	}
}

func TestDecayMonotonicity(t *testing.T) {
	// Under identical zero-load conditions a higher stat must lose strictly
	// more absolute value than a lower one.
	const ticks = 10
	high := runTicks(uniformState(15), TickInput{}, ticks)
	low := runTicks(uniformState(11), TickInput{}, ticks)

	lossHigh := 15 - high.Stats[ability.Power].Value
	lossLow := 11 - low.Stats[ability.Power].Value
	if lossHigh <= lossLow {
		t.Fatalf("expected higher stat to decay more: high lost %v, low lost %v", lossHigh, lossLow)
	}
	if lossHigh <= 0 || lossLow <= 0 {
		t.Fatalf("expected both stats to decay under zero load: %v, %v", lossHigh, lossLow)
	}
}

func TestMaintenanceStability(t *testing.T) {
	start := 12.0
	params := Defaults()[ability.Power]
	maintenance := maintenanceThreshold(start, params)

	input := TickInput{TrainingLoad: map[ability.StatKey]float64{ability.Power: maintenance}}
	settled := runTicks(uniformState(start), input, 30)
	drift := math.Abs(settled.Stats[ability.Power].Value - start)
	if drift >= 0.6 {
		t.Fatalf("maintenance load should hold the stat near %v, drifted %v", start, drift)
	}

	surplus := TickInput{TrainingLoad: map[ability.StatKey]float64{ability.Power: maintenance * 1.5}}
	grown := runTicks(uniformState(start), surplus, 30)
	if grown.Stats[ability.Power].Value <= start {
		t.Fatalf("1.5x maintenance should grow the stat, got %v", grown.Stats[ability.Power].Value)
	}
}

func TestTickNoTokensBaselineQuality(t *testing.T) {
	agg := aggregateQuality(nil)
	if agg.average != baselineQuality {
		t.Fatalf("expected baseline quality %v, got %v", baselineQuality, agg.average)
	}
	if len(agg.byStat) != 0 {
		t.Fatalf("expected no per-stat quality, got %v", agg.byStat)
	}
}

func TestQualitySignalBlending(t *testing.T) {
	hint := ability.Cognition
	agg := aggregateQuality([]EvidenceToken{
		{Quality: 1.0, StatHint: &hint},
		{Quality: 0.2},
	})

	// Hinted stat blends 70% of its own average with 30% of overall.
	wantOverall := (1.0 + 0.2) / 2
	wantHinted := 0.7*1.0 + 0.3*wantOverall
	if got := qualitySignal(ability.Cognition, agg); math.Abs(got-wantHinted) > 1e-12 {
		t.Fatalf("expected hinted signal %v, got %v", wantHinted, got)
	}
	if got := qualitySignal(ability.Power, agg); math.Abs(got-wantOverall) > 1e-12 {
		t.Fatalf("expected fallback to overall %v, got %v", wantOverall, got)
	}
}

func TestHighQualityEvidenceGrowsFaster(t *testing.T) {
	state := uniformState(12)
	load := map[ability.StatKey]float64{ability.Power: 8}

	rich := Tick(state, TickInput{TrainingLoad: load, Tokens: []EvidenceToken{{Quality: 1.0}}})
	poor := Tick(state, TickInput{TrainingLoad: load, Tokens: []EvidenceToken{{Quality: 0.0}}})

	if rich.UpdatedStats[ability.Power].Value <= poor.UpdatedStats[ability.Power].Value {
		t.Fatalf("higher evidence quality should grow more: %v vs %v",
			rich.UpdatedStats[ability.Power].Value, poor.UpdatedStats[ability.Power].Value)
	}
}

func TestInjuryDampensDecay(t *testing.T) {
	state := uniformState(15)

	normal := Tick(state, TickInput{})
	injured := Tick(state, TickInput{InjuryOrIllness: true})

	if injured.UpdatedStats[ability.Power].Value <= normal.UpdatedStats[ability.Power].Value {
		t.Fatalf("injury flag should slow decay: injured %v, normal %v",
			injured.UpdatedStats[ability.Power].Value, normal.UpdatedStats[ability.Power].Value)
	}

	// Low-quality evidence gets the weaker 0.75 multiplier.
	lowQ := Tick(state, TickInput{InjuryOrIllness: true, Tokens: []EvidenceToken{{Quality: 0.1}}})
	highQ := Tick(state, TickInput{InjuryOrIllness: true, Tokens: []EvidenceToken{{Quality: 0.9}}})
	if highQ.UpdatedStats[ability.Power].Value <= lowQ.UpdatedStats[ability.Power].Value {
		t.Fatalf("quality > 0.4 should dampen decay harder: %v vs %v",
			highQ.UpdatedStats[ability.Power].Value, lowQ.UpdatedStats[ability.Power].Value)
	}
}

func TestConfidenceUpdate(t *testing.T) {
	state := uniformState(12)

	// Zero load, no tokens: confidence decays toward the baseline signal.
	idle := Tick(state, TickInput{})
	wantIdle := ability.ClampConfidence(0.5*confidenceDecay + baselineQuality*0.5)
	if math.Abs(idle.UpdatedStats[ability.Power].Confidence-wantIdle) > 1e-12 {
		t.Fatalf("expected idle confidence %v, got %v", wantIdle, idle.UpdatedStats[ability.Power].Confidence)
	}

	// Huge overload: the load bonus is capped at 0.1.
	overload := Tick(state, TickInput{TrainingLoad: map[ability.StatKey]float64{ability.Power: 10000}})
	if overload.UpdatedStats[ability.Power].Confidence > 1 {
		t.Fatalf("confidence must stay clamped to 1, got %v", overload.UpdatedStats[ability.Power].Confidence)
	}
}

func TestTickSanitizesBadInputs(t *testing.T) {
	state := uniformState(12)
	input := TickInput{
		TrainingLoad: map[ability.StatKey]float64{
			ability.Power: math.NaN(),
			ability.Grit:  -50,
		},
		Tokens: []EvidenceToken{{Quality: math.Inf(1)}},
	}
	got := Tick(state, input)
	for _, key := range ability.StatKeys {
		v := got.UpdatedStats[key].Value
		if math.IsNaN(v) || v < ability.MinStat || v > ability.MaxStat {
			t.Fatalf("stat %s out of range after bad input: %v", key, v)
		}
	}
}

func TestTickValueStaysAboveFloor(t *testing.T) {
	settled := runTicks(uniformState(9), TickInput{}, 500)
	params := Defaults()[ability.Power]
	if got := settled.Stats[ability.Power].Value; got < params.SFloor {
		t.Fatalf("value decayed below the stat floor: %v < %v", got, params.SFloor)
	}
}

func TestTickWithScoreThreadsHandOff(t *testing.T) {
	state := uniformState(12)
	state.LegacyScore = 500
	input := TickInput{TrainingLoad: map[ability.StatKey]float64{ability.Power: 6}}

	model := score.NewModel(score.DefaultConfig())
	result := TickWithScore(state, input, model)
	if result.Score == nil {
		t.Fatal("expected score hand-off to run")
	}
	if result.Score.Score <= 500 {
		t.Fatalf("score should build on the previous value, got %v", result.Score.Score)
	}

	// The plain tick never computes a score: the hand-off is a separate call.
	if plain := Tick(state, input); plain.Score != nil {
		t.Fatal("plain Tick must not compute a legacy score")
	}
}
