package legacy

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/kibbyd/lifequest/internal/ability"
)

func abilityAt(value float64) ability.Ability {
	values := make(map[ability.StatKey]float64, len(ability.StatKeys))
	for _, key := range ability.StatKeys {
		values[key] = value
	}
	return ability.FromValues(values, nil)
}

func TestAddProgressFreshStat(t *testing.T) {
	result := AddProgress(AddProgressInput{
		Legacy:  Empty(),
		Ability: abilityAt(10),
		Stat:    ability.Power,
		Amount:  250,
	})

	got := result.Legacy.Stats[ability.Power]
	want := PerStat{Counter: 250, Level: 0, TotalEarned: 250}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if result.LevelsGained != 0 {
		t.Fatalf("expected no levels, got %d", result.LevelsGained)
	}
	if result.Ability.Stats[ability.Power].Value != 10 {
		t.Fatalf("ability must not change without a rollover, got %v", result.Ability.Stats[ability.Power].Value)
	}
}

func TestAddProgressRollover(t *testing.T) {
	state := Empty()
	state.Stats[ability.Grit] = PerStat{Counter: 950, Level: 1, TotalEarned: 1950}

	result := AddProgress(AddProgressInput{
		Legacy:  state,
		Ability: abilityAt(10),
		Stat:    ability.Grit,
		Amount:  75,
	})

	got := result.Legacy.Stats[ability.Grit]
	want := PerStat{Counter: 25, Level: 2, TotalEarned: 2025}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if result.LevelsGained != 1 {
		t.Fatalf("expected 1 level gained, got %d", result.LevelsGained)
	}
	if result.Ability.Stats[ability.Grit].Value != 11 {
		t.Fatalf("rollover should bump the matching ability stat, got %v", result.Ability.Stats[ability.Grit].Value)
	}
}

func TestAddProgressMultiLevelRollover(t *testing.T) {
	state := Empty()
	state.Stats[ability.Cognition] = PerStat{Counter: 900, Level: 0, TotalEarned: 900}

	result := AddProgress(AddProgressInput{
		Legacy:  state,
		Ability: abilityAt(10),
		Stat:    ability.Cognition,
		Amount:  2500,
	})

	if result.LevelsGained != 3 {
		t.Fatalf("expected 3 levels from a single grant, got %d", result.LevelsGained)
	}
	got := result.Legacy.Stats[ability.Cognition]
	want := PerStat{Counter: 400, Level: 3, TotalEarned: 3400}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if result.Ability.Stats[ability.Cognition].Value != 13 {
		t.Fatalf("expected ability bump of 3, got %v", result.Ability.Stats[ability.Cognition].Value)
	}
}

func TestAddProgressIsolation(t *testing.T) {
	state := Empty()
	state.Stats[ability.Power] = PerStat{Counter: 123, Level: 4, TotalEarned: 4123}
	state.Stats[ability.Social] = PerStat{Counter: 77, Level: 1, TotalEarned: 1077}

	result := AddProgress(AddProgressInput{
		Legacy:  state,
		Ability: abilityAt(10),
		Stat:    ability.Power,
		Amount:  50,
	})

	for _, key := range ability.StatKeys {
		if key == ability.Power {
			continue
		}
		if result.Legacy.Stats[key] != Normalize(state).Stats[key] {
			t.Fatalf("untargeted stat %s changed: %+v", key, result.Legacy.Stats[key])
		}
	}
}

func TestAddProgressNoOpPreservesAbilityIdentity(t *testing.T) {
	in := AddProgressInput{
		Legacy:  Empty(),
		Ability: abilityAt(10),
		Stat:    ability.Power,
		Amount:  0,
	}
	result := AddProgress(in)

	if result.LevelsGained != 0 {
		t.Fatalf("expected no levels, got %d", result.LevelsGained)
	}
	// The input ability comes back untouched, same underlying stats map.
	if reflect.ValueOf(result.Ability.Stats).Pointer() != reflect.ValueOf(in.Ability.Stats).Pointer() {
		t.Fatal("no-op grant must return the input ability unchanged")
	}
}

func TestAddProgressSanitizesAmount(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), -100, 0.9} {
		result := AddProgress(AddProgressInput{
			Legacy:  Empty(),
			Ability: abilityAt(10),
			Stat:    ability.Power,
			Amount:  amount,
		})
		if result.Legacy.Stats[ability.Power].TotalEarned != 0 {
			t.Fatalf("amount %v should be a no-op, earned %d", amount, result.Legacy.Stats[ability.Power].TotalEarned)
		}
	}

	// Fractional amounts floor.
	result := AddProgress(AddProgressInput{
		Legacy:  Empty(),
		Ability: abilityAt(10),
		Stat:    ability.Power,
		Amount:  10.9,
	})
	if result.Legacy.Stats[ability.Power].Counter != 10 {
		t.Fatalf("expected floored amount 10, got %d", result.Legacy.Stats[ability.Power].Counter)
	}
}

func TestAddProgressDerivedTotals(t *testing.T) {
	state := Empty()
	state.Stats[ability.Power] = PerStat{Counter: 0, Level: 7, TotalEarned: 7000}
	state.Stats[ability.Grit] = PerStat{Counter: 500, Level: 2, TotalEarned: 2500}

	result := AddProgress(AddProgressInput{
		Legacy:  state,
		Ability: abilityAt(10),
		Stat:    ability.Grit,
		Amount:  500,
	})

	if result.Legacy.TotalLevels != 10 {
		t.Fatalf("expected 10 total levels, got %d", result.Legacy.TotalLevels)
	}
	if result.Legacy.PerkPoints != 2 {
		t.Fatalf("expected perk points 10/5=2, got %d", result.Legacy.PerkPoints)
	}
	if result.Legacy.TotalEarned != 7000+2500+500 {
		t.Fatalf("expected total earned %d, got %d", 10000, result.Legacy.TotalEarned)
	}
}

func TestNormalizeRepairsCorruptState(t *testing.T) {
	state := State{
		Stats: map[ability.StatKey]PerStat{
			ability.Power: {Counter: 5000, Level: -3, TotalEarned: -10},
			// acc missing entirely
			ability.Grit: {Counter: -1, Level: 2, TotalEarned: 2100},
		},
		// Derived fields deliberately wrong; they must be recomputed.
		TotalLevels: 99,
		PerkPoints:  99,
	}

	got := Normalize(state)
	if got.Stats[ability.Power].Counter != RolloverThreshold-1 {
		t.Fatalf("counter should clamp to 999, got %d", got.Stats[ability.Power].Counter)
	}
	if got.Stats[ability.Power].Level != 0 {
		t.Fatalf("negative level should repair to 0, got %d", got.Stats[ability.Power].Level)
	}
	if got.Stats[ability.Accuracy] != (PerStat{}) {
		t.Fatalf("missing stat should be empty, got %+v", got.Stats[ability.Accuracy])
	}
	if got.Stats[ability.Grit].Counter != 0 {
		t.Fatalf("negative counter should repair to 0, got %d", got.Stats[ability.Grit].Counter)
	}
	if got.TotalLevels != 2 {
		t.Fatalf("derived totals must be recomputed, got %d", got.TotalLevels)
	}
	if got.PerkPoints != 0 {
		t.Fatalf("perk points must be recomputed, got %d", got.PerkPoints)
	}
}

func TestPerStatLoadRepair(t *testing.T) {
	// Storage round-trips can hand back floats, nulls, or wrong types.
	cases := []struct {
		name string
		blob string
		want PerStat
	}{
		{"floats", `{"counter": 250.7, "level": 1.9, "total_earned": 1250.5}`, PerStat{Counter: 250, Level: 1, TotalEarned: 1250}},
		{"missing total reconstructs", `{"counter": 250, "level": 2}`, PerStat{Counter: 250, Level: 2, TotalEarned: 2250}},
		{"wrong types", `{"counter": "oops", "level": null, "total_earned": {}}`, PerStat{Counter: 0, Level: 0, TotalEarned: 0}},
		{"negative", `{"counter": -5, "level": -2, "total_earned": -100}`, PerStat{Counter: 0, Level: 0, TotalEarned: 0}},
	}

	for _, tc := range cases {
		var got PerStat
		if err := json.Unmarshal([]byte(tc.blob), &got); err != nil {
			t.Fatalf("%s: load repair must not fail: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}
