package perks

import (
	"testing"

	"github.com/kibbyd/lifequest/internal/ability"
)

var ironGrip = Definition{
	ID:   "iron-grip",
	Name: "Iron Grip",
	Gates: map[ability.StatKey]float64{
		ability.Power: 12,
		ability.Grit:  10,
	},
}

func statsWith(pwr, grt float64) map[ability.StatKey]float64 {
	return map[ability.StatKey]float64{
		ability.Power: pwr,
		ability.Grit:  grt,
	}
}

func TestGatesMet(t *testing.T) {
	if !GatesMet(ironGrip, statsWith(12, 10)) {
		t.Fatal("thresholds at exactly the stat value should pass")
	}
	if GatesMet(ironGrip, statsWith(11.9, 10)) {
		t.Fatal("one unmet gate should fail")
	}
	// Stats with no defined gate are vacuously satisfied.
	if !GatesMet(Definition{ID: "free"}, nil) {
		t.Fatal("a perk with no gates is always met")
	}
}

func TestAssignSpendsOnePoint(t *testing.T) {
	result := Assign(ironGrip, nil, 2, statsWith(15, 15))
	if !result.OK {
		t.Fatal("assign should succeed with points available")
	}
	if result.PerkPointsLeft != 1 {
		t.Fatalf("expected 1 point left, got %d", result.PerkPointsLeft)
	}
	if len(result.State) != 1 || !result.State[0].Owned {
		t.Fatalf("expected one owned entry, got %+v", result.State)
	}
	// Gates already met: active immediately on acquisition.
	if !result.State[0].Active {
		t.Fatal("qualified perk should activate on assignment")
	}
}

func TestAssignBelowGatesStaysInactive(t *testing.T) {
	result := Assign(ironGrip, nil, 1, statsWith(5, 5))
	if !result.OK {
		t.Fatal("assignment does not require gates, only points")
	}
	if result.State[0].Active {
		t.Fatal("unqualified perk must start inactive")
	}
}

func TestAssignAlreadyOwnedIsNoOp(t *testing.T) {
	first := Assign(ironGrip, nil, 2, statsWith(15, 15))
	second := Assign(ironGrip, first.State, first.PerkPointsLeft, statsWith(15, 15))
	if !second.OK {
		t.Fatal("re-assigning an owned perk is a no-op success")
	}
	if second.PerkPointsLeft != first.PerkPointsLeft {
		t.Fatalf("no-op must not spend points: %d != %d", second.PerkPointsLeft, first.PerkPointsLeft)
	}
	if len(second.State) != 1 {
		t.Fatalf("no duplicate entries expected, got %d", len(second.State))
	}
}

func TestAssignWithoutPointsFails(t *testing.T) {
	result := Assign(ironGrip, nil, 0, statsWith(15, 15))
	if result.OK {
		t.Fatal("assignment must fail with an empty balance")
	}
	if len(result.State) != 0 {
		t.Fatalf("failed assignment must not change state, got %+v", result.State)
	}
}

func TestToggleCannotForcePastGate(t *testing.T) {
	owned := Assign(ironGrip, nil, 1, statsWith(5, 5)).State

	toggled := Toggle("iron-grip", true, owned, statsWith(5, 5))
	if toggled[0].Active {
		t.Fatal("toggle must not activate past an unmet gate")
	}

	toggled = Toggle("iron-grip", true, owned, statsWith(15, 15))
	if !toggled[0].Active {
		t.Fatal("toggle should activate once gates are met")
	}

	toggled = Toggle("iron-grip", false, toggled, statsWith(15, 15))
	if toggled[0].Active {
		t.Fatal("toggle off should always deactivate")
	}
}

func TestToggleIgnoresUnowned(t *testing.T) {
	state := []PerkState{{Perk: ironGrip, Owned: false, Active: false}}
	toggled := Toggle("iron-grip", true, state, statsWith(15, 15))
	if toggled[0].Active {
		t.Fatal("unowned perks cannot be toggled")
	}
}

func TestReconcileFollowsStatChanges(t *testing.T) {
	state := Assign(ironGrip, nil, 1, statsWith(15, 15)).State
	if !state[0].Active {
		t.Fatal("precondition: perk active")
	}

	// Stats decay below the gate: perk deactivates.
	state = Reconcile(state, statsWith(8, 8))
	if state[0].Active {
		t.Fatal("reconcile should deactivate a lapsed perk")
	}

	// Stats recover: perk reactivates.
	state = Reconcile(state, statsWith(13, 11))
	if !state[0].Active {
		t.Fatal("reconcile should reactivate a qualified perk")
	}
}

func TestReconcileRepairsActiveWithoutOwnership(t *testing.T) {
	state := []PerkState{{Perk: ironGrip, Owned: false, Active: true}}
	state = Reconcile(state, statsWith(20, 20))
	if state[0].Active {
		t.Fatal("an unowned perk can never be active")
	}
}

func TestRepairKeepsToggledOffInactive(t *testing.T) {
	state := []PerkState{{Perk: ironGrip, Owned: true, Active: false}}
	state = Repair(state, statsWith(15, 15))
	if state[0].Active {
		t.Fatal("repair must not re-activate a deliberately inactive perk")
	}
}

func TestRepairClearsInvalidActivation(t *testing.T) {
	state := []PerkState{
		{Perk: ironGrip, Owned: false, Active: true},
		{Perk: ironGrip, Owned: true, Active: true},
	}
	state = Repair(state, statsWith(8, 8))
	if state[0].Active {
		t.Fatal("active without ownership must be cleared")
	}
	if state[1].Active {
		t.Fatal("active past a lapsed gate must be cleared")
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	state := []PerkState{{Perk: ironGrip, Owned: true, Active: true}}
	_ = Reconcile(state, statsWith(1, 1))
	if !state[0].Active {
		t.Fatal("Reconcile mutated its input slice")
	}
}
