package round

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/louisbranch/conquest-engine/internal/combat/dice"
)

// TestResolveIsDeterministic ensures the same seed and armies always
// produce the same rolls and losses.
func TestResolveIsDeterministic(t *testing.T) {
	request := Request{AttackerArmies: 5, DefenderArmies: 3, Seed: 42}

	first, err := Resolve(request)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	second, err := Resolve(request)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(first.AttackerRolls) != len(second.AttackerRolls) || len(first.DefenderRolls) != len(second.DefenderRolls) {
		t.Fatalf("roll counts differ between identical requests: %+v vs %+v", first, second)
	}
	for i := range first.AttackerRolls {
		if first.AttackerRolls[i] != second.AttackerRolls[i] {
			t.Fatalf("attacker rolls differ: %v vs %v", first.AttackerRolls, second.AttackerRolls)
		}
	}
	for i := range first.DefenderRolls {
		if first.DefenderRolls[i] != second.DefenderRolls[i] {
			t.Fatalf("defender rolls differ: %v vs %v", first.DefenderRolls, second.DefenderRolls)
		}
	}
	if first.AttackerLosses != second.AttackerLosses || first.DefenderLosses != second.DefenderLosses {
		t.Fatalf("losses differ: %+v vs %+v", first, second)
	}
}

// TestResolveMatchesSeededGenerator pins the draw order: attacker dice
// first, then defender dice, from a rand.Rand seeded with Seed.
func TestResolveMatchesSeededGenerator(t *testing.T) {
	seed := int64(7)
	rng := rand.New(rand.NewSource(seed))
	wantAttacker := []int{rng.Intn(6) + 1, rng.Intn(6) + 1, rng.Intn(6) + 1}
	wantDefender := []int{rng.Intn(6) + 1, rng.Intn(6) + 1}

	result, err := Resolve(Request{AttackerArmies: 8, DefenderArmies: 4, Seed: seed})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	for i := range wantAttacker {
		if result.AttackerRolls[i] != wantAttacker[i] {
			t.Fatalf("attacker rolls = %v, want %v", result.AttackerRolls, wantAttacker)
		}
	}
	for i := range wantDefender {
		if result.DefenderRolls[i] != wantDefender[i] {
			t.Fatalf("defender rolls = %v, want %v", result.DefenderRolls, wantDefender)
		}
	}
}

// TestResolveDiceCounts checks dice derivation from army counts.
func TestResolveDiceCounts(t *testing.T) {
	tcs := []struct {
		attackerArmies int
		defenderArmies int
		wantAttacker   int
		wantDefender   int
	}{
		{attackerArmies: 1, defenderArmies: 1, wantAttacker: 1, wantDefender: 1},
		{attackerArmies: 2, defenderArmies: 2, wantAttacker: 2, wantDefender: 2},
		{attackerArmies: 3, defenderArmies: 5, wantAttacker: 3, wantDefender: 2},
		{attackerArmies: 12, defenderArmies: 1, wantAttacker: 3, wantDefender: 1},
	}

	for _, tc := range tcs {
		result, err := Resolve(Request{
			AttackerArmies: tc.attackerArmies,
			DefenderArmies: tc.defenderArmies,
			Seed:           1,
		})
		if err != nil {
			t.Fatalf("Resolve(%d, %d) returned error: %v", tc.attackerArmies, tc.defenderArmies, err)
		}
		if len(result.AttackerRolls) != tc.wantAttacker {
			t.Fatalf("Resolve(%d, %d) rolled %d attacker dice, want %d", tc.attackerArmies, tc.defenderArmies, len(result.AttackerRolls), tc.wantAttacker)
		}
		if len(result.DefenderRolls) != tc.wantDefender {
			t.Fatalf("Resolve(%d, %d) rolled %d defender dice, want %d", tc.attackerArmies, tc.defenderArmies, len(result.DefenderRolls), tc.wantDefender)
		}
	}
}

// TestResolveLossesMatchComparisonRule verifies the resolver applies the
// shared sort-and-compare rule to whatever it rolled.
func TestResolveLossesMatchComparisonRule(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		result, err := Resolve(Request{AttackerArmies: 4, DefenderArmies: 3, Seed: seed})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		want := dice.CompareRolls(result.AttackerRolls, result.DefenderRolls)
		if result.AttackerLosses != want.AttackerLosses || result.DefenderLosses != want.DefenderLosses {
			t.Fatalf("seed %d: losses (%d, %d) do not match comparison rule (%d, %d)", seed, result.AttackerLosses, result.DefenderLosses, want.AttackerLosses, want.DefenderLosses)
		}
		compared := len(result.AttackerRolls)
		if len(result.DefenderRolls) < compared {
			compared = len(result.DefenderRolls)
		}
		if result.AttackerLosses+result.DefenderLosses != compared {
			t.Fatalf("seed %d: losses sum %d, want %d", seed, result.AttackerLosses+result.DefenderLosses, compared)
		}
		for _, roll := range append(result.AttackerRolls, result.DefenderRolls...) {
			if roll < 1 || roll > dice.DieSides {
				t.Fatalf("seed %d: roll %d outside 1-%d", seed, roll, dice.DieSides)
			}
		}
	}
}

func TestResolveRejectsInvalidArmies(t *testing.T) {
	tcs := []Request{
		{AttackerArmies: 0, DefenderArmies: 1},
		{AttackerArmies: 1, DefenderArmies: 0},
		{AttackerArmies: -1, DefenderArmies: 2},
		{AttackerArmies: 2, DefenderArmies: -3},
	}

	for _, tc := range tcs {
		if _, err := Resolve(tc); !errors.Is(err, ErrInvalidArmyCount) {
			t.Fatalf("Resolve(%+v) error = %v, want %v", tc, err, ErrInvalidArmyCount)
		}
	}
}
