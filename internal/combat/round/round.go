// Package round resolves one live round of territorial combat.
package round

import (
	"errors"
	"math/rand"

	"github.com/louisbranch/conquest-engine/internal/combat/dice"
)

// ErrInvalidArmyCount indicates a round was requested without at least
// one army on each side.
var ErrInvalidArmyCount = errors.New("attacker and defender must each have at least one army")

// Request describes a single combat round to resolve.
//
// AttackerArmies counts armies able to attack; the caller has already
// set aside the army required to hold the attacking territory.
type Request struct {
	AttackerArmies int
	DefenderArmies int
	Seed           int64
}

// Result captures the rolled dice and the losses for one round.
type Result struct {
	AttackerRolls  []int
	DefenderRolls  []int
	AttackerLosses int
	DefenderLosses int
}

// Resolve fights a single round.
//
// # Determinism
//
// Resolve is deterministic with respect to the Seed field on Request:
// the attacker's dice are drawn first, then the defender's, from a
// generator seeded with Seed. Given the same Seed and army counts,
// Resolve always produces the same Result.
//
// Resolve never consults precomputed probability tables and mutates no
// shared state; concurrent calls for different territories are safe.
// The caller owns the attack loop: one call resolves one round, and the
// caller re-supplies updated army counts to continue an engagement.
func Resolve(request Request) (Result, error) {
	if request.AttackerArmies < 1 || request.DefenderArmies < 1 {
		return Result{}, ErrInvalidArmyCount
	}

	nAttack := dice.AttackerDiceFor(request.AttackerArmies)
	nDefend := dice.DefenderDiceFor(request.DefenderArmies)

	rng := rand.New(rand.NewSource(request.Seed))
	attackerRolls := rollDice(rng, nAttack)
	defenderRolls := rollDice(rng, nDefend)

	outcome := dice.CompareRolls(attackerRolls, defenderRolls)

	return Result{
		AttackerRolls:  attackerRolls,
		DefenderRolls:  defenderRolls,
		AttackerLosses: outcome.AttackerLosses,
		DefenderLosses: outcome.DefenderLosses,
	}, nil
}

func rollDice(rng *rand.Rand, count int) []int {
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = rng.Intn(dice.DieSides) + 1
	}
	return rolls
}
