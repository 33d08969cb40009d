// Package dice implements the exact outcome model for one round of
// territorial combat.
//
// A round compares up to three attacker dice against up to two defender
// dice. The six legal dice-count pairings each have a fixed probability
// distribution over (attacker losses, defender losses), computed once by
// enumerating every equally likely combination of die faces. Nothing in
// this package samples randomness; the distributions are exact counts
// divided by the total number of combinations.
package dice

import (
	"errors"
	"sort"
)

// DieSides is the number of faces on a combat die.
const DieSides = 6

// MaxAttackerDice is the most dice an attacker may roll in one round.
const MaxAttackerDice = 3

// MaxDefenderDice is the most dice a defender may roll in one round.
const MaxDefenderDice = 2

// ErrInvalidDiceCount indicates a dice-count pair outside the six legal
// combinations.
var ErrInvalidDiceCount = errors.New("dice counts must be 1-3 attacker and 1-2 defender")

// Outcome is the army losses both sides suffer in a single round.
type Outcome struct {
	AttackerLosses int
	DefenderLosses int
}

// OutcomeProbability couples a round outcome with its exact probability.
type OutcomeProbability struct {
	Outcome     Outcome
	Probability float64
}

// Distribution is the exact probability distribution over round outcomes
// for a fixed dice-count pair. Outcomes are ordered by increasing
// attacker losses and their probabilities sum to 1.
type Distribution struct {
	NAttack  int
	NDefend  int
	Outcomes []OutcomeProbability
}

// AttackerDiceFor returns how many dice an attacker with the given
// attacking armies rolls.
func AttackerDiceFor(armies int) int {
	if armies > MaxAttackerDice {
		return MaxAttackerDice
	}
	return armies
}

// DefenderDiceFor returns how many dice a defender with the given armies
// rolls.
func DefenderDiceFor(armies int) int {
	if armies > MaxDefenderDice {
		return MaxDefenderDice
	}
	return armies
}

// CompareRolls applies the combat comparison rule to two sets of rolled
// die faces: both sets are ranked highest first, the top min(len) pairs
// are compared positionally, and each tie is won by the defender.
//
// The rule lives here, and only here, so that the live round resolver
// and the exact enumeration below can never disagree.
func CompareRolls(attacker, defender []int) Outcome {
	attackerSorted := sortedDescending(attacker)
	defenderSorted := sortedDescending(defender)

	compared := len(attackerSorted)
	if len(defenderSorted) < compared {
		compared = len(defenderSorted)
	}

	outcome := Outcome{}
	for i := 0; i < compared; i++ {
		if attackerSorted[i] > defenderSorted[i] {
			outcome.DefenderLosses++
		} else {
			outcome.AttackerLosses++
		}
	}
	return outcome
}

// DistributionFor returns the exact outcome distribution for the given
// dice-count pair. The six legal distributions are built once at package
// load and shared read-only thereafter.
func DistributionFor(nAttack, nDefend int) (Distribution, error) {
	if nAttack < 1 || nAttack > MaxAttackerDice || nDefend < 1 || nDefend > MaxDefenderDice {
		return Distribution{}, ErrInvalidDiceCount
	}
	return distributions[nAttack-1][nDefend-1], nil
}

var distributions = buildDistributions()

func buildDistributions() [MaxAttackerDice][MaxDefenderDice]Distribution {
	var built [MaxAttackerDice][MaxDefenderDice]Distribution
	for nAttack := 1; nAttack <= MaxAttackerDice; nAttack++ {
		for nDefend := 1; nDefend <= MaxDefenderDice; nDefend++ {
			built[nAttack-1][nDefend-1] = enumerate(nAttack, nDefend)
		}
	}
	return built
}

// enumerate walks every combination of nAttack+nDefend die faces and
// tallies the round outcome of each, producing exact probabilities.
func enumerate(nAttack, nDefend int) Distribution {
	compared := nAttack
	if nDefend < compared {
		compared = nDefend
	}

	// Attacker losses range 0..compared and attacker+defender losses
	// always equal the number of compared dice.
	counts := make([]int, compared+1)
	total := 0

	faces := make([]int, nAttack+nDefend)
	for i := range faces {
		faces[i] = 1
	}
	for {
		outcome := CompareRolls(faces[:nAttack], faces[nAttack:])
		counts[outcome.AttackerLosses]++
		total++

		// Odometer-style advance through the 6^(nAttack+nDefend) space.
		pos := len(faces) - 1
		for pos >= 0 {
			faces[pos]++
			if faces[pos] <= DieSides {
				break
			}
			faces[pos] = 1
			pos--
		}
		if pos < 0 {
			break
		}
	}

	outcomes := make([]OutcomeProbability, 0, compared+1)
	for attackerLosses, count := range counts {
		outcomes = append(outcomes, OutcomeProbability{
			Outcome: Outcome{
				AttackerLosses: attackerLosses,
				DefenderLosses: compared - attackerLosses,
			},
			Probability: float64(count) / float64(total),
		})
	}

	return Distribution{
		NAttack:  nAttack,
		NDefend:  nDefend,
		Outcomes: outcomes,
	}
}

func sortedDescending(values []int) []int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	return sorted
}
