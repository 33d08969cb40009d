// Package odds serves conquest probability queries against a shared
// precomputed table.
package odds

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/louisbranch/conquest-engine/internal/combat/dice"
	"github.com/louisbranch/conquest-engine/internal/combat/table"
)

// ErrInvalidArmyCount indicates a negative army count in a probability
// query.
var ErrInvalidArmyCount = errors.New("army counts must not be negative")

// Service answers conquest probability queries.
//
// In-bounds queries are a single table read. Queries beyond the loaded
// table's bounds fall back to evaluating the conquest recurrence on
// demand, memoized for the duration of that query; the fallback is
// expected only for unusually large army counts.
//
// The table reference is swapped atomically by Replace, so concurrent
// readers always observe a complete table and never a partial one.
type Service struct {
	table atomic.Pointer[table.Table]
}

// New creates a service serving the provided table.
func New(t *table.Table) *Service {
	s := &Service{}
	s.table.Store(t)
	return s
}

// Table returns the currently published table.
func (s *Service) Table() *table.Table {
	return s.table.Load()
}

// Replace atomically publishes a new table. The previous table is left
// untouched for readers still holding it.
func (s *Service) Replace(t *table.Table) {
	s.table.Store(t)
}

// Probability returns the probability that an attacker with the given
// attacking armies eventually conquers a territory defended by the
// given armies, fighting to exhaustion.
func (s *Service) Probability(attacker, defender int) (float64, error) {
	if attacker < 0 || defender < 0 {
		return 0, ErrInvalidArmyCount
	}
	if attacker == 0 && defender > 0 {
		return 0.0, nil
	}
	if defender == 0 {
		return 1.0, nil
	}

	t := s.table.Load()
	if t != nil && t.Contains(attacker, defender) {
		return t.At(attacker, defender), nil
	}

	eval := &fallbackEval{
		table: t,
		memo:  make(map[pair]float64),
	}
	return eval.probability(attacker, defender)
}

// InTable reports whether a query would be served from the published
// table rather than the fallback path.
func (s *Service) InTable(attacker, defender int) bool {
	t := s.table.Load()
	return t != nil && t.Contains(attacker, defender)
}

type pair struct {
	attacker int
	defender int
}

// fallbackEval evaluates the conquest recurrence top-down for cells the
// published table does not cover. Results are memoized per query, and
// the recursion reads table cells wherever it re-enters bounds, so the
// uncovered margin is all that is ever recomputed.
type fallbackEval struct {
	table *table.Table
	memo  map[pair]float64
}

func (e *fallbackEval) probability(attacker, defender int) (float64, error) {
	if attacker <= 0 {
		if defender <= 0 {
			return 1.0, nil
		}
		return 0.0, nil
	}
	if defender <= 0 {
		return 1.0, nil
	}
	if e.table != nil && e.table.Contains(attacker, defender) {
		return e.table.At(attacker, defender), nil
	}
	key := pair{attacker: attacker, defender: defender}
	if value, ok := e.memo[key]; ok {
		return value, nil
	}

	dist, err := dice.DistributionFor(dice.AttackerDiceFor(attacker), dice.DefenderDiceFor(defender))
	if err != nil {
		return 0, fmt.Errorf("distribution for (%d, %d): %w", attacker, defender, err)
	}
	value := 0.0
	for _, op := range dist.Outcomes {
		sub, err := e.probability(attacker-op.Outcome.AttackerLosses, defender-op.Outcome.DefenderLosses)
		if err != nil {
			return 0, err
		}
		value += op.Probability * sub
	}

	e.memo[key] = value
	return value, nil
}
