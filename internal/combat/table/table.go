// Package table builds, stores, and serializes conquest probability
// tables.
//
// A table cell (a, d) holds the exact probability that an attacker with
// a attacking armies eventually conquers a territory defended by d
// armies, fighting every round to exhaustion. Tables are immutable once
// built and safe for concurrent readers.
package table

import "errors"

// ErrInvalidTableBounds indicates non-positive precomputation bounds.
var ErrInvalidTableBounds = errors.New("table bounds must be positive")

// ErrTableTooLarge indicates the requested bounds exceed the configured
// cell limit. The build is refused rather than silently truncated.
var ErrTableTooLarge = errors.New("table bounds exceed the configured cell limit")

// Table is a dense, immutable conquest probability table covering
// attacker armies 0..MaxAttack and defender armies 0..MaxDefend.
type Table struct {
	maxAttack int
	maxDefend int
	// cells is row-major: cells[a*(maxDefend+1)+d].
	cells []float64
}

// MaxAttack returns the largest attacker army count the table covers.
func (t *Table) MaxAttack() int { return t.maxAttack }

// MaxDefend returns the largest defender army count the table covers.
func (t *Table) MaxDefend() int { return t.maxDefend }

// Contains reports whether (attacker, defender) is inside the table.
func (t *Table) Contains(attacker, defender int) bool {
	return attacker >= 0 && attacker <= t.maxAttack && defender >= 0 && defender <= t.maxDefend
}

// At returns the conquest probability for the given army counts. The
// pair must be inside the table; use Contains first.
func (t *Table) At(attacker, defender int) float64 {
	return t.cells[attacker*(t.maxDefend+1)+defender]
}

// newTable allocates a table with the boundary rows filled in:
// an attacker with nothing left cannot conquer, and a defender with
// nothing left is already conquered.
func newTable(maxAttack, maxDefend int) *Table {
	t := &Table{
		maxAttack: maxAttack,
		maxDefend: maxDefend,
		cells:     make([]float64, (maxAttack+1)*(maxDefend+1)),
	}
	for attacker := 0; attacker <= maxAttack; attacker++ {
		t.cells[attacker*(maxDefend+1)] = 1.0
	}
	// The rest of row a=0 stays 0: with nothing left to throw the
	// attacker can never conquer a defended territory.
	return t
}
