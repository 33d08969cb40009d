package table

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/conquest-engine/internal/combat/dice"
)

// BuildRequest describes one precomputation run.
type BuildRequest struct {
	MaxAttackerArmies int
	MaxDefenderArmies int
	// Workers caps the per-wave worker count; 0 means NumCPU.
	Workers int
	// MaxCells refuses builds whose cell count exceeds it; 0 means no
	// limit.
	MaxCells int
}

// Build computes the full conquest table up to the requested bounds.
//
// The recurrence for a cell only reads cells whose army sum a+d is
// strictly smaller, because every round removes at least one army. The
// table is therefore filled as an anti-diagonal wavefront: all cells
// with a+d == k are computed before any cell with a+d == k+1. Cells on
// one anti-diagonal touch disjoint memory and are independent, so each
// wave is split into contiguous chunks across workers; the errgroup
// Wait between waves is the only synchronization. Row-major or
// column-major parallel fills would race on unfinished dependencies.
//
// Cancellation is coarse: when ctx is done the whole build is
// abandoned, since a partially filled wave is not usable.
func Build(ctx context.Context, request BuildRequest) (*Table, error) {
	if request.MaxAttackerArmies <= 0 || request.MaxDefenderArmies <= 0 {
		return nil, ErrInvalidTableBounds
	}
	cellCount := (request.MaxAttackerArmies + 1) * (request.MaxDefenderArmies + 1)
	if request.MaxCells > 0 && cellCount > request.MaxCells {
		return nil, fmt.Errorf("%w: %d cells requested, limit %d", ErrTableTooLarge, cellCount, request.MaxCells)
	}

	workers := request.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	t := newTable(request.MaxAttackerArmies, request.MaxDefenderArmies)

	for sum := 2; sum <= request.MaxAttackerArmies+request.MaxDefenderArmies; sum++ {
		cells := diagonalCells(sum, request.MaxAttackerArmies, request.MaxDefenderArmies)
		if len(cells) == 0 {
			continue
		}
		if err := fillWave(ctx, t, cells, workers); err != nil {
			return nil, err
		}
	}

	return t, nil
}

type cell struct {
	attacker int
	defender int
}

// diagonalCells lists the interior cells on the anti-diagonal with the
// given army sum. Boundary cells (a == 0 or d == 0) are prefilled.
func diagonalCells(sum, maxAttack, maxDefend int) []cell {
	cells := make([]cell, 0)
	for attacker := 1; attacker <= maxAttack && attacker < sum; attacker++ {
		defender := sum - attacker
		if defender < 1 || defender > maxDefend {
			continue
		}
		cells = append(cells, cell{attacker: attacker, defender: defender})
	}
	return cells
}

// fillWave computes every cell of one anti-diagonal, fanning contiguous
// chunks out across workers and waiting for all of them before the next
// wave may start.
func fillWave(ctx context.Context, t *Table, cells []cell, workers int) error {
	if workers == 1 || len(cells) < 2*workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fillCells(t, cells)
	}

	group, ctx := errgroup.WithContext(ctx)
	chunk := (len(cells) + workers - 1) / workers
	for start := 0; start < len(cells); start += chunk {
		end := start + chunk
		if end > len(cells) {
			end = len(cells)
		}
		part := cells[start:end]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fillCells(t, part)
		})
	}
	return group.Wait()
}

func fillCells(t *Table, cells []cell) error {
	for _, c := range cells {
		value, err := cellValue(t, c.attacker, c.defender)
		if err != nil {
			return err
		}
		t.cells[c.attacker*(t.maxDefend+1)+c.defender] = value
	}
	return nil
}

// cellValue evaluates the conquest recurrence for one cell from already
// committed earlier anti-diagonals.
func cellValue(t *Table, attacker, defender int) (float64, error) {
	dist, err := dice.DistributionFor(dice.AttackerDiceFor(attacker), dice.DefenderDiceFor(defender))
	if err != nil {
		return 0, fmt.Errorf("distribution for cell (%d, %d): %w", attacker, defender, err)
	}
	value := 0.0
	for _, op := range dist.Outcomes {
		value += op.Probability * t.At(attacker-op.Outcome.AttackerLosses, defender-op.Outcome.DefenderLosses)
	}
	return value, nil
}
