// Package phase implements the snapshot-then-scatter phase driver shared
// by all four rule phases: it hands every cell an immutable snapshot view,
// runs an Evaluator per cell (in parallel), filters biome-transition
// mutations, and applies the survivors back into live state sequentially
// in cell-id order so results are reproducible regardless of scheduling.
package phase

import (
	"fmt"

	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

// Mutation is one field-level write an evaluator wants applied to a cell.
// Field names are dotted for nested/keyed targets (e.g. "iron.quantity").
type Mutation struct {
	Field string
	Value any
}

// EvalContext carries the read-only, per-invocation inputs to an Evaluator
// beyond the cell and its neighbors.
type EvalContext struct {
	Season worldmodel.Season
	Tick   int64
	RNG    *rng.Source
}

// Evaluator computes the mutations for one cell given a read-only
// snapshot of that cell and its neighbors. Implementations must not
// mutate cell or neighbors.
type Evaluator interface {
	Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx EvalContext) ([]Mutation, error)
}

// RuleError reports a per-cell rule failure. Errors are isolated: a
// failing cell's mutations are discarded but other cells are unaffected.
type RuleError struct {
	TileID   int
	RuleName string
	Err      error
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule %q failed for tile %d: %v", e.RuleName, e.TileID, e.Err)
}

func (e RuleError) Unwrap() error { return e.Err }
