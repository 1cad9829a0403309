package phase

import (
	"golang.org/x/sync/errgroup"
	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

// Result is the outcome of running one phase for one tick.
type Result struct {
	Errors   []RuleError
	Cascaded bool
	// Transitioned is set only for PhaseTerrain: Transitioned[i] is true
	// when cell i's biome changed this phase. Callers use it to drive the
	// ticks_in_current_biome "+1 otherwise" rule at tick end, since a
	// transitioned cell is reset to 0 by this phase and must not also be
	// incremented.
	Transitioned []bool
	// RejectedTransitions counts, for PhaseTerrain only, biome_type
	// mutations discarded because they targeted a non-adjacent biome.
	RejectedTransitions int
}

// Run evaluates `evaluator` against every cell in parallel using the
// pre-phase snapshot for both the cell's own read and its neighbors' reads,
// then applies the accepted mutations back into live in sequential
// cell-id order so results are reproducible regardless of goroutine
// scheduling. Terrain-phase biome_type mutations are filtered against the
// pre-phase biome before being applied.
func Run(kind worldmodel.Phase, snapshot []worldmodel.Tile, live []worldmodel.Tile, evaluator Evaluator, season worldmodel.Season, tick int64) Result {
	n := len(snapshot)
	perCell := make([][]Mutation, n)
	perCellErr := make([]error, n)

	var g errgroup.Group

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			cell := snapshot[i]
			neighborTiles := make([]worldmodel.Tile, len(cell.Neighbors))
			for j, nid := range cell.Neighbors {
				neighborTiles[j] = snapshot[nid]
			}

			ctx := EvalContext{
				Season: season,
				Tick:   tick,
				RNG:    rng.NewForCell(tick, i, kind),
			}
			muts, err := evaluator.Evaluate(cell, neighborTiles, ctx)
			if err != nil {
				perCellErr[i] = err
				return nil // per-cell isolation: never abort the whole phase
			}
			perCell[i] = muts
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	if kind == worldmodel.PhaseTerrain {
		result.Transitioned = make([]bool, n)
	}
	errorCount := 0
	for i := 0; i < n; i++ {
		if perCellErr[i] != nil {
			errorCount++
			if re, ok := perCellErr[i].(RuleError); ok {
				result.Errors = append(result.Errors, re)
			} else {
				result.Errors = append(result.Errors, RuleError{TileID: i, RuleName: kind.String(), Err: perCellErr[i]})
			}
			continue
		}
		transitioned, rejected := applyMutations(kind, &live[i], snapshot[i].Biome.Kind, perCell[i])
		if kind == worldmodel.PhaseTerrain {
			result.Transitioned[i] = transitioned
			result.RejectedTransitions += rejected
		}
	}

	if n > 0 && float64(errorCount)/float64(n) > 0.10 {
		result.Cascaded = true
	}
	return result
}

func applyMutations(kind worldmodel.Phase, live *worldmodel.Tile, preBiome worldmodel.BiomeKind, muts []Mutation) (transitioned bool, rejectedCount int) {
	switch kind {
	case worldmodel.PhaseWeather:
		for _, m := range muts {
			applyWeather(live, m)
		}
	case worldmodel.PhaseConditions:
		for _, m := range muts {
			applyConditions(live, m)
		}
	case worldmodel.PhaseTerrain:
		for _, m := range muts {
			t, rejected := applyTerrain(live, preBiome, m)
			if t {
				transitioned = true
			}
			if rejected {
				rejectedCount++
			}
		}
		if transitioned {
			live.Biome.TicksInCurrentBiome = 0
		}
		return transitioned, rejectedCount
	case worldmodel.PhaseResources:
		for _, m := range muts {
			applyResources(live, m)
		}
	}
	return false, 0
}
