package macroweather

import (
	"worldcell/internal/rng"
	"worldcell/internal/spatialgrid"
	"worldcell/internal/worldmodel"
)

// Step advances the macro-weather pipeline by one tick: spawn, move,
// intensify/decay, merge, cull, then project onto cells. The macro RNG
// state is persisted back into state.RNGState so the sequence resumes
// identically across process restarts given the same seed.
func Step(state *worldmodel.MacroWeatherState, cells []worldmodel.Tile, grid *spatialgrid.Grid) {
	r := rng.New(state.RNGState)

	cap := SystemCap(len(cells))
	TrySpawn(state, cells, cap, r)

	Move(state.Systems)
	Intensify(state.Systems, cells, grid, r)
	state.Systems = Merge(state.Systems)
	state.Systems = Cull(state.Systems)

	Project(cells, state.Systems)

	state.RNGState = r.Uint64()
}
