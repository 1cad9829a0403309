package tick

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldcell/internal/phase"
	"worldcell/internal/spatialgrid"
	"worldcell/internal/topology"
	"worldcell/internal/worldmodel"
)

func buildTestWorld(t *testing.T) (*worldmodel.World, *spatialgrid.Grid) {
	t.Helper()
	positions, neighbors, err := topology.Torus{Width: 6, Height: 4}.Build()
	require.NoError(t, err)

	cells := make([]worldmodel.Tile, len(positions))
	for i := range cells {
		cells[i] = worldmodel.Tile{
			ID:        i,
			Neighbors: neighbors[i],
			Position:  positions[i],
			Geology:   worldmodel.Geology{Terrain: worldmodel.TerrainPlains},
			Biome:     worldmodel.Biome{Kind: worldmodel.BiomeGrassland},
		}
	}

	world := &worldmodel.World{
		Cells:        cells,
		Season:       worldmodel.SeasonSpring,
		SeasonLength: 3,
		TopologyKind: worldmodel.TopologyFlat,
	}
	grid := spatialgrid.Build(positions)
	return world, grid
}

// heatEvaluator always nudges temperature up by one degree, to exercise
// diff detection and the general phase-to-phase plumbing.
type heatEvaluator struct{}

func (heatEvaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	return []phase.Mutation{{Field: "temperature", Value: cell.Weather.Temperature + 1}}, nil
}

// biomeFlipEvaluator alternates every cell's biome target between Grassland
// and Savanna (both adjacent), to exercise ticks_in_current_biome bookkeeping.
type biomeFlipEvaluator struct{}

func (biomeFlipEvaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	target := worldmodel.BiomeSavanna
	if cell.Biome.Kind == worldmodel.BiomeSavanna {
		target = worldmodel.BiomeGrassland
	}
	return []phase.Mutation{{Field: "biome_type", Value: string(target)}}, nil
}

func TestStepAdvancesTickAndSeason(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{}, Config{TickInterval: time.Millisecond})

	result, err := r.Step(3)
	require.NoError(t, err)

	assert.Equal(t, 3, world.TickCount)
	assert.Equal(t, 3, result.Tick)
	assert.Equal(t, worldmodel.SeasonSummer, world.Season) // SeasonLength=3, advances once
}

func TestStepWithNoEvaluatorsIsNoOp(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{}, Config{TickInterval: time.Millisecond})

	_, err := r.Step(1)
	require.NoError(t, err)
	for _, c := range world.Cells {
		assert.Equal(t, 0.0, c.Weather.Temperature)
	}
}

func TestStepAppliesWeatherEvaluator(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{Weather: heatEvaluator{}}, Config{TickInterval: time.Millisecond})

	result, err := r.Step(2)
	require.NoError(t, err)

	for _, c := range world.Cells {
		assert.Equal(t, 2.0, c.Weather.Temperature)
	}
	require.NotEmpty(t, result.Diff)
	for _, change := range result.Diff {
		require.NotNil(t, change.Weather)
	}
}

func TestTicksInCurrentBiomeIncrementsWhenNoTransition(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{}, Config{TickInterval: time.Millisecond})

	_, err := r.Step(5)
	require.NoError(t, err)
	for _, c := range world.Cells {
		assert.Equal(t, 5, c.Biome.TicksInCurrentBiome)
	}
}

func TestTicksInCurrentBiomeResetsOnTransition(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{Terrain: biomeFlipEvaluator{}}, Config{TickInterval: time.Millisecond})

	_, err := r.Step(1)
	require.NoError(t, err)
	for _, c := range world.Cells {
		assert.Equal(t, worldmodel.BiomeSavanna, c.Biome.Kind)
		assert.Equal(t, 0, c.Biome.TicksInCurrentBiome)
	}

	_, err = r.Step(1)
	require.NoError(t, err)
	for _, c := range world.Cells {
		assert.Equal(t, worldmodel.BiomeGrassland, c.Biome.Kind)
		assert.Equal(t, 0, c.Biome.TicksInCurrentBiome)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{Weather: heatEvaluator{}}, Config{TickInterval: 5 * time.Millisecond})

	ticks := make(chan Result, 16)
	r.SetHandler(func(res Result) { ticks <- res })

	require.NoError(t, r.Start())
	assert.Equal(t, StateRunning, r.State())

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a tick")
	}

	r.Stop()
	assert.Equal(t, StateIdle, r.State())
}

func TestPauseSuspendsAdvancement(t *testing.T) {
	world, grid := buildTestWorld(t)
	r := NewRunner(world, grid, Evaluators{}, Config{TickInterval: 5 * time.Millisecond})

	require.NoError(t, r.Start())
	r.Pause()
	assert.Equal(t, StatePaused, r.State())

	before := world.TickCount
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, world.TickCount)

	r.Stop()
}

// rainEvaluator is the Weather-phase half of the causal-chain scenario:
// it sets precipitation=0.9 and type=Rain on every cell.
type rainEvaluator struct{}

func (rainEvaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	return []phase.Mutation{
		{Field: "precipitation", Value: 0.9},
		{Field: "precipitation_type", Value: string(worldmodel.PrecipitationRain)},
	}, nil
}

// soakEvaluator is the Conditions-phase half: soil_moisture += precipitation*0.3,
// reading the cell's own pre-phase precipitation (written by the Weather phase
// earlier in the same tick, so it is visible here as a cross-phase read).
type soakEvaluator struct{}

func (soakEvaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	return []phase.Mutation{
		{Field: "soil_moisture", Value: cell.Conditions.SoilMoisture + cell.Weather.Precipitation*0.3},
	}, nil
}

// growEvaluator is the Terrain-phase half: vegetation_health += 0.05 when
// soil_moisture > 0.3.
type growEvaluator struct{}

func (growEvaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	if cell.Conditions.SoilMoisture > 0.3 {
		return []phase.Mutation{
			{Field: "vegetation_health", Value: cell.Biome.VegetationHealth + 0.05},
		}, nil
	}
	return nil, nil
}

// TestCausalChainAcrossPhasesInOneTick exercises spec scenario 1: a Weather
// rule sets precipitation, a Conditions rule derives soil_moisture from it,
// and a Terrain rule derives vegetation_health from that — all within one
// tick, each phase seeing the previous phase's already-applied writes.
func TestCausalChainAcrossPhasesInOneTick(t *testing.T) {
	world, grid := buildTestWorld(t)
	for i := range world.Cells {
		world.Cells[i].Conditions.SoilMoisture = 0.1
		world.Cells[i].Biome.VegetationHealth = 0.1
	}
	preSoilMoisture := 0.1
	preVegetationHealth := 0.1

	r := NewRunner(world, grid, Evaluators{
		Weather:    rainEvaluator{},
		Conditions: soakEvaluator{},
		Terrain:    growEvaluator{},
	}, Config{TickInterval: time.Millisecond})

	_, err := r.Step(1)
	require.NoError(t, err)

	for _, c := range world.Cells {
		assert.Equal(t, 0.9, c.Weather.Precipitation)
		assert.GreaterOrEqual(t, c.Conditions.SoilMoisture, preSoilMoisture+0.27)
		assert.Greater(t, c.Biome.VegetationHealth, preVegetationHealth)
	}
}

// TestSeasonCycleReturnsToStartAfterFullPeriod exercises spec scenario 2:
// starting in Spring with season_length=5, 20 empty-rule ticks complete
// exactly 4 full season cycles and land back on Spring.
func TestSeasonCycleReturnsToStartAfterFullPeriod(t *testing.T) {
	world, grid := buildTestWorld(t)
	world.Season = worldmodel.SeasonSpring
	world.SeasonLength = 5

	r := NewRunner(world, grid, Evaluators{}, Config{TickInterval: time.Millisecond})

	_, err := r.Step(20)
	require.NoError(t, err)

	assert.Equal(t, 20, world.TickCount)
	assert.Equal(t, worldmodel.SeasonSpring, world.Season)
}

func TestStepErrorsOnEmptyWorld(t *testing.T) {
	world := &worldmodel.World{SeasonLength: 1}
	r := NewRunner(world, spatialgrid.Build(nil), Evaluators{}, Config{TickInterval: time.Millisecond})

	_, err := r.Step(1)
	assert.ErrorIs(t, err, ErrNotInitialized)
}
