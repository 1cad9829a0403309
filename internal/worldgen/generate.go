// Package worldgen builds a fresh World from GenerationParams: it lays out
// the topology, assigns immutable Geology and Climate via layered Perlin
// noise plus latitude bands, seeds an initial Biome consistent with the
// biome adjacency graph, places Resources deposits, and leaves Weather and
// Conditions at quiescent starting values for the first tick to act on.
package worldgen

import (
	"fmt"
	"math"
	"sort"

	"github.com/aquilax/go-perlin"
	"github.com/google/uuid"

	"worldcell/internal/biome"
	"worldcell/internal/rng"
	"worldcell/internal/topology"
	"worldcell/internal/worldmodel"
)

// noiseFields wraps the three independent Perlin sources used to shape a
// world: elevation, moisture and tectonic stress vary on separate seeds so
// that, say, a desert plateau and a rainy plateau are both reachable outcomes.
type noiseFields struct {
	elevation *perlin.Perlin
	moisture  *perlin.Perlin
	stress    *perlin.Perlin
}

func newNoiseFields(seed uint64) noiseFields {
	// alpha=2, beta=2, n=octaves: matches the teacher's PerlinGenerator
	// defaults, just split across three independent seeded channels.
	return noiseFields{
		elevation: perlin.NewPerlin(2, 2, 4, int64(seed)),
		moisture:  perlin.NewPerlin(2, 2, 3, int64(seed+1)),
		stress:    perlin.NewPerlin(2, 2, 2, int64(seed+2)),
	}
}

func (n noiseFields) sample(p worldmodel.Position, freq float64, mode worldmodel.TopologyKind, width, height int) (elev, moist, stress float64) {
	if mode == worldmodel.TopologyGeodesic {
		x, y, z := p.X*freq, p.Y*freq, p.Z*freq
		elev = n.elevation.Noise3D(x, y, z)
		moist = n.moisture.Noise3D(x*1.7, y*1.7, z*1.7)
		stress = n.stress.Noise3D(x*0.6, y*0.6, z*0.6)
		return
	}
	nx := p.X / math.Max(float64(width), 1) * freq * 8
	ny := p.Y / math.Max(float64(height), 1) * freq * 8
	elev = n.elevation.Noise2D(nx, ny)
	moist = n.moisture.Noise2D(nx*1.7, ny*1.7)
	stress = n.stress.Noise2D(nx*0.6, ny*0.6)
	return
}

// Generate builds a complete World from params. World.ID is a fresh random
// UUID and is not derived from the seed; every other field is deterministic
// in params, and nothing else here consults wall-clock time or any other
// ambient source.
func Generate(params worldmodel.GenerationParams) (*worldmodel.World, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	builder := topology.ForKind(params)
	positions, neighbors, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("worldgen: %w", err)
	}
	n := len(positions)

	noise := newNoiseFields(params.Seed)
	freq := 0.5 + params.ElevationRoughness*3.5

	rawElevation := make([]float64, n)
	rawMoisture := make([]float64, n)
	rawStress := make([]float64, n)
	for i, p := range positions {
		e, m, s := noise.sample(p, freq, params.TopologyMode, params.ToroidalWidth, params.ToroidalHeight)
		rawElevation[i] = e
		rawMoisture[i] = (m + 1) / 2
		rawStress[i] = clamp01((s + 1) / 2)
	}

	seaLevel, mountainLevel := elevationThresholds(rawElevation, params.OceanRatio, params.MountainRatio)

	cells := make([]worldmodel.Tile, n)
	for i := range cells {
		cell := worldmodel.Tile{
			ID:        i,
			Neighbors: append([]int(nil), neighbors[i]...),
			Position:  positions[i],
		}

		elev := rawElevation[i]
		moist := rawMoisture[i]
		cell.Geology = buildGeology(elev, moist, rawStress[i], seaLevel, mountainLevel)
		cell.Climate = buildClimate(positions[i], elev, moist, seaLevel, params.ClimateBands)
		cell.Biome = buildBiome(cell.Geology.Terrain, cell.Climate, moist, params.InitialBiomeMaturity)
		cell.Resources = buildResources(cell.Geology, cell.Biome, i, params)
		cell.Weather = initialWeather(cell.Climate)
		cell.Conditions = initialConditions(cell.Climate)

		cells[i] = cell
	}

	return &worldmodel.World{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("world-%d", params.Seed),
		TickCount:    0,
		Season:       worldmodel.SeasonSpring,
		SeasonLength: 0, // filled in by the caller from config; zero here means "unset"
		TopologyKind: params.TopologyMode,
		Generation:   withTileCount(params, n),
		Cells:        cells,
	}, nil
}

func withTileCount(params worldmodel.GenerationParams, n int) worldmodel.GenerationParams {
	params.TileCount = n
	return params
}

func validate(params worldmodel.GenerationParams) error {
	if params.TopologyMode != worldmodel.TopologyGeodesic && params.TileCount < 100 {
		return fmt.Errorf("worldgen: tile_count must be >= 100, got %d", params.TileCount)
	}
	if params.OceanRatio < 0 || params.OceanRatio > 1 {
		return fmt.Errorf("worldgen: ocean_ratio out of [0,1]: %f", params.OceanRatio)
	}
	if params.MountainRatio < 0 || params.MountainRatio > 0.5 {
		return fmt.Errorf("worldgen: mountain_ratio out of [0,0.5]: %f", params.MountainRatio)
	}
	if params.ElevationRoughness < 0 || params.ElevationRoughness > 1 {
		return fmt.Errorf("worldgen: elevation_roughness out of [0,1]: %f", params.ElevationRoughness)
	}
	return nil
}

// elevationThresholds picks the sea-level and mountain-level cutoffs as the
// OceanRatio-th and (1-MountainRatio)-th percentiles of the raw elevation
// distribution, so OceanRatio/MountainRatio hold regardless of noise scale.
func elevationThresholds(raw []float64, oceanRatio, mountainRatio float64) (seaLevel, mountainLevel float64) {
	sorted := append([]float64(nil), raw...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	seaIdx := clampIndex(int(float64(n)*oceanRatio), n)
	mountainIdx := clampIndex(int(float64(n)*(1-mountainRatio)), n)
	return sorted[seaIdx], sorted[mountainIdx]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const coastBand = 0.04
const cliffBand = 0.15

func buildGeology(elev, moisture, stress, seaLevel, mountainLevel float64) worldmodel.Geology {
	var terrain worldmodel.TerrainKind
	switch {
	case elev <= seaLevel:
		terrain = worldmodel.TerrainOcean
	case elev <= seaLevel+coastBand:
		terrain = worldmodel.TerrainCoast
	case elev >= mountainLevel+cliffBand:
		terrain = worldmodel.TerrainCliffs
	case elev >= mountainLevel:
		terrain = worldmodel.TerrainMountains
	case moisture > 0.7 && elev < seaLevel+0.25:
		terrain = worldmodel.TerrainWetlands
	case elev > (mountainLevel+seaLevel)/2:
		terrain = worldmodel.TerrainHills
	default:
		terrain = worldmodel.TerrainPlains
	}

	var soil worldmodel.SoilKind
	switch terrain {
	case worldmodel.TerrainOcean, worldmodel.TerrainCoast:
		soil = worldmodel.SoilSand
	case worldmodel.TerrainMountains, worldmodel.TerrainCliffs:
		if stress > 0.6 {
			soil = worldmodel.SoilAsh
		} else {
			soil = worldmodel.SoilRock
		}
	case worldmodel.TerrainWetlands:
		soil = worldmodel.SoilPeat
	default:
		switch {
		case moisture > 0.6:
			soil = worldmodel.SoilClay
		case moisture < 0.3:
			soil = worldmodel.SoilSilty
		default:
			soil = worldmodel.SoilLoam
		}
	}

	drainage := clamp01(0.5 + elev*0.5 - moisture*0.3)

	return worldmodel.Geology{
		Terrain:        terrain,
		Elevation:      elev,
		Soil:           soil,
		Drainage:       drainage,
		TectonicStress: stress,
	}
}

func buildClimate(pos worldmodel.Position, elev, moisture, seaLevel float64, bands bool) worldmodel.Climate {
	latNorm := math.Abs(pos.Lat) / 90.0

	var zone worldmodel.ClimateZone
	switch {
	case latNorm < 0.2:
		zone = worldmodel.ClimateTropical
	case latNorm < 0.4:
		zone = worldmodel.ClimateSubtropical
	case latNorm < 0.6:
		zone = worldmodel.ClimateTemperate
	case latNorm < 0.85:
		zone = worldmodel.ClimateSubpolar
	default:
		zone = worldmodel.ClimatePolar
	}
	if bands {
		// Discretize into five evenly-spaced bands rather than the uneven
		// thresholds above, so climate boundaries run in equal-width rings.
		band := math.Floor(latNorm * 5)
		switch int(math.Min(band, 4)) {
		case 0:
			zone = worldmodel.ClimateTropical
		case 1:
			zone = worldmodel.ClimateSubtropical
		case 2:
			zone = worldmodel.ClimateTemperate
		case 3:
			zone = worldmodel.ClimateSubpolar
		default:
			zone = worldmodel.ClimatePolar
		}
	}

	baseTempC := 30.0 - latNorm*50.0
	altitude := elev - seaLevel
	if altitude < 0 {
		altitude = 0
	}
	baseTempC -= (altitude * 3000.0 / 1000.0) * 6.5

	return worldmodel.Climate{
		Zone:            zone,
		BaseTemperature: baseTempC + 273.15,
		BasePrecip:      moisture,
		Latitude:        pos.Lat,
	}
}

func buildBiome(terrain worldmodel.TerrainKind, climate worldmodel.Climate, moisture float64, maturity float64) worldmodel.Biome {
	kind := resolveBiome(terrain, climate.Zone, moisture)
	return worldmodel.Biome{
		Kind:                kind,
		VegetationDensity:   clamp01(maturity * (0.3 + moisture*0.7)),
		VegetationHealth:    clamp01(0.5 + maturity*0.5),
		TransitionPressure:  0,
		TicksInCurrentBiome: 0,
	}
}

// resolveBiome cascades terrain first (ocean and high-elevation override
// everything), then climate zone, then moisture, mirroring the structure of
// a latitude/elevation/moisture biome resolver but constrained to the
// eleven BiomeKind values this world recognizes.
func resolveBiome(terrain worldmodel.TerrainKind, zone worldmodel.ClimateZone, moisture float64) worldmodel.BiomeKind {
	if terrain == worldmodel.TerrainOcean || terrain == worldmodel.TerrainCoast {
		return worldmodel.BiomeOcean
	}
	if terrain == worldmodel.TerrainWetlands {
		return worldmodel.BiomeWetland
	}
	if terrain == worldmodel.TerrainCliffs {
		return worldmodel.BiomeBarren
	}
	if terrain == worldmodel.TerrainMountains && zone == worldmodel.ClimatePolar {
		return worldmodel.BiomeIce
	}

	switch zone {
	case worldmodel.ClimatePolar:
		return worldmodel.BiomeIce
	case worldmodel.ClimateSubpolar:
		if moisture > 0.35 {
			return worldmodel.BiomeBorealForest
		}
		return worldmodel.BiomeTundra
	case worldmodel.ClimateTemperate:
		if moisture < 0.3 {
			return worldmodel.BiomeGrassland
		}
		return worldmodel.BiomeTemperateForest
	case worldmodel.ClimateSubtropical:
		if moisture > 0.6 {
			return worldmodel.BiomeTropicalForest
		}
		if moisture < 0.3 {
			return worldmodel.BiomeDesert
		}
		return worldmodel.BiomeSavanna
	default: // Tropical
		if moisture > 0.55 {
			return worldmodel.BiomeTropicalForest
		}
		if moisture < 0.25 {
			return worldmodel.BiomeDesert
		}
		return worldmodel.BiomeSavanna
	}
}

// depositTable names the deposit types a biome can host and the biomes
// reachable by a Terrain-phase transition that should still carry them,
// so a deposit does not vanish the instant a cell crosses a biome edge.
var depositTable = map[worldmodel.BiomeKind][]string{
	worldmodel.BiomeGrassland:       {"fertile-soil", "game"},
	worldmodel.BiomeSavanna:         {"game", "grazing"},
	worldmodel.BiomeTemperateForest: {"timber", "game"},
	worldmodel.BiomeTropicalForest:  {"timber", "fiber"},
	worldmodel.BiomeBorealForest:    {"timber"},
	worldmodel.BiomeDesert:          {"minerals"},
	worldmodel.BiomeWetland:         {"fiber", "game"},
	worldmodel.BiomeTundra:          {"game"},
}

func buildResources(geo worldmodel.Geology, bio worldmodel.Biome, cellID int, params worldmodel.GenerationParams) worldmodel.Resources {
	types, ok := depositTable[bio.Kind]
	if !ok || params.ResourceDensity <= 0 {
		if geo.Terrain == worldmodel.TerrainMountains || geo.Terrain == worldmodel.TerrainCliffs {
			types = []string{"ore"}
		} else {
			return worldmodel.Resources{}
		}
	}

	r := rng.New(uint64(cellID)*2654435761 + uint64(params.Seed))
	var deposits []worldmodel.Deposit
	for _, t := range types {
		if !r.Bool(params.ResourceDensity) {
			continue
		}
		max := 50 + r.Range(0, 150)
		deposits = append(deposits, worldmodel.Deposit{
			Type:          t,
			Quantity:      max * r.Range(0.4, 1.0),
			MaxQuantity:   max,
			RenewalRate:   r.Range(0.001, 0.02),
			AllowedBiomes: biome.Neighbors(bio.Kind),
		})
	}
	return worldmodel.Resources{Deposits: deposits}
}

func initialWeather(climate worldmodel.Climate) worldmodel.Weather {
	return worldmodel.Weather{
		Temperature:        climate.BaseTemperature,
		Humidity:           climate.BasePrecip,
		CloudCover:         0.2,
		WindSpeed:          2,
		WindDirection:      0,
		Precipitation:       0,
		PrecipitationType:  worldmodel.PrecipitationNone,
		StormIntensity:     0,
		Pressure:           1013.25,
		MacroWindSpeed:     2,
		MacroWindDirection: 0,
		MacroHumidity:      climate.BasePrecip,
	}
}

func initialConditions(climate worldmodel.Climate) worldmodel.Conditions {
	snow := 0.0
	if climate.Zone == worldmodel.ClimatePolar {
		snow = 0.3
	}
	return worldmodel.Conditions{
		SoilMoisture: climate.BasePrecip,
		SnowDepth:    snow,
		MudLevel:     0,
		FloodLevel:   0,
		FrostDays:    0,
		DroughtDays:  0,
		FireRisk:     0,
	}
}
