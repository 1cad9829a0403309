package weatherrule

import (
	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

func stormCandidates(a *Accum, cell worldmodel.Tile, neighbors []worldmodel.Tile) float64 {
	var best float64

	// Pressure-deficit nucleation.
	deficit := seaLevelPressureConst - cell.Weather.Pressure
	if deficit > 3 && a.Humidity > 0.5 && a.CloudCover > 0.5 {
		best = maxFloat(best, clamp(deficit/30, 0, 1))
	}

	// Frontal nucleation: sharp temperature gradient against a neighbor.
	maxDiff := 0.0
	for _, n := range neighbors {
		d := a.Temperature - n.Weather.Temperature
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 5 {
		best = maxFloat(best, clamp(maxDiff/20, 0, 1))
	}

	// Convective nucleation: hot, humid, cloudy.
	if a.Temperature > 295 && a.Humidity > 0.6 && a.CloudCover > 0.5 {
		best = maxFloat(best, clamp((a.Temperature-295)/15, 0, 1))
	}

	// Orographic nucleation.
	switch cell.Geology.Terrain {
	case worldmodel.TerrainMountains, worldmodel.TerrainHills, worldmodel.TerrainCliffs:
		if a.Humidity > 0.5 {
			best = maxFloat(best, clamp(a.Humidity*0.5, 0, 1))
		}
	}

	// Coastal nucleation: onshore wind off the ocean.
	if cell.Geology.Terrain == worldmodel.TerrainCoast && hasNeighborTerrain(neighbors, worldmodel.TerrainOcean) && a.WindSpeed > 8 {
		best = maxFloat(best, clamp(a.WindSpeed/25, 0, 1))
	}

	return best
}

func terrainStormDecay(t worldmodel.TerrainKind, temperature float64) float64 {
	switch t {
	case worldmodel.TerrainMountains, worldmodel.TerrainCliffs:
		return 0.08
	case worldmodel.TerrainOcean:
		if temperature > 295 {
			return 0.025
		}
		return 0.05
	default:
		return 0.05
	}
}

const seaLevelPressureConst = 1013.25

func ruleStorms(a *Accum, cell worldmodel.Tile, neighbors []worldmodel.Tile, r *rng.Source) {
	candidate := stormCandidates(a, cell, neighbors)
	storm := a.StormIntensity + (candidate-a.StormIntensity)*0.3 + r.Range(0, 0.03)

	neighborAvg := meanField(neighbors, func(t worldmodel.Tile) float64 { return t.Weather.StormIntensity })
	switch {
	case neighborAvg > 0.15:
		storm += 0.12 * neighborAvg
	case neighborAvg > 0.10:
		storm += 0.06 * neighborAvg
	}

	humiditySurplus := maxFloat(0, a.Humidity-0.6)
	headroom := 1 - storm
	boost := 1.0
	if cell.Weather.Pressure < 990 {
		boost = 1.5
	}
	storm += humiditySurplus * headroom * 0.1 * boost

	decay := terrainStormDecay(cell.Geology.Terrain, a.Temperature)
	if cell.Weather.Pressure > 1020 {
		decay += 0.02
	}
	if a.Humidity < 0.3 {
		decay += 0.03
	}
	storm -= storm * decay

	storm = clamp(storm, 0, 1)

	if storm > 0.08 {
		a.WindSpeed = clamp(a.WindSpeed+storm*10, 0.3, 25)
		a.CloudCover = clamp(a.CloudCover+0.5*storm, 0, 1)
		rotation := hemisphereSign(cell.Position.Lat) * storm * (12 + r.Range(-8, 8))
		a.WindDirection = wrapDegrees(a.WindDirection + rotation)
	}

	a.StormIntensity = storm
}
