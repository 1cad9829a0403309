package weatherrule

import (
	"math"

	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

func terrainEvaporationRate(t worldmodel.TerrainKind) float64 {
	switch t {
	case worldmodel.TerrainOcean:
		return 0.05
	case worldmodel.TerrainCoast:
		return 0.035
	case worldmodel.TerrainWetlands:
		return 0.04
	case worldmodel.TerrainPlains:
		return 0.015
	case worldmodel.TerrainHills:
		return 0.01
	case worldmodel.TerrainMountains, worldmodel.TerrainCliffs:
		return 0.005
	default:
		return 0.02
	}
}

func humiditySeasonalMultiplier(season worldmodel.Season) float64 {
	switch season {
	case worldmodel.SeasonSummer:
		return 1.3
	case worldmodel.SeasonSpring:
		return 1.0
	case worldmodel.SeasonAutumn:
		return 0.9
	default:
		return 0.6
	}
}

func ruleHumidity(a *Accum, cell worldmodel.Tile, neighbors []worldmodel.Tile, bearingRow []float64, hasBearings bool, season worldmodel.Season, r *rng.Source) {
	evaporation := terrainEvaporationRate(cell.Geology.Terrain) * humiditySeasonalMultiplier(season) * (1 - a.Humidity)
	humidity := a.Humidity + evaporation

	neighborBlend := advectedNeighborMean(neighbors, bearingRow, hasBearings, func(t worldmodel.Tile) float64 {
		return t.Weather.Humidity
	})

	maritimeBoost := 0.0
	if cell.Geology.Terrain == worldmodel.TerrainOcean || cell.Geology.Terrain == worldmodel.TerrainCoast {
		maritimeBoost = 0.02
	}
	convergenceMod := convergenceVerticalMotion(cell.Position.Lat, season) * 0.05

	humidity = 0.75*humidity + 0.20*neighborBlend + maritimeBoost + convergenceMod

	w := math.Min(0.35, cell.Weather.MacroHumidity*3.5)
	humidity = cell.Weather.MacroHumidity*w + humidity*(1-w)

	humidity -= orographicLoss(cell, neighbors)

	humidity *= 0.999 // constant decay factor; it does not vary with moisture

	a.Humidity = clamp(humidity, 0, 1)
}

// advectedNeighborMean computes the wind-directed weighted average of a
// neighbor field: each neighbor's weight is max(0, cos(delta)) *
// min(1.5, wind_speed/10), where delta is the neighbor's wind direction
// minus the precomputed bearing from that neighbor to this cell. When
// bearings are unavailable (torus), the advection degenerates to an
// isotropic mean.
func advectedNeighborMean(neighbors []worldmodel.Tile, bearingRow []float64, hasBearings bool, field func(worldmodel.Tile) float64) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	if !hasBearings {
		sum := 0.0
		for _, n := range neighbors {
			sum += field(n)
		}
		return sum / float64(len(neighbors))
	}

	var weightSum, valueSum float64
	for i, n := range neighbors {
		bearing := 0.0
		if i < len(bearingRow) {
			bearing = bearingRow[i]
		}
		deltaRad := (n.Weather.WindDirection - bearing) * math.Pi / 180
		weight := math.Max(0, math.Cos(deltaRad)) * math.Min(1.5, n.Weather.WindSpeed/10)
		weightSum += weight
		valueSum += weight * field(n)
	}
	if weightSum < 1e-9 {
		sum := 0.0
		for _, n := range neighbors {
			sum += field(n)
		}
		return sum / float64(len(neighbors))
	}
	return valueSum / weightSum
}

// orographicLoss approximates rain-shadow moisture loss when this cell
// sits above its neighbors, capped at 0.85.
func orographicLoss(cell worldmodel.Tile, neighbors []worldmodel.Tile) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range neighbors {
		sum += n.Geology.Elevation
	}
	neighborMean := sum / float64(len(neighbors))
	diff := cell.Geology.Elevation - neighborMean
	if diff <= 0 {
		return 0
	}
	return clamp(diff*0.85, 0, 0.85)
}
