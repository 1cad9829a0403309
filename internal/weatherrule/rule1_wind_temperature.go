package weatherrule

import (
	"math"

	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

func terrainFriction(t worldmodel.TerrainKind) float64 {
	switch t {
	case worldmodel.TerrainMountains, worldmodel.TerrainCliffs:
		return 0.4
	case worldmodel.TerrainHills:
		return 0.7
	case worldmodel.TerrainOcean:
		return 1.3
	case worldmodel.TerrainCoast:
		return 1.15
	case worldmodel.TerrainWetlands:
		return 0.9
	default:
		return 1.0
	}
}

// latitudeBandDefault returns the default wind direction and base speed
// for a latitude band (equatorial trades, mid-latitude westerlies, polar
// easterlies), mirrored by hemisphere.
func latitudeBandDefault(lat float64) (direction, baseSpeed float64) {
	abs := math.Abs(lat)
	sign := hemisphereSign(lat)
	switch {
	case abs < 23.5:
		if sign > 0 {
			return 45, 4
		}
		return 135, 4
	case abs < 66.5:
		if sign > 0 {
			return 225, 8
		}
		return 315, 8
	default:
		if sign > 0 {
			return 45, 5
		}
		return 135, 5
	}
}

func ruleWindTemperature(a *Accum, cell worldmodel.Tile, neighbors []worldmodel.Tile, season worldmodel.Season, r *rng.Source) {
	friction := terrainFriction(cell.Geology.Terrain)

	var targetDir, targetSpeed, blendWeight float64
	if cell.Weather.MacroWindSpeed > 0.5 {
		targetDir = cell.Weather.MacroWindDirection
		targetSpeed = cell.Weather.MacroWindSpeed * friction
		blendWeight = 0.35
	} else {
		dir, base := latitudeBandDefault(cell.Position.Lat)
		targetDir = wrapDegrees(dir + seasonShift(season))
		targetSpeed = base * friction
		blendWeight = 0.2
	}

	dirDelta := shortestAngleDelta(a.WindDirection, targetDir) * blendWeight
	a.WindDirection = wrapDegrees(a.WindDirection + dirDelta + r.Range(-10, 10))
	a.WindSpeed = clamp(0.6*a.WindSpeed+0.4*targetSpeed+r.Range(-0.5, 0.5), 0.3, 20)

	if cell.Geology.Terrain == worldmodel.TerrainCoast && hasNeighborTerrain(neighbors, worldmodel.TerrainOcean) {
		bonus := 0.5
		if season == worldmodel.SeasonSummer {
			bonus = 1.5
		}
		a.WindSpeed = clamp(a.WindSpeed+bonus, 0.3, 20)
	}

	amplitude := math.Min(18, 6+math.Abs(cell.Position.Lat)*0.15)
	oceanDamping := oceanDampingFactor(cell.Geology.Terrain)
	seasonFactor := temperatureSeasonFactor(season) * hemisphereSign(cell.Position.Lat)

	temp := cell.Climate.BaseTemperature - cell.Geology.Elevation*20 + seasonFactor*amplitude*oceanDamping + r.Range(-1.5, 1.5)

	if len(neighbors) > 0 {
		sum := 0.0
		for _, n := range neighbors {
			sum += n.Weather.Temperature
		}
		neighborMean := sum / float64(len(neighbors))
		temp = temp*(1-0.08) + neighborMean*0.08
	}
	a.Temperature = temp
}

func oceanDampingFactor(t worldmodel.TerrainKind) float64 {
	switch t {
	case worldmodel.TerrainOcean:
		return 0.5
	case worldmodel.TerrainCoast:
		return 0.7
	default:
		return 1.0
	}
}

// temperatureSeasonFactor returns the northern-hemisphere seasonal sign;
// callers scale by hemisphereSign so southern hemisphere is inverted.
func temperatureSeasonFactor(season worldmodel.Season) float64 {
	switch season {
	case worldmodel.SeasonSpring:
		return 0.3
	case worldmodel.SeasonSummer:
		return 1.0
	case worldmodel.SeasonAutumn:
		return -0.3
	default:
		return -1.0
	}
}

func hasNeighborTerrain(neighbors []worldmodel.Tile, kind worldmodel.TerrainKind) bool {
	for _, n := range neighbors {
		if n.Geology.Terrain == kind {
			return true
		}
	}
	return false
}

// shortestAngleDelta returns the signed delta in [-180, 180) to rotate
// `from` toward `to` the short way around the circle.
func shortestAngleDelta(from, to float64) float64 {
	d := mod(to-from+180, 360) - 180
	return d
}
