package weatherrule

import (
	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

func saturationCurve(temperature float64) float64 {
	s := 0.40 + (temperature-250)*0.006 + pow2((temperature-270)/30)*0.2
	return clamp(s, 0.40, 1.2)
}

func pow2(v float64) float64 { return v * v }

// cloudCurve is the piecewise relative-humidity-to-target-cloud mapping.
func cloudCurve(r float64) float64 {
	switch {
	case r < 0.30:
		return 0.1 * r
	case r < 0.55:
		return 0.03 + 0.5*(r-0.30)
	case r < 0.80:
		return 0.155 + 1.2*(r-0.55)
	case r < 1.10:
		return 0.455 + 1.0*(r-0.80)
	default:
		return 0.755 + 0.2*(r-1.10)
	}
}

func terrainPrecipBoost(t worldmodel.TerrainKind) float64 {
	switch t {
	case worldmodel.TerrainMountains, worldmodel.TerrainHills, worldmodel.TerrainCliffs:
		return 1.3
	default:
		return 1.0
	}
}

func ruleCloudsPrecipitation(a *Accum, cell worldmodel.Tile, neighbors []worldmodel.Tile, season worldmodel.Season, r *rng.Source) {
	saturation := saturationCurve(a.Temperature)
	relativeHumidity := clamp(a.Humidity/saturation, 0, 1.5)

	target := clamp(cloudCurve(relativeHumidity), 0, 0.85)
	target += convergenceVerticalMotion(cell.Position.Lat, season)
	target = clamp(target, 0, 0.85)

	neighborClouds := meanField(neighbors, func(t worldmodel.Tile) float64 { return t.Weather.CloudCover })
	blended := 0.85*target + 0.15*neighborClouds

	maxNeighborStorm := 0.0
	for _, n := range neighbors {
		if n.Weather.StormIntensity > maxNeighborStorm {
			maxNeighborStorm = n.Weather.StormIntensity
		}
	}
	if maxNeighborStorm > 0.2 {
		blended += 0.15 * maxNeighborStorm
	}

	speed := 0.10
	if blended > a.CloudCover {
		speed = 0.10
		if blended-a.CloudCover > 0.3 {
			speed = 0.18
		}
	}
	a.CloudCover = clamp(a.CloudCover+(blended-a.CloudCover)*speed+r.Range(-0.02, 0.02), 0, 1)

	if relativeHumidity > 0.70 && a.CloudCover > 0.35 {
		excess := relativeHumidity - 0.70
		heatBoost := 1.0
		if a.Temperature > 295 {
			heatBoost = 1.15
		}
		intensity := clamp(excess*a.CloudCover*1.2*terrainPrecipBoost(cell.Geology.Terrain)*heatBoost, 0, 1)
		a.Precipitation = intensity

		switch {
		case a.Temperature < 268:
			a.PrecipitationType = worldmodel.PrecipitationSnow
		case a.Temperature < 273:
			a.PrecipitationType = worldmodel.PrecipitationSleet
		default:
			a.PrecipitationType = worldmodel.PrecipitationRain
		}

		a.Humidity = maxFloat(0.02, a.Humidity-intensity*0.15*a.Humidity)
		a.CloudCover = maxFloat(0, a.CloudCover-intensity*intensity*0.20)
	} else {
		a.Precipitation *= 0.5
		if a.Precipitation < 1e-4 {
			a.Precipitation = 0
			a.PrecipitationType = worldmodel.PrecipitationNone
		}
	}
}

func meanField(tiles []worldmodel.Tile, field func(worldmodel.Tile) float64) float64 {
	if len(tiles) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tiles {
		sum += field(t)
	}
	return sum / float64(len(tiles))
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
