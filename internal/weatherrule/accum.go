// Package weatherrule is the native Weather-phase evaluator: four rules
// chained through a shared accumulator (wind/temperature, humidity,
// clouds/precipitation, storms), reading geology/climate/macro inputs and
// emitting exactly the eight Weather-layer fields in a fixed order.
package weatherrule

import (
	"worldcell/internal/bearings"
	"worldcell/internal/debug"
	"worldcell/internal/phase"
	"worldcell/internal/worldmodel"
)

// Accum is the cross-rule working state for one cell within one tick.
// Every rule reads and writes it in place so later rules observe earlier
// rules' updates.
type Accum struct {
	WindDirection     float64
	WindSpeed         float64
	Temperature       float64
	Humidity          float64
	CloudCover        float64
	Precipitation     float64
	PrecipitationType worldmodel.PrecipitationType
	StormIntensity    float64
}

func seedAccum(w worldmodel.Weather) Accum {
	return Accum{
		WindDirection:     w.WindDirection,
		WindSpeed:         w.WindSpeed,
		Temperature:       w.Temperature,
		Humidity:          w.Humidity,
		CloudCover:        w.CloudCover,
		Precipitation:     w.Precipitation,
		PrecipitationType: w.PrecipitationType,
		StormIntensity:    w.StormIntensity,
	}
}

// mutations emits the accum's eight fields in the fixed order required by
// the contract: wind_direction, wind_speed, temperature, humidity,
// cloud_cover, precipitation, precipitation_type, storm_intensity.
func (a Accum) mutations() []phase.Mutation {
	return []phase.Mutation{
		{Field: "wind_direction", Value: a.WindDirection},
		{Field: "wind_speed", Value: a.WindSpeed},
		{Field: "temperature", Value: a.Temperature},
		{Field: "humidity", Value: a.Humidity},
		{Field: "cloud_cover", Value: a.CloudCover},
		{Field: "precipitation", Value: a.Precipitation},
		{Field: "precipitation_type", Value: a.PrecipitationType},
		{Field: "storm_intensity", Value: a.StormIntensity},
	}
}

// Evaluator implements phase.Evaluator by running the four chained rules
// in strict sequence.
type Evaluator struct {
	Bearings     bearings.Table
	HasBearings  bool
}

// Evaluate runs the Wind & Temperature, Humidity, Clouds & Precipitation,
// and Storms rules in order against a shared Accum, seeded from the
// cell's pre-phase Weather layer.
func (e Evaluator) Evaluate(cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) ([]phase.Mutation, error) {
	accum := seedAccum(cell.Weather)

	var bearingRow []float64
	if e.HasBearings && cell.ID < len(e.Bearings) {
		bearingRow = e.Bearings[cell.ID]
	}

	ruleWindTemperature(&accum, cell, neighbors, ctx.Season, ctx.RNG)
	ruleHumidity(&accum, cell, neighbors, bearingRow, e.HasBearings, ctx.Season, ctx.RNG)
	ruleCloudsPrecipitation(&accum, cell, neighbors, ctx.Season, ctx.RNG)
	ruleStorms(&accum, cell, neighbors, ctx.RNG)

	if accum.StormIntensity > 0 {
		debug.Log(debug.Weather, "cell %d storm intensity %.2f", cell.ID, accum.StormIntensity)
	}

	return accum.mutations(), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapDegrees(v float64) float64 {
	v = mod(v, 360)
	if v < 0 {
		v += 360
	}
	return v
}

func mod(a, b float64) float64 {
	m := a
	for m >= b {
		m -= b
	}
	for m < 0 {
		m += b
	}
	return m
}

func hemisphereSign(lat float64) float64 {
	if lat < 0 {
		return -1
	}
	return 1
}

// seasonShift returns the ITCZ/wind-band seasonal offset in degrees/latitude
// shared by the wind-direction default and the convergence helper.
func seasonShift(season worldmodel.Season) float64 {
	switch season {
	case worldmodel.SeasonSpring:
		return 4
	case worldmodel.SeasonSummer:
		return 8
	case worldmodel.SeasonAutumn:
		return -4
	default:
		return -8
	}
}
