package phase

import (
	"strings"

	"worldcell/internal/biome"
	"worldcell/internal/worldmodel"
)

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// applyWeather writes a Weather-phase mutation into live if its field is
// whitelisted, clamping per §4.9. Later mutations of the same field within
// the same call sequence overwrite earlier ones (caller applies in order).
func applyWeather(live *worldmodel.Tile, m Mutation) {
	switch m.Field {
	case "temperature":
		if f, ok := asFloat(m.Value); ok {
			live.Weather.Temperature = f
		}
	case "precipitation":
		if f, ok := asFloat(m.Value); ok {
			live.Weather.Precipitation = clampF(f, 0, 1)
		}
	case "precipitation_type":
		if s, ok := m.Value.(string); ok {
			live.Weather.PrecipitationType = worldmodel.PrecipitationType(s)
		} else if pt, ok := m.Value.(worldmodel.PrecipitationType); ok {
			live.Weather.PrecipitationType = pt
		}
	case "wind_speed":
		if f, ok := asFloat(m.Value); ok {
			if f < 0 {
				f = 0
			}
			live.Weather.WindSpeed = f
		}
	case "wind_direction":
		if f, ok := asFloat(m.Value); ok {
			live.Weather.WindDirection = wrapMod360(f)
		}
	case "cloud_cover":
		if f, ok := asFloat(m.Value); ok {
			live.Weather.CloudCover = clampF(f, 0, 1)
		}
	case "storm_intensity":
		if f, ok := asFloat(m.Value); ok {
			live.Weather.StormIntensity = clampF(f, 0, 1)
		}
	case "humidity":
		if f, ok := asFloat(m.Value); ok {
			live.Weather.Humidity = clampF(f, 0, 1)
		}
	}
}

func wrapMod360(v float64) float64 {
	for v < 0 {
		v += 360
	}
	for v >= 360 {
		v -= 360
	}
	return v
}

func applyConditions(live *worldmodel.Tile, m Mutation) {
	switch m.Field {
	case "soil_moisture":
		if f, ok := asFloat(m.Value); ok {
			live.Conditions.SoilMoisture = clampF(f, 0, 1)
		}
	case "snow_depth":
		if f, ok := asFloat(m.Value); ok {
			if f < 0 {
				f = 0
			}
			live.Conditions.SnowDepth = f
		}
	case "mud_level":
		if f, ok := asFloat(m.Value); ok {
			live.Conditions.MudLevel = clampF(f, 0, 1)
		}
	case "flood_level":
		if f, ok := asFloat(m.Value); ok {
			live.Conditions.FloodLevel = clampF(f, 0, 1)
		}
	case "frost_days":
		if f, ok := asFloat(m.Value); ok {
			live.Conditions.FrostDays = maxInt(0, int(f))
		}
	case "drought_days":
		if f, ok := asFloat(m.Value); ok {
			live.Conditions.DroughtDays = maxInt(0, int(f))
		}
	case "fire_risk":
		if f, ok := asFloat(m.Value); ok {
			live.Conditions.FireRisk = clampF(f, 0, 1)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// applyTerrain writes non-biome fields directly and filters biome_type
// mutations against the adjacency whitelist, evaluated against preBiome
// (the pre-phase biome, never the live value being built up this phase).
// Returns transitioned=true if a biome transition was accepted (caller
// resets the ticks-in-biome counter), and rejected=true if a biome_type
// mutation targeted a non-adjacent kind and was discarded.
func applyTerrain(live *worldmodel.Tile, preBiome worldmodel.BiomeKind, m Mutation) (transitioned, rejected bool) {
	switch m.Field {
	case "vegetation_density":
		if f, ok := asFloat(m.Value); ok {
			live.Biome.VegetationDensity = clampF(f, 0, 1)
		}
	case "vegetation_health":
		if f, ok := asFloat(m.Value); ok {
			live.Biome.VegetationHealth = clampF(f, 0, 1)
		}
	case "transition_pressure":
		if f, ok := asFloat(m.Value); ok {
			live.Biome.TransitionPressure = clampF(f, -1, 1)
		}
	case "biome_type":
		target, ok := m.Value.(string)
		var kind worldmodel.BiomeKind
		if ok {
			kind = worldmodel.BiomeKind(target)
		} else if bk, ok := m.Value.(worldmodel.BiomeKind); ok {
			kind = bk
		} else {
			return false, false
		}
		if !biome.IsTransitionAllowed(preBiome, kind) {
			return false, true
		}
		live.Biome.Kind = kind
		return kind != preBiome, false
	}
	return false, false
}

func applyResources(live *worldmodel.Tile, m Mutation) {
	dot := strings.LastIndexByte(m.Field, '.')
	if dot < 0 {
		return
	}
	depositType, attr := m.Field[:dot], m.Field[dot+1:]

	for i := range live.Resources.Deposits {
		d := &live.Resources.Deposits[i]
		if d.Type != depositType {
			continue
		}
		f, ok := asFloat(m.Value)
		if !ok {
			return
		}
		switch attr {
		case "quantity":
			d.Quantity = clampF(f, 0, d.MaxQuantity)
		case "renewal_rate":
			if f < 0 {
				f = 0
			}
			d.RenewalRate = f
		}
		return
	}
}
