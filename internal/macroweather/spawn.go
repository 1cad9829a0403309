package macroweather

import (
	"worldcell/internal/rng"
	"worldcell/internal/sphere"
	"worldcell/internal/worldmodel"
)

// candidateRange holds the uniform sampling ranges for a newly spawned
// system of a given kind. Exact bounds are an implementation choice not
// pinned by the kind-selection contract.
type candidateRange struct {
	kind                    worldmodel.PressureSystemKind
	probability             float64
	anomalyLo, anomalyHi    float64
	radiusLo, radiusHi      float64
	maxAgeLo, maxAgeHi      int
	moistureLo, moistureHi  float64
}

var candidateRanges = map[worldmodel.PressureSystemKind]candidateRange{
	worldmodel.KindPolarHigh: {
		kind: worldmodel.KindPolarHigh,
		anomalyLo: 10, anomalyHi: 30,
		radiusLo: 0.3, radiusHi: 0.6,
		maxAgeLo: 15, maxAgeHi: 40,
		moistureLo: 0.05, moistureHi: 0.2,
	},
	worldmodel.KindMidLatCyclone: {
		kind: worldmodel.KindMidLatCyclone,
		anomalyLo: -35, anomalyHi: -8,
		radiusLo: 0.3, radiusHi: 0.6,
		maxAgeLo: 5, maxAgeHi: 20,
		moistureLo: 0.4, moistureHi: 0.9,
	},
	worldmodel.KindSubtropicalHigh: {
		kind: worldmodel.KindSubtropicalHigh,
		anomalyLo: 8, anomalyHi: 25,
		radiusLo: 0.4, radiusHi: 0.8,
		maxAgeLo: 10, maxAgeHi: 30,
		moistureLo: 0.1, moistureHi: 0.3,
	},
	worldmodel.KindTropicalLow: {
		kind: worldmodel.KindTropicalLow,
		anomalyLo: -40, anomalyHi: -15,
		radiusLo: 0.2, radiusHi: 0.45,
		maxAgeLo: 4, maxAgeHi: 12,
		moistureLo: 0.6, moistureHi: 1.0,
	},
	worldmodel.KindThermalLow: {
		kind: worldmodel.KindThermalLow,
		anomalyLo: -15, anomalyHi: -5,
		radiusLo: 0.15, radiusHi: 0.35,
		maxAgeLo: 3, maxAgeHi: 8,
		moistureLo: 0.1, moistureHi: 0.4,
	},
}

// eligibleKinds returns the candidate kinds (with their extra probability)
// matching the given cell per the spawn table in §4.4.
func eligibleKinds(lat float64, terrain worldmodel.TerrainKind, baseTemp float64) []candidateRange {
	absLat := lat
	if absLat < 0 {
		absLat = -absLat
	}
	isLand := terrain != worldmodel.TerrainOcean && terrain != worldmodel.TerrainCoast
	isOcean := terrain == worldmodel.TerrainOcean

	var out []candidateRange
	add := func(kind worldmodel.PressureSystemKind, prob float64) {
		r := candidateRanges[kind]
		r.probability = prob
		out = append(out, r)
	}

	if absLat > 60 && isLand {
		add(worldmodel.KindPolarHigh, 1.0)
	}
	if absLat > 40 && absLat < 65 {
		add(worldmodel.KindMidLatCyclone, 0.6)
	}
	if absLat > 20 && absLat < 40 && isOcean {
		add(worldmodel.KindSubtropicalHigh, 0.3)
	}
	if absLat < 25 && isOcean && baseTemp > 299 {
		add(worldmodel.KindTropicalLow, 0.2)
	}
	if absLat < 35 && isLand && baseTemp > 295 {
		add(worldmodel.KindThermalLow, 0.25)
	}
	return out
}

// TrySpawn rolls the 0.15 spawn probability, picks a random cell, and if a
// candidate kind matches it, appends a new system to state. next_id is
// incremented on every spawn.
func TrySpawn(state *worldmodel.MacroWeatherState, cells []worldmodel.Tile, cap int, r *rng.Source) {
	if len(state.Systems) >= cap {
		return
	}
	if !r.Bool(0.15) {
		return
	}

	cell := cells[r.Intn(len(cells))]
	candidates := eligibleKinds(cell.Position.Lat, cell.Geology.Terrain, cell.Climate.BaseTemperature)
	if len(candidates) == 0 {
		return
	}

	total := 0.0
	for _, c := range candidates {
		total += c.probability
	}
	roll := r.Range(0, total)
	var chosen candidateRange
	acc := 0.0
	for _, c := range candidates {
		acc += c.probability
		if roll <= acc {
			chosen = c
			break
		}
	}
	if chosen.kind == "" {
		chosen = candidates[len(candidates)-1]
	}

	sys := worldmodel.PressureSystem{
		ID:              state.NextID,
		Lat:             cell.Position.Lat,
		Lon:             cell.Position.Lon,
		PressureAnomaly: r.Range(chosen.anomalyLo, chosen.anomalyHi),
		Radius:          r.Range(chosen.radiusLo, chosen.radiusHi),
		VelocityEast:    0,
		VelocityNorth:   0,
		Age:             0,
		MaxAge:          chosen.maxAgeLo + r.Intn(chosen.maxAgeHi-chosen.maxAgeLo+1),
		Kind:            chosen.kind,
		Moisture:        r.Range(chosen.moistureLo, chosen.moistureHi),
	}
	sys.X, sys.Y, sys.Z = sphere.LatLonToXYZ(sys.Lat, sys.Lon)
	state.Systems = append(state.Systems, sys)
	state.NextID++
}
