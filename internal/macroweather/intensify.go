package macroweather

import (
	"worldcell/internal/rng"
	"worldcell/internal/spatialgrid"
	"worldcell/internal/worldmodel"
)

// surfaceFactor returns the per-tick anomaly adjustment driven by the
// terrain beneath a system's center: e.g. tropical lows strengthen over
// warm ocean and weaken over land.
func surfaceFactor(kind worldmodel.PressureSystemKind, terrain worldmodel.TerrainKind, baseTemp float64) float64 {
	isOcean := terrain == worldmodel.TerrainOcean || terrain == worldmodel.TerrainCoast
	switch kind {
	case worldmodel.KindTropicalLow:
		if isOcean && baseTemp > 299 {
			return -1.2 // strengthens (more negative anomaly)
		}
		return 1.5 // decays rapidly over land
	case worldmodel.KindMidLatCyclone:
		if isOcean {
			return -0.4
		}
		return 0.6
	case worldmodel.KindSubtropicalHigh:
		if isOcean {
			return 0.2
		}
		return -0.1
	case worldmodel.KindPolarHigh:
		return 0.1
	case worldmodel.KindThermalLow:
		if isOcean {
			return 0.5
		}
		return -0.6
	default:
		return 0
	}
}

// Intensify adjusts each system's anomaly and moisture based on the terrain
// beneath its current center (looked up via the spatial grid), an
// age-decay factor, and uniform noise.
func Intensify(systems []worldmodel.PressureSystem, cells []worldmodel.Tile, grid *spatialgrid.Grid, r *rng.Source) {
	for i := range systems {
		s := &systems[i]
		idx := grid.NearestCell(s.Lat, s.Lon)
		cell := cells[idx]

		ageFactor := 1 - float64(s.Age)/float64(maxInt(s.MaxAge, 1))*0.02
		delta := surfaceFactor(s.Kind, cell.Geology.Terrain, cell.Climate.BaseTemperature) * ageFactor
		delta += r.Range(-0.5, 0.5)
		s.PressureAnomaly += delta

		isOcean := cell.Geology.Terrain == worldmodel.TerrainOcean || cell.Geology.Terrain == worldmodel.TerrainCoast
		if isOcean {
			s.Moisture += 0.012
			if s.Moisture > 1 {
				s.Moisture = 1
			}
		} else {
			s.Moisture -= 0.002
			if s.Moisture < 0 {
				s.Moisture = 0
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
