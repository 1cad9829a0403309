package macroweather

import (
	"worldcell/internal/sphere"
	"worldcell/internal/worldmodel"
)

// steeringTarget returns the kind-specific target tangent velocity
// (east, north, in radians/tick) a system's velocity blends toward each
// tick: westerlies for mid-latitude cyclones, easterly trades for
// tropical lows, near-stationary highs, and a slow polar drift.
func steeringTarget(kind string, lat float64) (east, north float64) {
	hemisphere := 1.0
	if lat < 0 {
		hemisphere = -1.0
	}

	switch kind {
	case "MidLatCyclone":
		return 0.040, 0.010 * hemisphere
	case "SubtropicalHigh":
		return 0.005, -0.002 * hemisphere
	case "TropicalLow":
		return -0.030, 0.010 * hemisphere
	case "PolarHigh":
		return 0.010, -0.005 * hemisphere
	case "ThermalLow":
		return 0.002, 0
	default:
		return 0, 0
	}
}

// Move blends each system's velocity toward its kind's steering target and
// advances its position by one tick via Rodrigues rotation, then refreshes
// its cached unit-sphere coordinates and increments age.
func Move(systems []worldmodel.PressureSystem) {
	for i := range systems {
		s := &systems[i]
		targetEast, targetNorth := steeringTarget(string(s.Kind), s.Lat)
		s.VelocityEast = 0.8*s.VelocityEast + 0.2*targetEast
		s.VelocityNorth = 0.8*s.VelocityNorth + 0.2*targetNorth

		s.Lat, s.Lon = sphere.AdvancePosition(s.Lat, s.Lon, s.VelocityEast, s.VelocityNorth, 1)
		s.X, s.Y, s.Z = sphere.LatLonToXYZ(s.Lat, s.Lon)
		s.Age++
	}
}
