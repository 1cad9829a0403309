package worldmodel

import "github.com/google/uuid"

// GenerationParams records the inputs used to build a World, so that a
// generation run is reproducible from the recorded seed and parameters.
type GenerationParams struct {
	Seed                  uint64
	TileCount             int
	OceanRatio            float64
	MountainRatio         float64
	ElevationRoughness    float64
	ClimateBands          bool
	ResourceDensity       float64
	InitialBiomeMaturity  float64
	TopologyMode          TopologyKind
	TopologySubdivision   int
	ToroidalWidth         int
	ToroidalHeight        int
}

// MacroWeatherState is the engine-owned, macro-step-mutated state that
// persists across ticks independent of any single cell.
type MacroWeatherState struct {
	Systems  []PressureSystem
	NextID   int
	RNGState uint64
}

// PressureSystem is one macro-scale weather entity tracked across ticks.
type PressureSystem struct {
	ID    int
	Lat   float64
	Lon   float64
	X, Y, Z float64 // cached unit-sphere position

	PressureAnomaly float64 // hPa; sign encodes high (+) or low (-)
	Radius          float64 // radians
	VelocityEast    float64
	VelocityNorth   float64
	Age             int
	MaxAge          int
	Kind            PressureSystemKind
	Moisture        float64 // [0, 1]
}

// PressureSystemKind is the macro-weather system archetype, which governs
// steering, intensification, and candidate-selection probability.
type PressureSystemKind string

const (
	KindMidLatCyclone    PressureSystemKind = "MidLatCyclone"
	KindSubtropicalHigh  PressureSystemKind = "SubtropicalHigh"
	KindTropicalLow      PressureSystemKind = "TropicalLow"
	KindPolarHigh        PressureSystemKind = "PolarHigh"
	KindThermalLow       PressureSystemKind = "ThermalLow"
)

// World is the complete, owned state of one simulation: a fixed set of
// cells on a topology, plus the macro weather state and season counters.
type World struct {
	ID     uuid.UUID
	Name   string

	TickCount    int
	Season       Season
	SeasonLength int

	TopologyKind TopologyKind
	Generation   GenerationParams

	MacroWeather MacroWeatherState
	Cells        []Tile
}

// TileCount returns the number of cells the world was generated with.
func (w *World) TileCount() int {
	return len(w.Cells)
}
