package worldmodel

// Position is a cell's location: planar (x, y) on the torus, or unit-sphere
// (x, y, z) plus derived (lat, lon) on the geodesic.
type Position struct {
	X, Y, Z float64
	Lat     float64
	Lon     float64
}

// Geology is immutable over the lifetime of a World.
type Geology struct {
	Terrain        TerrainKind
	Elevation      float64 // [-1, 1]
	Soil           SoilKind
	Drainage       float64 // [0, 1]
	TectonicStress float64
}

// Climate is immutable over the lifetime of a World.
type Climate struct {
	Zone            ClimateZone
	BaseTemperature float64 // Kelvin
	BasePrecip      float64 // [0, 1]
	Latitude        float64 // degrees
}

// Biome is mutated only by the Terrain phase.
type Biome struct {
	Kind                BiomeKind
	VegetationDensity   float64 // [0, 1]
	VegetationHealth    float64 // [0, 1]
	TransitionPressure  float64 // [-1, 1]
	TicksInCurrentBiome int
}

// Deposit is one resource vein within a cell's Resources layer.
type Deposit struct {
	Type          string
	Quantity      float64
	MaxQuantity   float64
	RenewalRate   float64 // >= 0
	AllowedBiomes []BiomeKind
}

// Resources is mutated only by the Resources phase.
type Resources struct {
	Deposits []Deposit
}

// Weather is mutated only by the Weather phase. The macro_* fields are
// written exclusively by the macro-weather projection step and are
// immutable inputs during the Weather rule phase of the same tick.
type Weather struct {
	Temperature       float64
	Humidity          float64 // [0, 1]
	CloudCover        float64 // [0, 1]
	WindSpeed         float64 // >= 0
	WindDirection     float64 // [0, 360)
	Precipitation     float64 // [0, 1]
	PrecipitationType PrecipitationType
	StormIntensity    float64 // [0, 1]
	Pressure          float64 // hPa, written by the macro-weather projection step

	MacroWindSpeed     float64
	MacroWindDirection float64
	MacroHumidity      float64
}

// Conditions is mutated only by the Conditions phase.
type Conditions struct {
	SoilMoisture float64 // [0, 1]
	SnowDepth    float64 // >= 0
	MudLevel     float64 // [0, 1]
	FloodLevel   float64 // [0, 1]
	FrostDays    int     // >= 0
	DroughtDays  int     // >= 0
	FireRisk     float64 // [0, 1]
}

// Tile is one cell of the world, identified by its dense index into World.Cells.
type Tile struct {
	ID        int
	Neighbors []int // ascending-sorted on geodesic, fixed order on torus
	Position  Position

	Geology    Geology
	Climate    Climate
	Biome      Biome
	Resources  Resources
	Weather    Weather
	Conditions Conditions
}

// Clone returns a deep copy of the tile suitable for use as a pre-phase
// snapshot entry (neighbors and deposit slices are copied, not aliased).
func (t *Tile) Clone() Tile {
	c := *t
	if t.Neighbors != nil {
		c.Neighbors = append([]int(nil), t.Neighbors...)
	}
	if t.Resources.Deposits != nil {
		c.Resources.Deposits = append([]Deposit(nil), t.Resources.Deposits...)
	}
	return c
}
