// Package config loads the TOML configuration file that drives
// cmd/worldcell: engine scheduling parameters, network bind addresses, and
// world generation parameters. Every field is optional with a documented
// default; Validate reports the first out-of-range field it finds.
package config

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/BurntSushi/toml"

	"worldcell/internal/worldmodel"
)

// Topology holds the nested [topology] table of the generation config.
type Topology struct {
	Mode             string `toml:"mode"`
	SubdivisionLevel int    `toml:"subdivision_level"`
}

// Generation holds the parameters that shape a freshly generated world.
type Generation struct {
	Seed                 uint64   `toml:"seed"`
	TileCount            int      `toml:"tile_count"`
	OceanRatio           float64  `toml:"ocean_ratio"`
	MountainRatio        float64  `toml:"mountain_ratio"`
	ElevationRoughness   float64  `toml:"elevation_roughness"`
	ClimateBands         bool     `toml:"climate_bands"`
	ResourceDensity      float64  `toml:"resource_density"`
	InitialBiomeMaturity float64  `toml:"initial_biome_maturity"`
	Topology             Topology `toml:"topology"`
}

// Config is the complete engine configuration.
type Config struct {
	TickRateHz       float64 `toml:"tick_rate_hz"`
	SnapshotInterval int     `toml:"snapshot_interval"`
	MaxSnapshots     int     `toml:"max_snapshots"`
	SnapshotDir      string  `toml:"snapshot_directory"`
	WebsocketPort    int     `toml:"websocket_port"`
	WebsocketBind    string  `toml:"websocket_bind"`
	RuleDirectory    string  `toml:"rule_directory"`
	LogLevel         string  `toml:"log_level"`
	SeasonLength     int     `toml:"season_length"`
	RuleTimeoutMs    int     `toml:"rule_timeout_ms"`

	Generation Generation `toml:"generation"`
}

// Default returns a Config with every documented default per §6 of the
// configuration surface.
func Default() *Config {
	return &Config{
		TickRateHz:       10,
		SnapshotInterval: 100,
		MaxSnapshots:     10,
		SnapshotDir:      "./snapshots",
		WebsocketPort:    8080,
		WebsocketBind:    "0.0.0.0",
		RuleDirectory:    "./rules",
		LogLevel:         "info",
		SeasonLength:     1000,
		RuleTimeoutMs:    50,
		Generation: Generation{
			Seed:                 0,
			TileCount:            2000,
			OceanRatio:           0.35,
			MountainRatio:        0.1,
			ElevationRoughness:   0.5,
			ClimateBands:         false,
			ResourceDensity:      0.2,
			InitialBiomeMaturity: 0.5,
			Topology: Topology{
				Mode:             "flat",
				SubdivisionLevel: 4,
			},
		},
	}
}

// Load reads and parses a TOML configuration file, starting from Default
// so any field the file omits keeps its documented default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Generation.Seed == 0 {
		cfg.Generation.Seed = rand.Uint64()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validLogLevels = map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "trace": true}

// Validate reports the first out-of-range or malformed field, named so a
// caller can print a message pointing at the offending field.
func (c *Config) Validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("config: tick_rate_hz must be > 0, got %f", c.TickRateHz)
	}
	if c.WebsocketPort < 1024 || c.WebsocketPort > 65535 {
		return fmt.Errorf("config: websocket_port must be in [1024,65535], got %d", c.WebsocketPort)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("config: log_level must be one of error|warn|info|debug|trace, got %q", c.LogLevel)
	}
	if c.SeasonLength <= 0 {
		return fmt.Errorf("config: season_length must be > 0, got %d", c.SeasonLength)
	}
	if c.MaxSnapshots <= 0 {
		return fmt.Errorf("config: max_snapshots must be > 0, got %d", c.MaxSnapshots)
	}

	g := c.Generation
	if g.TileCount < 100 {
		return fmt.Errorf("config: generation.tile_count must be >= 100, got %d", g.TileCount)
	}
	if g.OceanRatio < 0 || g.OceanRatio > 1 {
		return fmt.Errorf("config: generation.ocean_ratio must be in [0,1], got %f", g.OceanRatio)
	}
	if g.MountainRatio < 0 || g.MountainRatio > 0.5 {
		return fmt.Errorf("config: generation.mountain_ratio must be in [0,0.5], got %f", g.MountainRatio)
	}
	if g.ElevationRoughness < 0 || g.ElevationRoughness > 1 {
		return fmt.Errorf("config: generation.elevation_roughness must be in [0,1], got %f", g.ElevationRoughness)
	}
	if g.ResourceDensity < 0 || g.ResourceDensity > 1 {
		return fmt.Errorf("config: generation.resource_density must be in [0,1], got %f", g.ResourceDensity)
	}
	if g.InitialBiomeMaturity < 0 || g.InitialBiomeMaturity > 1 {
		return fmt.Errorf("config: generation.initial_biome_maturity must be in [0,1], got %f", g.InitialBiomeMaturity)
	}
	if g.Topology.Mode != "flat" && g.Topology.Mode != "geodesic" {
		return fmt.Errorf("config: generation.topology.mode must be flat or geodesic, got %q", g.Topology.Mode)
	}
	if g.Topology.Mode == "geodesic" && (g.Topology.SubdivisionLevel < 1 || g.Topology.SubdivisionLevel > 7) {
		return fmt.Errorf("config: generation.topology.subdivision_level must be in [1,7], got %d", g.Topology.SubdivisionLevel)
	}
	return nil
}

// GenerationParams converts the TOML-decoded generation config to the
// worldmodel type worldgen.Generate accepts.
func (g Generation) GenerationParams() worldmodel.GenerationParams {
	mode := worldmodel.TopologyFlat
	if g.Topology.Mode == "geodesic" {
		mode = worldmodel.TopologyGeodesic
	}
	return worldmodel.GenerationParams{
		Seed:                 g.Seed,
		TileCount:            g.TileCount,
		OceanRatio:           g.OceanRatio,
		MountainRatio:        g.MountainRatio,
		ElevationRoughness:   g.ElevationRoughness,
		ClimateBands:         g.ClimateBands,
		ResourceDensity:      g.ResourceDensity,
		InitialBiomeMaturity: g.InitialBiomeMaturity,
		TopologyMode:         mode,
		TopologySubdivision:  g.Topology.SubdivisionLevel,
	}
}
