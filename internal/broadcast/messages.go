package broadcast

import (
	"worldcell/internal/diffbuilder"
	"worldcell/internal/statistics"
	"worldcell/internal/worldmodel"
)

// WorldSnapshot is sent once to each newly connected client: the full
// world state needed to render without waiting for a diff stream.
type WorldSnapshot struct {
	MessageType  string             `json:"message_type"`
	WorldID      string             `json:"world_id"`
	Name         string             `json:"name"`
	Tick         int                `json:"tick"`
	Season       worldmodel.Season  `json:"season"`
	SeasonLength int                `json:"season_length"`
	TileCount    int                `json:"tile_count"`
	Tiles        []worldmodel.Tile  `json:"tiles"`
}

// NewWorldSnapshot builds the one-shot full-state message for a new client.
func NewWorldSnapshot(w *worldmodel.World) WorldSnapshot {
	return WorldSnapshot{
		MessageType:  "WorldSnapshot",
		WorldID:      w.ID.String(),
		Name:         w.Name,
		Tick:         w.TickCount,
		Season:       w.Season,
		SeasonLength: w.SeasonLength,
		TileCount:    len(w.Cells),
		Tiles:        w.Cells,
	}
}

// TickDiff is broadcast after every tick: only the tiles that changed, and
// only the layers within each that changed.
type TickDiff struct {
	MessageType    string                      `json:"message_type"`
	Tick           int                         `json:"tick"`
	Season         worldmodel.Season           `json:"season"`
	ChangedTiles   []diffbuilder.TileChange    `json:"changed_tiles"`
	Statistics     statistics.Snapshot         `json:"statistics"`
	PressureSystems []worldmodel.PressureSystem `json:"pressure_systems"`
}

// NewTickDiff assembles the per-tick broadcast message.
func NewTickDiff(tick int, season worldmodel.Season, changed []diffbuilder.TileChange, stats statistics.Snapshot, systems []worldmodel.PressureSystem) TickDiff {
	return TickDiff{
		MessageType:     "TickDiff",
		Tick:            tick,
		Season:          season,
		ChangedTiles:    changed,
		Statistics:      stats,
		PressureSystems: systems,
	}
}

// HealthStatus is the /health endpoint's JSON body.
type HealthStatus struct {
	Tick             int               `json:"tick"`
	TickRate         float64           `json:"tick_rate"`
	DiversityIndex   float64           `json:"diversity_index"`
	RuleErrors       int               `json:"rule_errors"`
	SnapshotAgeTicks int               `json:"snapshot_age_ticks"`
	TileCount        int               `json:"tile_count"`
	Season           worldmodel.Season `json:"season"`
}
