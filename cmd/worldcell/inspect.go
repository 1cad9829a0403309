package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldcell/internal/snapshot"
	"worldcell/internal/statistics"
	"worldcell/internal/worldmodel"
)

var inspectCellID int

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot-path>",
	Short: "Print world-level statistics, or one cell's full layer state, from a snapshot file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		world, err := snapshot.Load(args[0])
		if err != nil {
			return err
		}

		if inspectCellID >= 0 {
			return inspectCell(world, inspectCellID)
		}
		return inspectWorld(world)
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectCellID, "cell", -1, "print this cell's full state instead of world statistics")
}

func inspectWorld(world *worldmodel.World) error {
	summary := struct {
		ID           string              `json:"id"`
		Tick         int                 `json:"tick"`
		Season       worldmodel.Season   `json:"season"`
		TopologyKind worldmodel.TopologyKind `json:"topology_kind"`
		TileCount    int                 `json:"tile_count"`
		Statistics   statistics.Snapshot `json:"statistics"`
	}{
		ID:           world.ID.String(),
		Tick:         world.TickCount,
		Season:       world.Season,
		TopologyKind: world.TopologyKind,
		TileCount:    len(world.Cells),
		Statistics:   statistics.Compute(world.Cells),
	}
	return printJSON(summary)
}

func inspectCell(world *worldmodel.World, id int) error {
	if id < 0 || id >= len(world.Cells) {
		return fmt.Errorf("inspect: cell %d out of range [0, %d)", id, len(world.Cells))
	}
	return printJSON(world.Cells[id])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
