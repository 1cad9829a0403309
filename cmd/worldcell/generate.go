package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"worldcell/internal/snapshot"
	"worldcell/internal/worldgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh world and write its initial snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		world, err := worldgen.Generate(cfg.Generation.GenerationParams())
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		world.SeasonLength = cfg.SeasonLength

		store, err := snapshot.New(cfg.SnapshotDir)
		if err != nil {
			return err
		}
		path, err := store.Save(world, time.Now().Unix())
		if err != nil {
			return err
		}

		log.Info().Str("path", path).Int("cells", len(world.Cells)).Str("topology", string(world.TopologyKind)).
			Msg("world generated")
		return nil
	},
}
