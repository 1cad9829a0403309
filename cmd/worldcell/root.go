package main

import (
	"github.com/spf13/cobra"

	"worldcell/internal/config"
	"worldcell/internal/logging"
)

var configFile string

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "worldcell",
	Short: "A deterministic, perpetual world-cell simulator.",
	Long: `worldcell generates a toroidal or geodesic grid of cells and
advances it one tick at a time through macro weather and four ordered
rule phases (Weather, Conditions, Terrain, Resources), persisting periodic
snapshots and broadcasting live diffs over WebSocket.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logging.InitLogger(cfg.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./worldcell.toml", "configuration file path")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(snapshotsCmd)
}
