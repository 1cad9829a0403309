// Command worldcell generates, runs, and inspects a deterministic
// world-cell simulation: a fixed topology of cells advanced one tick at a
// time through macro weather and the four ordered rule phases.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"worldcell/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Fatal() {
			log.Error().Err(appErr).Msg("fatal")
			os.Exit(1)
		}
		log.Error().Err(err).Msg("worldcell: command failed")
		os.Exit(1)
	}
}
