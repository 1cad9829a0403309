package main

import (
	"context"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"worldcell/internal/broadcast"
	appErrors "worldcell/internal/errors"
	"worldcell/internal/script"
	"worldcell/internal/snapshot"
	"worldcell/internal/spatialgrid"
	"worldcell/internal/tick"
	"worldcell/internal/weatherrule"
	"worldcell/internal/worldgen"
	"worldcell/internal/worldmodel"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load the latest valid snapshot (or generate one) and tick forever.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorld(cmd.Context())
	},
}

func loadOrGenerateWorld(store *snapshot.Store) (*worldmodel.World, error) {
	world, err := store.LoadLatestValid()
	if err == nil {
		return world, nil
	}
	log.Warn().Err(err).Msg("run: no valid snapshot on disk, generating a fresh world")
	world, genErr := worldgen.Generate(cfg.Generation.GenerationParams())
	if genErr != nil {
		return nil, genErr
	}
	world.SeasonLength = cfg.SeasonLength
	return world, nil
}

func loadEvaluators() (tick.Evaluators, error) {
	conditionsRules, err := script.LoadDir(filepath.Join(cfg.RuleDirectory, "conditions"))
	if err != nil {
		return tick.Evaluators{}, appErrors.RuleEvaluation(-1, "loading conditions rules", err)
	}
	terrainRules, err := script.LoadDir(filepath.Join(cfg.RuleDirectory, "terrain"))
	if err != nil {
		return tick.Evaluators{}, appErrors.RuleEvaluation(-1, "loading terrain rules", err)
	}
	resourceRules, err := script.LoadDir(filepath.Join(cfg.RuleDirectory, "resources"))
	if err != nil {
		return tick.Evaluators{}, appErrors.RuleEvaluation(-1, "loading resources rules", err)
	}

	return tick.Evaluators{
		Weather:    weatherrule.Evaluator{},
		Conditions: script.Evaluator{PhaseName: "conditions", Rules: conditionsRules},
		Terrain:    script.Evaluator{PhaseName: "terrain", Rules: terrainRules},
		Resources:  script.Evaluator{PhaseName: "resources", Rules: resourceRules},
	}, nil
}

func runWorld(ctx context.Context) error {
	store, err := snapshot.New(cfg.SnapshotDir)
	if err != nil {
		return err
	}

	world, err := loadOrGenerateWorld(store)
	if err != nil {
		return err
	}

	positions := make([]worldmodel.Position, len(world.Cells))
	for i, c := range world.Cells {
		positions[i] = c.Position
	}
	grid := spatialgrid.Build(positions)

	evaluators, err := loadEvaluators()
	if err != nil {
		return err
	}

	runner := tick.NewRunner(world, grid, evaluators, tick.Config{
		TickInterval: time.Duration(float64(time.Second) / cfg.TickRateHz),
	})

	hub := broadcast.NewHub()
	go hub.Run()
	server := broadcast.NewServer(hub)
	server.Seed(world)

	prune := cron.New()
	// Wall-clock pruning is a safety net independent of tick count: if the
	// tick loop stalls or snapshot_interval is large in wall-clock terms,
	// old snapshots still get reaped on a cadence.
	if _, err := prune.AddFunc("@every 10m", func() {
		if _, err := store.Prune(cfg.MaxSnapshots); err != nil {
			log.Warn().Err(err).Msg("run: scheduled snapshot prune failed")
		}
	}); err != nil {
		return err
	}
	prune.Start()
	defer prune.Stop()

	lastTick := time.Now()
	runner.SetHandler(func(res tick.Result) {
		now := time.Now()
		elapsed := now.Sub(lastTick)
		lastTick = now

		diff := broadcast.NewTickDiff(res.Tick, res.Season, res.Diff, res.Statistics, world.MacroWeather.Systems)
		server.PublishTick(world, diff, elapsed, len(res.RuleErrors))
		server.SetDiversityIndex(res.Statistics.DiversityIndex)

		cascadedCount := 0
		for _, v := range res.Cascaded {
			if v {
				cascadedCount++
			}
		}
		broadcast.RecordTick(elapsed.Seconds(), len(res.RuleErrors), cascadedCount)

		if cfg.SnapshotInterval > 0 && res.Tick%cfg.SnapshotInterval == 0 {
			path, err := store.Save(world, time.Now().Unix())
			if err != nil {
				log.Error().Err(err).Msg("run: snapshot save failed")
				return
			}
			server.RecordSnapshotSaved(res.Tick)
			log.Debug().Str("path", path).Int("tick", res.Tick).Msg("snapshot saved")
			if _, err := store.Prune(cfg.MaxSnapshots); err != nil {
				log.Warn().Err(err).Msg("run: snapshot prune failed")
			}
		}
	})

	if err := runner.Start(); err != nil {
		return err
	}
	defer runner.Stop()

	httpServer := &http.Server{
		Addr:    cfg.WebsocketBind + ":" + strconv.Itoa(cfg.WebsocketPort),
		Handler: server.Router([]string{"*"}),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("run: http server failed")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info().Msg("run: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
