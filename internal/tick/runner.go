// Package tick drives the per-tick simulation loop: macro weather, the
// four ordered rule phases, season advancement, and the statistics/diff
// bookkeeping consumed by snapshotting and broadcast.
package tick

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"worldcell/internal/debug"
	"worldcell/internal/diffbuilder"
	"worldcell/internal/errors"
	"worldcell/internal/macroweather"
	"worldcell/internal/phase"
	"worldcell/internal/spatialgrid"
	"worldcell/internal/statistics"
	"worldcell/internal/worldmodel"
)

// State is the current state of the tick runner.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateStopping State = "stopping"
	StateError    State = "error"
)

// Evaluators holds the four phase evaluators in pipeline order. Weather is
// expected to be a weatherrule.Evaluator; Conditions, Terrain, and
// Resources are expected to be script.Evaluator instances loaded from
// their respective rule directories, but any phase.Evaluator works.
type Evaluators struct {
	Weather    phase.Evaluator
	Conditions phase.Evaluator
	Terrain    phase.Evaluator
	Resources  phase.Evaluator
}

// Result is everything produced by one tick, ready for snapshotting and
// broadcast.
type Result struct {
	Tick       int
	Season     worldmodel.Season
	RuleErrors []phase.RuleError
	Cascaded   map[worldmodel.Phase]bool
	Statistics statistics.Snapshot
	Diff       []diffbuilder.TileChange
}

// Handler is called once per completed tick.
type Handler func(Result)

// Config controls the real-time pacing of Start/Stop operation. It has no
// bearing on Step, which advances synchronously regardless of pacing.
type Config struct {
	TickInterval time.Duration
}

// Runner owns a World and advances it tick by tick, either on a fixed
// real-time cadence (Start/Stop) or synchronously (Step), applying the
// same tickLocked logic either way so results are identical.
type Runner struct {
	mu sync.Mutex

	world      *worldmodel.World
	grid       *spatialgrid.Grid
	evaluators Evaluators
	config     Config

	state   State
	handler Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner builds a Runner over the given world, using grid for macro
// weather's nearest-cell lookups.
func NewRunner(world *worldmodel.World, grid *spatialgrid.Grid, evaluators Evaluators, config Config) *Runner {
	return &Runner{
		world:      world,
		grid:       grid,
		evaluators: evaluators,
		config:     config,
		state:      StateIdle,
	}
}

// SetHandler sets the callback invoked after each tick completes.
func (r *Runner) SetHandler(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

// State returns the runner's current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins advancing the world once per TickInterval in a background
// goroutine. A no-op if already running.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return nil
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.state = StateRunning
	r.mu.Unlock()

	r.wg.Add(1)
	go r.runLoop()
	return nil
}

// Stop halts the background loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.state != StateRunning && r.state != StatePaused {
		r.mu.Unlock()
		return
	}
	r.state = StateStopping
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	r.mu.Lock()
	r.state = StateIdle
	r.mu.Unlock()
}

// Pause suspends tick advancement without stopping the goroutine.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		r.state = StatePaused
	}
}

// Resume resumes a paused runner.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StatePaused {
		r.state = StateRunning
	}
}

func (r *Runner) runLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			state := r.state
			r.mu.Unlock()
			if state != StateRunning {
				continue
			}
			if _, err := r.tick(); err != nil {
				r.mu.Lock()
				r.state = StateError
				r.mu.Unlock()
				return
			}
		}
	}
}

// Step synchronously advances the world by n ticks, returning the last
// tick's Result. Intended for CLI single-shot advancement and for tests
// that need deterministic, non-goroutine-paced execution.
func (r *Runner) Step(n int) (Result, error) {
	var last Result
	for i := 0; i < n; i++ {
		res, err := r.tick()
		if err != nil {
			return last, err
		}
		last = res
	}
	return last, nil
}

func (r *Runner) tick() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickLocked()
}

// tickLocked runs exactly one tick: macro weather, the four rule phases in
// order, season/ticks_in_current_biome advancement, then statistics and
// diff computation against the pre-tick state. Assumes r.mu held.
func (r *Runner) tickLocked() (Result, error) {
	defer debug.Time(debug.Perf, "tick")()

	w := r.world
	if len(w.Cells) == 0 {
		return Result{}, ErrNotInitialized
	}
	preTick := cloneCells(w.Cells)

	macroweather.Step(&w.MacroWeather, w.Cells, r.grid)
	debug.Log(debug.Macro, "tick %d: %d active pressure systems", w.TickCount, len(w.MacroWeather.Systems))

	cascaded := make(map[worldmodel.Phase]bool)
	var allErrors []phase.RuleError

	runPhase := func(kind worldmodel.Phase, evaluator phase.Evaluator) phase.Result {
		if evaluator == nil {
			return phase.Result{}
		}
		snap := cloneCells(w.Cells)
		res := phase.Run(kind, snap, w.Cells, evaluator, w.Season, int64(w.TickCount))
		allErrors = append(allErrors, res.Errors...)
		if res.Cascaded {
			cascaded[kind] = true
			log.Warn().Str("phase", kind.String()).Int("errors", len(res.Errors)).Int("cells", len(snap)).
				Msg(errors.Cascaded(kind.String(), len(res.Errors), len(snap)).Message)
		}
		return res
	}

	runPhase(worldmodel.PhaseWeather, r.evaluators.Weather)
	runPhase(worldmodel.PhaseConditions, r.evaluators.Conditions)
	terrainResult := runPhase(worldmodel.PhaseTerrain, r.evaluators.Terrain)
	runPhase(worldmodel.PhaseResources, r.evaluators.Resources)

	if terrainResult.RejectedTransitions > 0 {
		log.Warn().Int("rejected", terrainResult.RejectedTransitions).
			Msg(errors.RejectedTransitions(terrainResult.RejectedTransitions).Message)
	}

	for i := range w.Cells {
		if terrainResult.Transitioned != nil && terrainResult.Transitioned[i] {
			continue // already reset to 0 by the Terrain phase's apply step
		}
		w.Cells[i].Biome.TicksInCurrentBiome++
	}

	w.TickCount++
	if w.SeasonLength > 0 && w.TickCount%w.SeasonLength == 0 {
		w.Season = w.Season.Next()
	}

	result := Result{
		Tick:       w.TickCount,
		Season:     w.Season,
		RuleErrors: allErrors,
		Cascaded:   cascaded,
		Statistics: statistics.Compute(w.Cells),
		Diff:       diffbuilder.Build(preTick, w.Cells),
	}
	if r.handler != nil {
		r.handler(result)
	}
	return result, nil
}

func cloneCells(cells []worldmodel.Tile) []worldmodel.Tile {
	out := make([]worldmodel.Tile, len(cells))
	for i := range cells {
		out[i] = cells[i].Clone()
	}
	return out
}

// ErrNotInitialized is returned by Step on a Runner whose world has no
// cells. Start itself returns nil; its loop's first tick then fails with
// this error and the runner enters StateError.
var ErrNotInitialized = fmt.Errorf("tick: world has no cells")
