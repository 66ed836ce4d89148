package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/telemetry"
)

// maxCatchUpTicks bounds how many ticks one Advance call may run at speed 1,
// so a stalled frame does not trigger a long burst of steps.
const maxCatchUpTicks = 5

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Config          *config.Config
	Seed            int64  // 0 = time-based
	RunID           string // tags every stats row and bookmark
	LogStats        bool
	OutputDir       string // empty disables CSV output
	StepsPerUpdate  int    // ticks per UpdateHeadless call
	CheckInvariants bool   // verify grid/list consistency after every tick
	StatsCallback   func(telemetry.WindowStats)
	OnRemove        func(Removal)
}

// Runner drives a Simulation at a fixed tick cadence and handles telemetry.
type Runner struct {
	cfg  *config.Config
	sim  *Simulation
	rng  *rand.Rand
	seed int64

	runID           string
	logStats        bool
	checkInvariants bool
	statsCallback   func(telemetry.WindowStats)
	onRemove        func(Removal)

	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector

	width, height  float64
	stepsPerUpdate int

	// Cadence
	paused   bool
	speed    int
	lastTime time.Time
	accum    time.Duration

	lastStats    telemetry.WindowStats
	hasStats     bool
	invariantErr error
}

// NewRunner creates a runner with a freshly populated simulation sized to
// the configured screen.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	r := &Runner{
		cfg:             cfg,
		rng:             rand.New(rand.NewSource(seed)),
		seed:            seed,
		runID:           opts.RunID,
		logStats:        opts.LogStats,
		checkInvariants: opts.CheckInvariants,
		statsCallback:   opts.StatsCallback,
		onRemove:        opts.OnRemove,
		perf:            telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager:   om,
		width:           float64(cfg.Screen.Width),
		height:          float64(cfg.Screen.Height),
		stepsPerUpdate:  stepsPerUpdate,
		speed:           1,
	}

	if err := r.Reseed(); err != nil {
		om.Close()
		return nil, err
	}
	return r, nil
}

// Reseed replaces the simulation with a freshly populated one at the
// current size. The random stream continues from where it was.
func (r *Runner) Reseed() error {
	sim, err := NewSimulation(r.width, r.height, r.cfg.Grid.CellSize, Options{
		Params:      ParamsFromConfig(r.cfg),
		Rand:        r.rng,
		OnRemove:    r.onRemove,
		Perf:        r.perf,
		StatsWindow: int32(r.cfg.Telemetry.StatsWindow),
	})
	if err != nil {
		return err
	}
	sim.PopulateRandom(r.cfg.Population.PlantFraction, r.cfg.Population.AnimalFraction)

	r.sim = sim
	r.bookmarks = telemetry.NewBookmarkDetector(r.cfg.Telemetry.BookmarkHistorySize, r.cfg.Bookmarks)
	r.accum = 0
	r.hasStats = false

	slog.Info("simulation seeded",
		"cols", sim.Cols(),
		"rows", sim.Rows(),
		"plants", sim.PlantCount(),
		"animals", sim.AnimalCount(),
	)
	return nil
}

// Advance runs every tick that has come due since the previous call and
// returns how many ran. The first call only starts the clock.
func (r *Runner) Advance(now time.Time) int {
	if r.lastTime.IsZero() || r.paused {
		r.lastTime = now
		return 0
	}

	elapsed := now.Sub(r.lastTime)
	r.lastTime = now
	if elapsed < 0 {
		return 0
	}
	r.accum += elapsed * time.Duration(r.speed)

	interval := r.cfg.Derived.TickInterval
	due := int(r.accum / interval)
	r.accum -= time.Duration(due) * interval

	if limit := maxCatchUpTicks * r.speed; due > limit {
		due = limit
		r.accum = 0
	}

	for i := 0; i < due; i++ {
		r.step()
	}
	return due
}

// UpdateHeadless runs StepsPerUpdate ticks immediately, ignoring cadence
// and pause.
func (r *Runner) UpdateHeadless() {
	for i := 0; i < r.stepsPerUpdate; i++ {
		r.step()
	}
}

// StepOnce runs a single tick regardless of pause.
func (r *Runner) StepOnce() {
	r.step()
}

func (r *Runner) step() {
	r.perf.StartTick()
	r.sim.Step()

	r.perf.StartPhase(telemetry.PhaseTelemetry)
	r.flushTelemetry()

	if r.checkInvariants {
		if err := r.sim.CheckInvariants(); err != nil {
			if r.invariantErr == nil {
				slog.Error("invariant violated", "tick", r.sim.Tick(), "error", err)
			}
			r.invariantErr = err
		}
	}
	r.perf.EndTick()
}

// Resize adapts the simulation to a new viewport size. A non-positive size,
// as reported by a minimized window, is ignored.
func (r *Runner) Resize(widthPx, heightPx float64) {
	if !(widthPx > 0 && heightPx > 0) {
		return
	}
	if widthPx == r.width && heightPx == r.height {
		return
	}
	r.width, r.height = widthPx, heightPx
	r.sim.Resize(widthPx, heightPx)
	slog.Info("resized", "cols", r.sim.Cols(), "rows", r.sim.Rows(), "plants", r.sim.PlantCount(), "animals", r.sim.AnimalCount())
}

// TogglePause flips the paused state.
func (r *Runner) TogglePause() { r.paused = !r.paused }

// SetPaused sets the paused state.
func (r *Runner) SetPaused(p bool) { r.paused = p }

// Paused reports whether the cadence is paused.
func (r *Runner) Paused() bool { return r.paused }

// SetSpeed sets the tick rate multiplier, clamped to [1, sim.max_speed].
func (r *Runner) SetSpeed(speed int) {
	r.speed = min(max(speed, 1), r.cfg.Sim.MaxSpeed)
}

// Speed returns the tick rate multiplier.
func (r *Runner) Speed() int { return r.speed }

// MaxSpeed returns the largest allowed speed multiplier.
func (r *Runner) MaxSpeed() int { return r.cfg.Sim.MaxSpeed }

// Sim returns the current simulation. It changes after Reseed.
func (r *Runner) Sim() *Simulation { return r.sim }

// Tick returns the current simulation tick.
func (r *Runner) Tick() int32 { return r.sim.Tick() }

// Seed returns the seed of the random stream.
func (r *Runner) Seed() int64 { return r.seed }

// RunID returns the run identifier.
func (r *Runner) RunID() string { return r.runID }

// Perf returns the performance collector.
func (r *Runner) Perf() *telemetry.PerfCollector { return r.perf }

// LastStats returns the most recent telemetry window, if any.
func (r *Runner) LastStats() (telemetry.WindowStats, bool) { return r.lastStats, r.hasStats }

// Err returns the first invariant violation seen, if checking is enabled.
func (r *Runner) Err() error { return r.invariantErr }

// Unload closes output files.
func (r *Runner) Unload() {
	if err := r.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
