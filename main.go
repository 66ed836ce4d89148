package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	checkInvariants := flag.Bool("check-invariants", false, "Verify grid and entity list consistency after every tick")

	flag.Parse()

	runID := uuid.NewString()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run_id", runID)
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.RunnerOptions{
		Config:          cfg,
		Seed:            rngSeed,
		RunID:           runID,
		LogStats:        *logStats,
		OutputDir:       *outputDir,
		StepsPerUpdate:  *stepsPerUpdate,
		CheckInvariants: *checkInvariants,
	}

	var err error
	if *headless {
		err = runHeadless(opts, *maxTicks)
	} else {
		err = runWindowed(cfg, opts, *maxTicks)
	}
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless is a pure CPU simulation, no raylib needed.
func runHeadless(opts game.RunnerOptions, maxTicks int) error {
	r, err := game.NewRunner(opts)
	if err != nil {
		return err
	}
	defer r.Unload()

	slog.Info("starting headless simulation",
		"seed", r.Seed(),
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		r.UpdateHeadless()

		if err := r.Err(); err != nil {
			r.LogWorldState()
			return err
		}
		if maxTicks > 0 && int(r.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", r.Tick())
			break
		}
	}
	r.LogWorldState()
	return nil
}

func runWindowed(cfg *config.Config, opts game.RunnerOptions, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Meadow")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	r, err := game.NewRunner(opts)
	if err != nil {
		return err
	}
	defer r.Unload()

	slog.Info("starting windowed simulation", "seed", r.Seed(), "max_ticks", maxTicks)

	newWindow(r, int32(cfg.Screen.Width), int32(cfg.Screen.Height)).run(maxTicks)

	r.LogWorldState()
	return r.Err()
}
