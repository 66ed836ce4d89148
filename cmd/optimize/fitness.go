package main

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/game"
	"github.com/pthm-cable/meadow/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the stability score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	meanLifespan float64                 // mean animal lifespan in ticks
	windowStats  []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Each seed runs in its own goroutine with its own Runner.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]seedResult, len(fe.seeds))
	g, _ := errgroup.WithContext(context.Background())

	for i, seed := range fe.seeds {
		g.Go(func() error {
			result, err := fe.runSimulation(cfg, seed)
			if err != nil {
				return err
			}
			quality := computeQuality(result.windowStats)
			results[i] = seedResult{
				fitness: computeFitness(result.meanLifespan, quality),
				quality: quality,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// An unusable configuration is the worst possible outcome.
		return 0
	}

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until every animal is gone
// or maxTicks is reached. cfg is shared read-only between goroutines.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (*runResult, error) {
	result := &runResult{}

	r, err := game.NewRunner(game.RunnerOptions{
		Config:         cfg,
		Seed:           seed,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer r.Unload()

	sim := r.Sim()
	for sim.Tick() < fe.maxTicks && sim.AnimalCount() > 0 {
		r.UpdateHeadless()
	}

	result.meanLifespan = sim.Lifetimes().MeanLifespan(sim.Tick())
	return result, nil
}

// copyConfig creates a copy of the base config. Config holds only values,
// so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(meanLifespan × (1.0 + 0.2 × quality))
// Lifespan dominates; quality adds up to 20% bonus to differentiate
// configs with similar lifespans.
func computeFitness(meanLifespan, quality float64) float64 {
	return -(meanLifespan * (1.0 + 0.2*quality))
}

const (
	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinAnimals    = 3 // exclude windows with fewer animals
)

// computeQuality scores population stability ∈ [0, 1] from the animal
// counts of each window past warmup.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	counts := make([]float64, 0, len(windows))
	var cover []float64
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Animals < qualityMinAnimals {
			continue
		}
		counts = append(counts, float64(w.Animals))
		cover = append(cover, w.PlantCover)
	}
	if len(counts) < 2 {
		return 0
	}

	cvAnimals := cv(counts)
	cvCover := cv(cover)
	return clamp01(math.Exp(-(cvAnimals*cvAnimals + cvCover*cvCover)))
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
