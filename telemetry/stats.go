package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	RunID           string `csv:"run_id"`
	WindowStartTick int32  `csv:"-"`
	WindowEndTick   int32  `csv:"window_end"`

	// Population at window end
	Plants     int     `csv:"plants"`
	Animals    int     `csv:"animals"`
	PlantCover float64 `csv:"plant_cover"`

	// Events during window
	PlantsGrown int `csv:"plants_grown"`
	PlantsEaten int `csv:"plants_eaten"`
	MissedMeals int `csv:"missed_meals"`
	Moves       int `csv:"moves"`
	FailedMoves int `csv:"failed_moves"`
	Stays       int `csv:"stays"`
	Starved     int `csv:"starved"`
	Evicted     int `csv:"evicted"`
	Born        int `csv:"born"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Ticks since last meal
	HungerMean float64 `csv:"hunger_mean"`
	HungerP90  float64 `csv:"hunger_p90"`

	// Trait means of the survivors
	LazinessMean   float64 `csv:"laziness_mean"`
	WanderLustMean float64 `csv:"wander_lust_mean"`
}

// Distribution summarises a sample.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Percentile returns the empirical p-quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, population std and percentiles.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)

	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("plants", s.Plants),
		slog.Int("animals", s.Animals),
		slog.Float64("plant_cover", s.PlantCover),
		slog.Int("plants_grown", s.PlantsGrown),
		slog.Int("plants_eaten", s.PlantsEaten),
		slog.Int("missed_meals", s.MissedMeals),
		slog.Int("moves", s.Moves),
		slog.Int("failed_moves", s.FailedMoves),
		slog.Int("stays", s.Stays),
		slog.Int("starved", s.Starved),
		slog.Int("evicted", s.Evicted),
		slog.Int("born", s.Born),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("hunger_p90", s.HungerP90),
		slog.Float64("laziness_mean", s.LazinessMean),
		slog.Float64("wander_lust_mean", s.WanderLustMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
