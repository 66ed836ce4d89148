package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9},
		{"clamped high", []float64{1, 2}, 1.5, 2},
		{"clamped low", []float64{1, 2}, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	d := ComputeDistribution(values)

	if math.Abs(d.Mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", d.Mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(d.Std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.2872", d.Std)
	}
	if math.Abs(d.P10-0.1) > 0.001 || math.Abs(d.P50-0.5) > 0.001 || math.Abs(d.P90-0.9) > 0.001 {
		t.Errorf("percentiles = %v/%v/%v, want 0.1/0.5/0.9", d.P10, d.P50, d.P90)
	}
	// Input must not be reordered.
	if values[0] != 1.0 {
		t.Error("ComputeDistribution sorted its input in place")
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	if d := ComputeDistribution(nil); d != (Distribution{}) {
		t.Errorf("empty input = %+v, want zero", d)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10)

	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window end")
	}

	c.RecordPlantGrown()
	c.RecordPlantGrown()
	c.RecordPlantEaten()
	c.RecordMove()
	c.RecordFailedMove()
	c.RecordStay()
	c.RecordStarved()
	c.RecordMissedMeal()

	sample := []AnimalSample{
		{Energy: 10, Hunger: 2, Laziness: 0.2, WanderLust: 0.4},
		{Energy: 20, Hunger: 4, Laziness: 0.4, WanderLust: 0.6},
	}
	s := c.Flush(10, 5, 2, 100, sample)

	if s.WindowStartTick != 0 || s.WindowEndTick != 10 {
		t.Errorf("window = [%d,%d], want [0,10]", s.WindowStartTick, s.WindowEndTick)
	}
	if s.PlantsGrown != 2 || s.PlantsEaten != 1 || s.Moves != 1 || s.FailedMoves != 1 || s.Stays != 1 || s.Starved != 1 || s.MissedMeals != 1 {
		t.Errorf("counters not carried into stats: %+v", s)
	}
	if math.Abs(s.PlantCover-0.05) > 1e-9 {
		t.Errorf("plant cover = %v, want 0.05", s.PlantCover)
	}
	if math.Abs(s.EnergyMean-15) > 1e-9 || math.Abs(s.HungerMean-3) > 1e-9 {
		t.Errorf("energy mean = %v, hunger mean = %v", s.EnergyMean, s.HungerMean)
	}
	if math.Abs(s.LazinessMean-0.3) > 1e-9 || math.Abs(s.WanderLustMean-0.5) > 1e-9 {
		t.Errorf("trait means = %v/%v", s.LazinessMean, s.WanderLustMean)
	}

	// Counters reset and the next window starts where this one ended.
	next := c.Flush(20, 0, 0, 100, nil)
	if next.PlantsGrown != 0 || next.Moves != 0 || next.WindowStartTick != 10 {
		t.Errorf("collector did not reset: %+v", next)
	}
	if c.ShouldFlush(25) {
		t.Error("window should restart after flush")
	}
}
