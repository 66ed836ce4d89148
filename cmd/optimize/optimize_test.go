package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/telemetry"
)

func TestParamVectorNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(def))
	for i, spec := range pv.Specs {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: roundtrip %v -> %v", spec.Name, def[i], back[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	low := make([]float64, pv.Dim())
	high := make([]float64, pv.Dim())
	for i := range low {
		low[i] = -1e6
		high[i] = 1e6
	}

	cl := pv.Clamp(low)
	ch := pv.Clamp(high)
	for i, spec := range pv.Specs {
		if cl[i] != spec.Min {
			t.Errorf("%s: clamp low = %v, want %v", spec.Name, cl[i], spec.Min)
		}
		if ch[i] != spec.Max {
			t.Errorf("%s: clamp high = %v, want %v", spec.Name, ch[i], spec.Max)
		}
	}
}

func TestApplyAndExtractConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := []float64{12, 25, 0.8, 0.2, 0.02}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != values[i] {
			t.Errorf("%s = %v, want %v", spec.Name, got[i], values[i])
		}
	}

	// Defaults in the vector match the embedded config defaults
	def := pv.ExtractFromConfig(config.Default())
	for i, spec := range pv.Specs {
		if def[i] != spec.Default {
			t.Errorf("%s default = %v, config has %v", spec.Name, spec.Default, def[i])
		}
	}
}

func windows(animals []int, cover []float64) []telemetry.WindowStats {
	ws := make([]telemetry.WindowStats, len(animals))
	for i := range animals {
		ws[i] = telemetry.WindowStats{Animals: animals[i], PlantCover: cover[i]}
	}
	return ws
}

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		want    float64
	}{
		{"warmup only", windows([]int{10, 10, 10}, []float64{0.5, 0.5, 0.5}), 0},
		{"steady", windows([]int{1, 1, 1, 10, 10, 10}, []float64{0, 0, 0, 0.5, 0.5, 0.5}), 1},
		{"too few animals", windows([]int{10, 10, 10, 2, 2, 10}, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeQuality(tt.windows)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeQuality = %v, want %v", got, tt.want)
			}
		})
	}

	varied := computeQuality(windows([]int{10, 10, 10, 5, 20, 10}, []float64{0.5, 0.5, 0.5, 0.2, 0.8, 0.5}))
	if varied <= 0 || varied >= 1 {
		t.Errorf("varied quality = %v, want strictly between 0 and 1", varied)
	}
}

func TestComputeFitness(t *testing.T) {
	if got := computeFitness(100, 0.5); math.Abs(got-(-110)) > 1e-9 {
		t.Errorf("computeFitness(100, 0.5) = %v, want -110", got)
	}
	if computeFitness(200, 0) >= computeFitness(100, 1) {
		t.Error("longer lifespan should beat a quality bonus")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Screen.Width = 100
	cfg.Screen.Height = 100
	cfg.Telemetry.StatsWindow = 10

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 60, []int64{1, 2}, cfg)

	x := pv.DefaultVector()
	first := fe.Evaluate(x)
	second := fe.Evaluate(x)

	if first >= 0 {
		t.Errorf("fitness = %v, want negative for a run with animals", first)
	}
	if first != second {
		t.Errorf("same seeds gave different fitness: %v vs %v", first, second)
	}
	if q := fe.LastQuality(); q < 0 || q > 1 {
		t.Errorf("LastQuality = %v, want within [0, 1]", q)
	}
}
