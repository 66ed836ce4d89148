package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"cell_size", cfg.Grid.CellSize, 10},
		{"plant_fraction", cfg.Population.PlantFraction, 0.08},
		{"animal_fraction", cfg.Population.AnimalFraction, 0.02},
		{"initial_energy", cfg.Energy.Initial, 10},
		{"nutrition", cfg.Energy.Nutrition, 30},
		{"move_cost", cfg.Energy.MoveCost, 1.0},
		{"stay_cost", cfg.Energy.StayCost, 0.3},
		{"spawn_rate", cfg.Plants.SpawnRate, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if cfg.Derived.TickInterval != 200*time.Millisecond {
		t.Errorf("tick interval = %v, want 200ms", cfg.Derived.TickInterval)
	}
}

func TestLoadMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := "energy:\n  nutrition: 12\nplants:\n  spawn_rate: 0.05\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Energy.Nutrition != 12 {
		t.Errorf("nutrition = %v, want 12", cfg.Energy.Nutrition)
	}
	if cfg.Plants.SpawnRate != 0.05 {
		t.Errorf("spawn_rate = %v, want 0.05", cfg.Plants.SpawnRate)
	}
	// Untouched keys keep their defaults.
	if cfg.Energy.MoveCost != 1.0 {
		t.Errorf("move_cost = %v, want default 1.0", cfg.Energy.MoveCost)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"zero cell size", "grid:\n  cell_size: 0\n", "cell_size"},
		{"fraction above one", "population:\n  plant_fraction: 1.5\n", "plant_fraction"},
		{"negative spawn rate", "plants:\n  spawn_rate: -0.1\n", "spawn_rate"},
		{"zero tick", "sim:\n  tick_interval_ms: 0\n", "tick_interval_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Energy.StayCost = 0.7

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Energy.StayCost != 0.7 {
		t.Errorf("stay_cost = %v after round trip, want 0.7", back.Energy.StayCost)
	}
}

func TestCfgAfterInit(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg().Screen.Width <= 0 {
		t.Error("Cfg() returned unusable screen width")
	}
}
