// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Grid       GridConfig       `yaml:"grid"`
	Population PopulationConfig `yaml:"population"`
	Energy     EnergyConfig     `yaml:"energy"`
	Plants     PlantsConfig     `yaml:"plants"`
	Sim        SimConfig        `yaml:"sim"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. Width and height also set the
// simulated area in headless mode.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds grid geometry.
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"` // pixels per cell side
}

// PopulationConfig holds the initial fill fractions.
type PopulationConfig struct {
	PlantFraction  float64 `yaml:"plant_fraction"`  // of all cells
	AnimalFraction float64 `yaml:"animal_fraction"` // of all cells
}

// EnergyConfig holds the animal energy economy.
type EnergyConfig struct {
	Initial   float64 `yaml:"initial"`   // energy of a fresh animal
	Nutrition float64 `yaml:"nutrition"` // gained per plant eaten
	MoveCost  float64 `yaml:"move_cost"` // paid per successful move
	StayCost  float64 `yaml:"stay_cost"` // paid per tick spent in place
}

// PlantsConfig holds regrowth parameters.
type PlantsConfig struct {
	SpawnRate float64 `yaml:"spawn_rate"` // per empty cell per tick
}

// SimConfig holds the tick cadence.
type SimConfig struct {
	TickIntervalMS int `yaml:"tick_interval_ms"`
	MaxSpeed       int `yaml:"max_speed"` // upper bound of the speed multiplier
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // ticks per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PopulationCrash  PopulationCrashConfig  `yaml:"population_crash"`
	PlantSaturation  PlantSaturationConfig  `yaml:"plant_saturation"`
	StablePopulation StablePopulationConfig `yaml:"stable_population"`
}

// PopulationCrashConfig holds animal crash detection parameters.
type PopulationCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// PlantSaturationConfig holds plant saturation detection parameters.
type PlantSaturationConfig struct {
	Fraction float64 `yaml:"fraction"` // plant share of all cells
}

// StablePopulationConfig holds stable population detection parameters.
type StablePopulationConfig struct {
	MinAnimals    int     `yaml:"min_animals"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickInterval time.Duration // Sim.TickIntervalMS as a duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if !(c.Grid.CellSize > 0) {
		errs = append(errs, fmt.Errorf("grid.cell_size must be positive, got %v", c.Grid.CellSize))
	}
	if !inUnit(c.Population.PlantFraction) {
		errs = append(errs, fmt.Errorf("population.plant_fraction must be in [0,1], got %v", c.Population.PlantFraction))
	}
	if !inUnit(c.Population.AnimalFraction) {
		errs = append(errs, fmt.Errorf("population.animal_fraction must be in [0,1], got %v", c.Population.AnimalFraction))
	}
	if !inUnit(c.Plants.SpawnRate) {
		errs = append(errs, fmt.Errorf("plants.spawn_rate must be in [0,1], got %v", c.Plants.SpawnRate))
	}
	if c.Energy.MoveCost < 0 || c.Energy.StayCost < 0 || c.Energy.Nutrition < 0 {
		errs = append(errs, errors.New("energy costs and nutrition must not be negative"))
	}
	if c.Sim.TickIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_interval_ms must be positive, got %d", c.Sim.TickIntervalMS))
	}
	if c.Sim.MaxSpeed < 1 {
		errs = append(errs, fmt.Errorf("sim.max_speed must be at least 1, got %d", c.Sim.MaxSpeed))
	}
	return errors.Join(errs...)
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickInterval = time.Duration(c.Sim.TickIntervalMS) * time.Millisecond
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
