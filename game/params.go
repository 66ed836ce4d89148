package game

import "github.com/pthm-cable/meadow/config"

// Params holds the energy economy and regrowth constants of a Simulation.
type Params struct {
	InitialEnergy  float64 // energy of a freshly placed animal
	Nutrition      float64 // energy gained per plant eaten
	MoveCost       float64 // energy paid per successful move
	StayCost       float64 // energy paid per tick spent in place
	PlantSpawnRate float64 // regrowth probability per empty cell per tick
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		InitialEnergy:  10,
		Nutrition:      30,
		MoveCost:       1.0,
		StayCost:       0.3,
		PlantSpawnRate: 0.01,
	}
}

// ParamsFromConfig extracts simulation parameters from a loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		InitialEnergy:  cfg.Energy.Initial,
		Nutrition:      cfg.Energy.Nutrition,
		MoveCost:       cfg.Energy.MoveCost,
		StayCost:       cfg.Energy.StayCost,
		PlantSpawnRate: cfg.Plants.SpawnRate,
	}
}
