package game

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// LogWorldState logs a one-line summary of the current world.
func (r *Runner) LogWorldState() {
	sim := r.sim
	sample := sim.SampleAnimals(nil)

	energies := make([]float64, len(sample))
	for i, a := range sample {
		energies[i] = a.Energy
	}
	var meanEnergy float64
	if len(energies) > 0 {
		meanEnergy = stat.Mean(energies, nil)
	}

	slog.Info("world_state",
		"tick", sim.Tick(),
		"cols", sim.Cols(),
		"rows", sim.Rows(),
		"plants", sim.PlantCount(),
		"animals", sim.AnimalCount(),
		"mean_energy", meanEnergy,
		"deaths", sim.Lifetimes().Deaths(),
		"mean_lifespan", sim.Lifetimes().MeanLifespan(sim.Tick()),
	)
}
