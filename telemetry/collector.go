// Package telemetry provides ecosystem health tracking, bookmarking and CSV output.
package telemetry

// AnimalSample is the per-animal state sampled at the end of a window.
type AnimalSample struct {
	Energy     float64
	Hunger     int // ticks since the last meal
	Laziness   float64
	WanderLust float64
}

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	plantsGrown int
	plantsEaten int
	missedMeals int
	moves       int
	failedMoves int
	stays       int
	starved     int
	evicted     int
	born        int
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: windowTicks}
}

// RecordPlantGrown records a plant spawned by regrowth.
func (c *Collector) RecordPlantGrown() { c.plantsGrown++ }

// RecordPlantEaten records a successful meal.
func (c *Collector) RecordPlantEaten() { c.plantsEaten++ }

// RecordMissedMeal records an eat decision whose plant was already gone.
func (c *Collector) RecordMissedMeal() { c.missedMeals++ }

// RecordMove records a successful move.
func (c *Collector) RecordMove() { c.moves++ }

// RecordFailedMove records a move that was refused by the grid.
func (c *Collector) RecordFailedMove() { c.failedMoves++ }

// RecordStay records an animal that spent the tick in place.
func (c *Collector) RecordStay() { c.stays++ }

// RecordStarved records an animal removed for running out of energy.
func (c *Collector) RecordStarved() { c.starved++ }

// RecordEvicted records an entity dropped by a resize.
func (c *Collector) RecordEvicted() { c.evicted++ }

// RecordBorn records an animal placed on the grid.
func (c *Collector) RecordBorn() { c.born++ }

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the current tick, live counts, total cell count and a
// sample of every living animal.
func (c *Collector) Flush(currentTick int32, plants, animals, cells int, sample []AnimalSample) WindowStats {
	energies := make([]float64, len(sample))
	hunger := make([]float64, len(sample))
	laziness := make([]float64, len(sample))
	wander := make([]float64, len(sample))
	for i, s := range sample {
		energies[i] = s.Energy
		hunger[i] = float64(s.Hunger)
		laziness[i] = s.Laziness
		wander[i] = s.WanderLust
	}

	energy := ComputeDistribution(energies)
	hungerDist := ComputeDistribution(hunger)

	var cover float64
	if cells > 0 {
		cover = float64(plants) / float64(cells)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Plants:     plants,
		Animals:    animals,
		PlantCover: cover,

		PlantsGrown: c.plantsGrown,
		PlantsEaten: c.plantsEaten,
		MissedMeals: c.missedMeals,
		Moves:       c.moves,
		FailedMoves: c.failedMoves,
		Stays:       c.stays,
		Starved:     c.starved,
		Evicted:     c.evicted,
		Born:        c.born,

		EnergyMean: energy.Mean,
		EnergyStd:  energy.Std,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		HungerMean: hungerDist.Mean,
		HungerP90:  hungerDist.P90,

		LazinessMean:   ComputeDistribution(laziness).Mean,
		WanderLustMean: ComputeDistribution(wander).Mean,
	}

	c.windowStartTick = currentTick
	c.plantsGrown = 0
	c.plantsEaten = 0
	c.missedMeals = 0
	c.moves = 0
	c.failedMoves = 0
	c.stays = 0
	c.starved = 0
	c.evicted = 0
	c.born = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
