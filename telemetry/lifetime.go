package telemetry

// LifetimeStats tracks per-animal statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int32
	DeathTick int32

	Meals       int
	Moves       int
	PeakEnergy  float64
	LongestFast int // most consecutive ticks without eating
}

// Lifespan returns the number of ticks the animal lived.
func (s *LifetimeStats) Lifespan() int32 {
	return s.DeathTick - s.BirthTick
}

// LifetimeTracker manages per-animal lifetime statistics keyed by animal ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats

	// Aggregates over every animal removed so far
	deaths        int
	totalLifespan int64
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new animal.
func (lt *LifetimeTracker) Register(animalID uint32, birthTick int32, energy float64) {
	lt.stats[animalID] = &LifetimeStats{
		BirthTick:  birthTick,
		PeakEnergy: energy,
	}
}

// Get returns the lifetime stats for an animal, or nil if not found.
func (lt *LifetimeTracker) Get(animalID uint32) *LifetimeStats {
	return lt.stats[animalID]
}

// Remove closes an animal's record at deathTick and returns it.
func (lt *LifetimeTracker) Remove(animalID uint32, deathTick int32) *LifetimeStats {
	s := lt.stats[animalID]
	if s == nil {
		return nil
	}
	delete(lt.stats, animalID)
	s.DeathTick = deathTick
	lt.deaths++
	lt.totalLifespan += int64(s.Lifespan())
	return s
}

// RecordMeal increments the meal count.
func (lt *LifetimeTracker) RecordMeal(animalID uint32) {
	if s := lt.stats[animalID]; s != nil {
		s.Meals++
	}
}

// RecordMove increments the move count.
func (lt *LifetimeTracker) RecordMove(animalID uint32) {
	if s := lt.stats[animalID]; s != nil {
		s.Moves++
	}
}

// Update tracks peak energy and the longest fast.
func (lt *LifetimeTracker) Update(animalID uint32, energy float64, hunger int) {
	if s := lt.stats[animalID]; s != nil {
		if energy > s.PeakEnergy {
			s.PeakEnergy = energy
		}
		if hunger > s.LongestFast {
			s.LongestFast = hunger
		}
	}
}

// Count returns the number of tracked living animals.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Deaths returns how many animals have been removed.
func (lt *LifetimeTracker) Deaths() int {
	return lt.deaths
}

// MeanLifespan returns the mean lifespan in ticks of removed animals,
// counting the living as if they died at tick now.
func (lt *LifetimeTracker) MeanLifespan(now int32) float64 {
	n := lt.deaths + len(lt.stats)
	if n == 0 {
		return 0
	}
	total := lt.totalLifespan
	for _, s := range lt.stats {
		total += int64(now - s.BirthTick)
	}
	return float64(total) / float64(n)
}
