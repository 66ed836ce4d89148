package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/brain"
	"github.com/pthm-cable/meadow/components"
)

// PopulateRandom seeds the grid with plants then animals on a shuffled
// list of empty cells. Each species targets max(1, floor(cells*fraction))
// entities; a non-positive fraction places none. Placement stops when the
// empty cells run out.
func (s *Simulation) PopulateRandom(plantFraction, animalFraction float64) {
	total := s.grid.Len()
	cells := s.grid.EmptyCells()
	shuffle(cells, s.rng)

	nPlants := targetCount(total, plantFraction)
	nAnimals := targetCount(total, animalFraction)

	next := 0
	for i := 0; i < nPlants && next < len(cells); i++ {
		s.spawnPlant(cells[next])
		next++
	}
	for i := 0; i < nAnimals && next < len(cells); i++ {
		laziness := s.rng.Float64()
		wanderLust := s.rng.Float64()
		s.spawnAnimal(cells[next], brain.Traits{Laziness: laziness, WanderLust: wanderLust})
		next++
	}
}

func targetCount(total int, fraction float64) int {
	if !(fraction > 0) {
		return 0
	}
	return max(1, int(math.Floor(float64(total)*fraction)))
}

// SpawnPlant places a plant at (x, y). It fails if the cell is out of
// bounds or occupied.
func (s *Simulation) SpawnPlant(x, y int) (ecs.Entity, bool) {
	if !s.cellFree(x, y) {
		return ecs.Entity{}, false
	}
	return s.spawnPlant(components.Cell{X: x, Y: y}), true
}

// SpawnAnimal places an animal with the given traits and the initial
// energy at (x, y). It fails if the cell is out of bounds or occupied.
func (s *Simulation) SpawnAnimal(x, y int, traits brain.Traits) (ecs.Entity, bool) {
	if !s.cellFree(x, y) {
		return ecs.Entity{}, false
	}
	return s.spawnAnimal(components.Cell{X: x, Y: y}, traits), true
}

func (s *Simulation) cellFree(x, y int) bool {
	if !s.grid.IsInside(x, y) {
		return false
	}
	_, occupied := s.grid.Occupant(x, y)
	return !occupied
}

// spawnPlant creates a plant on a cell the caller knows is free.
func (s *Simulation) spawnPlant(c components.Cell) ecs.Entity {
	species := components.Species{Kind: components.KindPlant}
	e := s.plantMapper.NewEntity(&c, &species)
	s.grid.SetOccupant(c.X, c.Y, e)
	s.plantIndex[e] = len(s.plants)
	s.plants = append(s.plants, e)
	return e
}

// spawnAnimal creates an animal on a cell the caller knows is free.
func (s *Simulation) spawnAnimal(c components.Cell, traits brain.Traits) ecs.Entity {
	id := s.nextID
	s.nextID++

	species := components.Species{Kind: components.KindAnimal}
	animal := components.Animal{
		ID:         id,
		Energy:     s.params.InitialEnergy,
		Laziness:   traits.Laziness,
		WanderLust: traits.WanderLust,
	}
	e := s.animalMapper.NewEntity(&c, &species, &animal)
	s.grid.SetOccupant(c.X, c.Y, e)
	s.animals = append(s.animals, e)

	s.collector.RecordBorn()
	s.lifetimes.Register(id, s.tick, animal.Energy)
	return e
}

// removePlant drops a plant from the grid, the plant list and the world.
func (s *Simulation) removePlant(e ecs.Entity, reason RemovalReason) {
	idx, ok := s.plantIndex[e]
	if !ok {
		return
	}
	last := len(s.plants) - 1
	if idx != last {
		moved := s.plants[last]
		s.plants[idx] = moved
		s.plantIndex[moved] = idx
	}
	s.plants = s.plants[:last]
	delete(s.plantIndex, e)

	s.destroy(e, components.KindPlant, reason)
}

// destroy vacates the entity's cell if it still holds it, removes it from
// the world and notifies the observer. List bookkeeping is the caller's job.
func (s *Simulation) destroy(e ecs.Entity, kind components.Kind, reason RemovalReason) {
	cell := *s.cellMap.Get(e)
	if occ, ok := s.grid.Occupant(cell.X, cell.Y); ok && occ == e {
		s.grid.Clear(cell.X, cell.Y)
	}

	var animalID uint32
	if kind == components.KindAnimal {
		animalID = s.animalMap.Get(e).ID
		s.lifetimes.Remove(animalID, s.tick)
	}

	s.world.RemoveEntity(e)

	if s.onRemove != nil {
		s.onRemove(Removal{Entity: e, Kind: kind, Cell: cell, Reason: reason, AnimalID: animalID})
	}
}

// removeStarved evicts every animal whose energy has dropped below zero.
func (s *Simulation) removeStarved() {
	var starved []ecs.Entity
	kept := s.animals[:0]
	for _, e := range s.animals {
		if s.animalMap.Get(e).Energy < 0 {
			starved = append(starved, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(s.animals[len(kept):])
	s.animals = kept

	for _, e := range starved {
		s.collector.RecordStarved()
		s.destroy(e, components.KindAnimal, ReasonStarved)
	}
}

// regrow gives every empty cell an independent chance to sprout a plant.
func (s *Simulation) regrow() {
	for _, c := range s.grid.EmptyCells() {
		if s.rng.Float64() < s.params.PlantSpawnRate {
			s.spawnPlant(c)
			s.collector.RecordPlantGrown()
		}
	}
}

// Resize adapts the grid to new pixel dimensions and evicts every entity
// that no longer fits.
func (s *Simulation) Resize(widthPx, heightPx float64) {
	s.grid.Resize(widthPx, heightPx)

	s.plants = s.evictOutside(s.plants, components.KindPlant)
	clear(s.plantIndex)
	for i, e := range s.plants {
		s.plantIndex[e] = i
	}

	s.animals = s.evictOutside(s.animals, components.KindAnimal)
}

func (s *Simulation) evictOutside(list []ecs.Entity, kind components.Kind) []ecs.Entity {
	var evicted []ecs.Entity
	kept := list[:0]
	for _, e := range list {
		c := s.cellMap.Get(e)
		if s.grid.IsInside(c.X, c.Y) {
			kept = append(kept, e)
			continue
		}
		evicted = append(evicted, e)
	}
	clear(list[len(kept):])

	for _, e := range evicted {
		s.collector.RecordEvicted()
		s.destroy(e, kind, ReasonOutOfBounds)
	}
	return kept
}

// CheckInvariants verifies that the grid and the entity lists agree: every
// listed entity is alive, inside the grid and the occupant of its own cell,
// and no cell holds anything else.
func (s *Simulation) CheckInvariants() error {
	var errs []error

	check := func(list []ecs.Entity, kind components.Kind) {
		for _, e := range list {
			if !s.world.Alive(e) {
				errs = append(errs, fmt.Errorf("%s %v: listed but not alive", kind, e))
				continue
			}
			if got := s.speciesMap.Get(e).Kind; got != kind {
				errs = append(errs, fmt.Errorf("%s %v: listed with species %s", kind, e, got))
			}
			c := *s.cellMap.Get(e)
			occ, ok := s.grid.Occupant(c.X, c.Y)
			switch {
			case !s.grid.IsInside(c.X, c.Y):
				errs = append(errs, fmt.Errorf("%s %v: cell (%d,%d) outside %dx%d grid", kind, e, c.X, c.Y, s.grid.Cols(), s.grid.Rows()))
			case !ok || occ != e:
				errs = append(errs, fmt.Errorf("%s %v: grid cell (%d,%d) does not point back", kind, e, c.X, c.Y))
			}
		}
	}
	check(s.plants, components.KindPlant)
	check(s.animals, components.KindAnimal)

	occupied := s.grid.Len() - s.grid.EmptyCount()
	if listed := len(s.plants) + len(s.animals); occupied != listed {
		errs = append(errs, fmt.Errorf("grid holds %d occupants, lists hold %d entities", occupied, listed))
	}

	if len(s.plantIndex) != len(s.plants) {
		errs = append(errs, fmt.Errorf("plant index has %d entries for %d plants", len(s.plantIndex), len(s.plants)))
	}
	for i, e := range s.plants {
		if s.plantIndex[e] != i {
			errs = append(errs, fmt.Errorf("plant %v: index %d, list position %d", e, s.plantIndex[e], i))
		}
	}

	return errors.Join(errs...)
}
