package game

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/brain"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
	"github.com/pthm-cable/meadow/telemetry"
)

// RemovalReason says why an entity left the simulation.
type RemovalReason uint8

const (
	ReasonEaten RemovalReason = iota
	ReasonStarved
	ReasonOutOfBounds
)

// String returns the snake_case reason name.
func (r RemovalReason) String() string {
	switch r {
	case ReasonEaten:
		return "eaten"
	case ReasonStarved:
		return "starved"
	case ReasonOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// Removal describes an entity that has just been destroyed. Entity is no
// longer alive when observers see it; it is only useful as a key.
type Removal struct {
	Entity   ecs.Entity
	Kind     components.Kind
	Cell     components.Cell
	Reason   RemovalReason
	AnimalID uint32 // zero for plants
}

// Options configures a Simulation. The zero value is usable.
type Options struct {
	Params      Params                   // zero means DefaultParams
	Rand        brain.Source             // nil means a time-seeded generator
	OnRemove    func(Removal)            // called after every removal
	Perf        *telemetry.PerfCollector // optional phase timing
	StatsWindow int32                    // ticks per telemetry window
}

// Simulation owns the grid and every plant and animal on it.
// It is single-threaded: one call must complete before the next begins.
type Simulation struct {
	world  *ecs.World
	grid   *systems.Grid
	rng    brain.Source
	params Params

	// Entity mappers
	plantMapper  *ecs.Map2[components.Cell, components.Species]
	animalMapper *ecs.Map3[components.Cell, components.Species, components.Animal]

	// Individual component mappers for lookups
	cellMap    *ecs.Map1[components.Cell]
	speciesMap *ecs.Map1[components.Species]
	animalMap  *ecs.Map1[components.Animal]

	animalFilter *ecs.Filter1[components.Animal]

	// Live entity lists
	plants     []ecs.Entity
	plantIndex map[ecs.Entity]int
	animals    []ecs.Entity

	tick   int32
	nextID uint32

	onRemove  func(Removal)
	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector

	moveBuf []brain.Option
}

// NewSimulation creates an empty simulation covering widthPx x heightPx
// pixels. Non-positive dimensions return systems.ErrInvalidDimensions.
func NewSimulation(widthPx, heightPx, cellSize float64, opts Options) (*Simulation, error) {
	grid, err := systems.NewGrid(widthPx, heightPx, cellSize)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	params := opts.Params
	if params == (Params{}) {
		params = DefaultParams()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	world := ecs.NewWorld()
	return &Simulation{
		world:  world,
		grid:   grid,
		rng:    rng,
		params: params,

		plantMapper:  ecs.NewMap2[components.Cell, components.Species](world),
		animalMapper: ecs.NewMap3[components.Cell, components.Species, components.Animal](world),
		cellMap:      ecs.NewMap1[components.Cell](world),
		speciesMap:   ecs.NewMap1[components.Species](world),
		animalMap:    ecs.NewMap1[components.Animal](world),
		animalFilter: ecs.NewFilter1[components.Animal](world),

		plantIndex: make(map[ecs.Entity]int),
		nextID:     1,

		onRemove:  opts.OnRemove,
		collector: telemetry.NewCollector(opts.StatsWindow),
		lifetimes: telemetry.NewLifetimeTracker(),
		perf:      opts.Perf,

		moveBuf: make([]brain.Option, 0, len(components.Neighbors)),
	}, nil
}

// Step advances the simulation by exactly one tick.
func (s *Simulation) Step() {
	s.tick++

	s.perf.StartPhase(telemetry.PhaseAnimals)
	shuffle(s.animals, s.rng)
	for _, e := range s.animals {
		s.act(e)
	}

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.removeStarved()

	s.perf.StartPhase(telemetry.PhaseRegrowth)
	s.regrow()
}

// act senses, decides and executes one animal's turn.
func (s *Simulation) act(e ecs.Entity) {
	cell := *s.cellMap.Get(e)
	if occ, ok := s.grid.Occupant(cell.X, cell.Y); !ok || occ != e {
		return
	}

	animal := s.animalMap.Get(e)
	senses := systems.Sense(s.grid, s.speciesMap, cell, animal, s.moveBuf)
	s.moveBuf = senses.FreeMoves

	traits := brain.Traits{Laziness: animal.Laziness, WanderLust: animal.WanderLust}
	decision := brain.Decide(senses, traits, s.rng)

	switch decision.Action {
	case brain.Eat:
		s.eat(e, decision.Target)
	case brain.Move:
		if s.MoveAnimal(e, decision.Target.X, decision.Target.Y) {
			s.chargeMove(e)
		} else {
			s.collector.RecordFailedMove()
			s.chargeStay(e)
		}
	default:
		s.chargeStay(e)
	}

	animal = s.animalMap.Get(e)
	s.lifetimes.Update(animal.ID, animal.Energy, animal.CyclesSinceLastEat)
}

// eat consumes the plant at target if it is still there. A plant taken
// earlier this tick turns the meal into a random adjacent move.
func (s *Simulation) eat(e ecs.Entity, target components.Cell) {
	if occ, ok := s.grid.Occupant(target.X, target.Y); ok && s.speciesMap.Get(occ).Kind == components.KindPlant {
		s.removePlant(occ, ReasonEaten)

		animal := s.animalMap.Get(e)
		animal.Energy += s.params.Nutrition
		animal.CyclesSinceLastEat = 0
		s.collector.RecordPlantEaten()
		s.lifetimes.RecordMeal(animal.ID)
		return
	}

	s.collector.RecordMissedMeal()
	s.moveBuf = systems.AdjacentFreeMoves(s.grid, *s.cellMap.Get(e), s.moveBuf[:0])
	if m, ok := brain.PickMove(s.moveBuf, s.rng); ok && s.MoveAnimal(e, m.Target.X, m.Target.Y) {
		s.chargeMove(e)
		return
	}
	s.chargeStay(e)
}

func (s *Simulation) chargeMove(e ecs.Entity) {
	animal := s.animalMap.Get(e)
	animal.Energy -= s.params.MoveCost
	animal.CyclesSinceLastEat++
	s.collector.RecordMove()
	s.lifetimes.RecordMove(animal.ID)
}

func (s *Simulation) chargeStay(e ecs.Entity) {
	animal := s.animalMap.Get(e)
	animal.Energy -= s.params.StayCost
	animal.CyclesSinceLastEat++
	s.collector.RecordStay()
}

// MoveAnimal relocates animal e to (x, y). It returns false and changes
// nothing if e is not a live animal or the destination is out of bounds or
// occupied. On success the realized step is stored as the last move.
func (s *Simulation) MoveAnimal(e ecs.Entity, x, y int) bool {
	if !s.alive(e) || !s.animalMap.HasAll(e) {
		return false
	}
	if !s.grid.IsInside(x, y) {
		return false
	}
	if _, occupied := s.grid.Occupant(x, y); occupied {
		return false
	}

	cell := s.cellMap.Get(e)
	if occ, ok := s.grid.Occupant(cell.X, cell.Y); ok && occ == e {
		s.grid.Clear(cell.X, cell.Y)
	}
	s.grid.SetOccupant(x, y, e)

	to := components.Cell{X: x, Y: y}
	animal := s.animalMap.Get(e)
	animal.LastMoveDir = to.Sub(*cell)
	animal.HasLastMove = true
	*cell = to
	return true
}

// alive reports whether e is a live entity of this simulation's world.
func (s *Simulation) alive(e ecs.Entity) bool {
	return e != (ecs.Entity{}) && s.world.Alive(e)
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int32 { return s.tick }

// Cols returns the grid width in cells.
func (s *Simulation) Cols() int { return s.grid.Cols() }

// Rows returns the grid height in cells.
func (s *Simulation) Rows() int { return s.grid.Rows() }

// CellSize returns the pixel size of a cell.
func (s *Simulation) CellSize() float64 { return s.grid.CellSize() }

// Params returns the active parameters.
func (s *Simulation) Params() Params { return s.params }

// Plants returns a copy of the live plant list.
func (s *Simulation) Plants() []ecs.Entity { return slices.Clone(s.plants) }

// Animals returns a copy of the live animal list.
func (s *Simulation) Animals() []ecs.Entity { return slices.Clone(s.animals) }

// PlantCount returns the number of live plants.
func (s *Simulation) PlantCount() int { return len(s.plants) }

// AnimalCount returns the number of live animals.
func (s *Simulation) AnimalCount() int { return len(s.animals) }

// Cell returns the grid cell of a live entity.
func (s *Simulation) Cell(e ecs.Entity) (components.Cell, bool) {
	if !s.alive(e) || !s.cellMap.HasAll(e) {
		return components.Cell{}, false
	}
	return *s.cellMap.Get(e), true
}

// At returns the entity occupying (x, y), if any.
func (s *Simulation) At(x, y int) (ecs.Entity, bool) {
	return s.grid.Occupant(x, y)
}

// Kind returns the species of a live entity.
func (s *Simulation) Kind(e ecs.Entity) (components.Kind, bool) {
	if !s.alive(e) || !s.speciesMap.HasAll(e) {
		return 0, false
	}
	return s.speciesMap.Get(e).Kind, true
}

// AnimalState returns a copy of a live animal's state.
func (s *Simulation) AnimalState(e ecs.Entity) (components.Animal, bool) {
	if !s.alive(e) || !s.animalMap.HasAll(e) {
		return components.Animal{}, false
	}
	return *s.animalMap.Get(e), true
}

// Lifetimes exposes per-animal lifetime statistics.
func (s *Simulation) Lifetimes() *telemetry.LifetimeTracker { return s.lifetimes }
