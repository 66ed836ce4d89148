package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/brain"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// newTestSim builds a cols x rows simulation with 10px cells.
func newTestSim(t *testing.T, cols, rows int, opts Options) *Simulation {
	t.Helper()
	s, err := NewSimulation(float64(cols*10), float64(rows*10), 10, opts)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return s
}

func mustSpawnPlant(t *testing.T, s *Simulation, x, y int) ecs.Entity {
	t.Helper()
	e, ok := s.SpawnPlant(x, y)
	if !ok {
		t.Fatalf("SpawnPlant(%d,%d) failed", x, y)
	}
	return e
}

func mustSpawnAnimal(t *testing.T, s *Simulation, x, y int, traits brain.Traits) ecs.Entity {
	t.Helper()
	e, ok := s.SpawnAnimal(x, y, traits)
	if !ok {
		t.Fatalf("SpawnAnimal(%d,%d) failed", x, y)
	}
	return e
}

func mustHoldInvariants(t *testing.T, s *Simulation) {
	t.Helper()
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("tick %d: %v", s.Tick(), err)
	}
}

func TestNewSimulationInvalidDimensions(t *testing.T) {
	cases := [][3]float64{{0, 10, 10}, {10, -1, 10}, {10, 10, 0}, {math.NaN(), 10, 10}}
	for _, c := range cases {
		if _, err := NewSimulation(c[0], c[1], c[2], Options{}); !errors.Is(err, systems.ErrInvalidDimensions) {
			t.Errorf("NewSimulation(%v) error = %v, want ErrInvalidDimensions", c, err)
		}
	}
}

func TestNewSimulationDefaults(t *testing.T) {
	s := newTestSim(t, 8, 6, Options{})
	if s.Cols() != 8 || s.Rows() != 6 || s.CellSize() != 10 {
		t.Errorf("grid = %dx%d@%v", s.Cols(), s.Rows(), s.CellSize())
	}
	if s.Params() != DefaultParams() {
		t.Errorf("zero Params should become defaults, got %+v", s.Params())
	}
	if s.Tick() != 0 || s.PlantCount() != 0 || s.AnimalCount() != 0 {
		t.Error("new simulation should be empty at tick 0")
	}
}

func TestStepEatsAdjacentPlant(t *testing.T) {
	// One draw for the eat roll; regrowth draws get the fallback and never sprout.
	rng := brain.NewSequence(0.999, 0.5)
	var removed []Removal
	s := newTestSim(t, 3, 3, Options{Rand: rng, OnRemove: func(r Removal) { removed = append(removed, r) }})

	plant := mustSpawnPlant(t, s, 1, 1)
	animal := mustSpawnAnimal(t, s, 0, 1, brain.Traits{})

	s.Step()

	if s.Tick() != 1 {
		t.Errorf("tick = %d, want 1", s.Tick())
	}
	if s.PlantCount() != 0 {
		t.Errorf("plants = %d, want 0", s.PlantCount())
	}
	if _, ok := s.grid.Occupant(1, 1); ok {
		t.Error("cell (1,1) should be empty after the meal")
	}
	state, _ := s.AnimalState(animal)
	if want := DefaultParams().InitialEnergy + DefaultParams().Nutrition; state.Energy != want {
		t.Errorf("energy = %v, want %v", state.Energy, want)
	}
	if state.CyclesSinceLastEat != 0 {
		t.Errorf("starvation counter = %d, want 0", state.CyclesSinceLastEat)
	}
	if cell, _ := s.Cell(animal); cell != (components.Cell{X: 0, Y: 1}) {
		t.Errorf("eating animal moved to %v", cell)
	}

	if len(removed) != 1 || removed[0].Entity != plant || removed[0].Reason != ReasonEaten || removed[0].Kind != components.KindPlant {
		t.Errorf("removals = %+v, want one eaten plant", removed)
	}
	if _, ok := s.Kind(plant); ok {
		t.Error("eaten plant is still alive in the world")
	}
	mustHoldInvariants(t, s)
}

func TestStepDeclinedMealMoves(t *testing.T) {
	// decline (0.995), move roll (0.2 < 0.5), pick first free move (0.0).
	rng := brain.NewSequence(0.999, 0.995, 0.2, 0.0)
	s := newTestSim(t, 3, 3, Options{Rand: rng})

	mustSpawnPlant(t, s, 1, 1)
	animal := mustSpawnAnimal(t, s, 0, 1, brain.Traits{})

	s.Step()

	if s.PlantCount() != 1 {
		t.Error("declined plant should survive")
	}
	state, _ := s.AnimalState(animal)
	cell, _ := s.Cell(animal)
	// Free moves from (0,1) in order: +y (0,2), -y (0,0).
	if cell != (components.Cell{X: 0, Y: 2}) {
		t.Errorf("animal at %v, want (0,2)", cell)
	}
	if !state.HasLastMove || state.LastMoveDir != (components.Dir{X: 0, Y: 1}) {
		t.Errorf("last move = %v/%v, want +y", state.LastMoveDir, state.HasLastMove)
	}
	if math.Abs(state.Energy-(10-1.0)) > 1e-9 || state.CyclesSinceLastEat != 1 {
		t.Errorf("energy = %v counter = %d, want 9 and 1", state.Energy, state.CyclesSinceLastEat)
	}
	mustHoldInvariants(t, s)
}

func TestEatMissingPlant(t *testing.T) {
	t.Run("moves to a free neighbour", func(t *testing.T) {
		rng := brain.NewSequence(0.0)
		s := newTestSim(t, 3, 3, Options{Rand: rng})
		animal := mustSpawnAnimal(t, s, 1, 1, brain.Traits{})

		s.eat(animal, components.Cell{X: 2, Y: 1})

		// Free moves from (1,1) start with +x, so a 0.0 draw picks (2,1).
		cell, _ := s.Cell(animal)
		if cell != (components.Cell{X: 2, Y: 1}) {
			t.Errorf("animal at %v, want (2,1)", cell)
		}
		state, _ := s.AnimalState(animal)
		if math.Abs(state.Energy-(10-1.0)) > 1e-9 || state.CyclesSinceLastEat != 1 {
			t.Errorf("energy = %v counter = %d, want 9 and 1", state.Energy, state.CyclesSinceLastEat)
		}
		if rng.Drawn() != 1 {
			t.Errorf("draws = %d, want 1", rng.Drawn())
		}
		mustHoldInvariants(t, s)
	})

	t.Run("stays when boxed in", func(t *testing.T) {
		rng := brain.NewSequence(0.0)
		s := newTestSim(t, 2, 1, Options{Rand: rng})
		animal := mustSpawnAnimal(t, s, 0, 0, brain.Traits{})
		other := mustSpawnAnimal(t, s, 1, 0, brain.Traits{})

		// The target holds an animal, not a plant.
		s.eat(animal, components.Cell{X: 1, Y: 0})

		if cell, _ := s.Cell(animal); cell != (components.Cell{X: 0, Y: 0}) {
			t.Errorf("animal at %v, want (0,0)", cell)
		}
		if _, ok := s.Kind(other); !ok {
			t.Error("neighbour was removed by a missed meal")
		}
		state, _ := s.AnimalState(animal)
		if math.Abs(state.Energy-(10-0.3)) > 1e-9 || state.CyclesSinceLastEat != 1 {
			t.Errorf("energy = %v counter = %d, want 9.7 and 1", state.Energy, state.CyclesSinceLastEat)
		}
		if state.HasLastMove {
			t.Error("staying animal recorded a move")
		}
		if rng.Drawn() != 0 {
			t.Errorf("draws = %d, want 0", rng.Drawn())
		}
		mustHoldInvariants(t, s)
	})
}

func TestStepLoneAnimalStaysUntilStarved(t *testing.T) {
	rng := brain.NewSequence(0.999)
	var removed []Removal
	s := newTestSim(t, 1, 1, Options{Rand: rng, OnRemove: func(r Removal) { removed = append(removed, r) }})
	animal := mustSpawnAnimal(t, s, 0, 0, brain.Traits{Laziness: 0.5, WanderLust: 0.5})

	params := DefaultParams()
	for tick := 1; ; tick++ {
		s.Step()
		want := params.InitialEnergy - params.StayCost*float64(tick)

		if want < 0 {
			if s.AnimalCount() != 0 {
				t.Fatalf("tick %d: animal with energy %v should be removed", tick, want)
			}
			if len(removed) != 1 || removed[0].Reason != ReasonStarved || removed[0].AnimalID != 1 {
				t.Errorf("removals = %+v, want one starved animal with id 1", removed)
			}
			// Only the regrowth roll for the freed cell is drawn.
			if rng.Drawn() != 1 {
				t.Errorf("drawn = %d, want 1", rng.Drawn())
			}
			break
		}

		state, ok := s.AnimalState(animal)
		if !ok {
			t.Fatalf("tick %d: animal removed with energy %v", tick, want)
		}
		if math.Abs(state.Energy-want) > 1e-9 {
			t.Fatalf("tick %d: energy = %v, want %v", tick, state.Energy, want)
		}
		if state.CyclesSinceLastEat != tick {
			t.Fatalf("tick %d: counter = %d", tick, state.CyclesSinceLastEat)
		}
		if rng.Drawn() != 0 {
			t.Fatalf("tick %d: a lone animal on a 1x1 grid should draw nothing, drew %d", tick, rng.Drawn())
		}
		if tick > 100 {
			t.Fatal("animal never starved")
		}
	}
	mustHoldInvariants(t, s)
}

func TestStepContestedPlantEatenOnce(t *testing.T) {
	// Shuffle draw 0.0 swaps the two animals so the right one acts first.
	// It eats (0.5). The left one then senses nothing and stays (laziness 1).
	rng := brain.NewSequence(0.999, 0.0, 0.5, 0.5)
	eaten := 0
	s := newTestSim(t, 3, 3, Options{Rand: rng, OnRemove: func(r Removal) {
		if r.Reason == ReasonEaten {
			eaten++
		}
	}})

	mustSpawnPlant(t, s, 1, 1)
	left := mustSpawnAnimal(t, s, 0, 1, brain.Traits{Laziness: 1})
	right := mustSpawnAnimal(t, s, 2, 1, brain.Traits{Laziness: 1})

	s.Step()

	if eaten != 1 || s.PlantCount() != 0 {
		t.Fatalf("eaten = %d plants left = %d, want 1 and 0", eaten, s.PlantCount())
	}
	r, _ := s.AnimalState(right)
	l, _ := s.AnimalState(left)
	if r.Energy != 40 || r.CyclesSinceLastEat != 0 {
		t.Errorf("eater = %+v, want energy 40 counter 0", r)
	}
	if math.Abs(l.Energy-9.7) > 1e-9 || l.CyclesSinceLastEat != 1 {
		t.Errorf("loser = %+v, want energy 9.7 counter 1", l)
	}
	mustHoldInvariants(t, s)
}

func TestMoveAnimalValidity(t *testing.T) {
	s := newTestSim(t, 3, 3, Options{Rand: brain.NewSequence(0.5)})
	plant := mustSpawnPlant(t, s, 2, 1)
	animal := mustSpawnAnimal(t, s, 1, 1, brain.Traits{})

	for _, target := range [][2]int{{2, 1}, {3, 1}, {-1, 0}, {1, 3}} {
		if s.MoveAnimal(animal, target[0], target[1]) {
			t.Errorf("MoveAnimal to %v should fail", target)
		}
	}
	cell, _ := s.Cell(animal)
	state, _ := s.AnimalState(animal)
	if cell != (components.Cell{X: 1, Y: 1}) || state.HasLastMove {
		t.Fatalf("failed moves changed state: cell %v last %v", cell, state.HasLastMove)
	}

	if !s.MoveAnimal(animal, 1, 0) {
		t.Fatal("MoveAnimal to free (1,0) failed")
	}
	if _, ok := s.grid.Occupant(1, 1); ok {
		t.Error("old cell still occupied")
	}
	if occ, _ := s.grid.Occupant(1, 0); occ != animal {
		t.Error("new cell does not hold the animal")
	}
	state, _ = s.AnimalState(animal)
	if state.LastMoveDir != (components.Dir{X: 0, Y: -1}) || !state.HasLastMove {
		t.Errorf("last move = %v", state.LastMoveDir)
	}

	if s.MoveAnimal(plant, 0, 0) {
		t.Error("plants cannot move")
	}
	if s.MoveAnimal(ecs.Entity{}, 0, 0) {
		t.Error("zero entity cannot move")
	}
	mustHoldInvariants(t, s)
}

func TestSpawnRejectsTakenCells(t *testing.T) {
	s := newTestSim(t, 2, 2, Options{})
	mustSpawnPlant(t, s, 0, 0)

	if _, ok := s.SpawnPlant(0, 0); ok {
		t.Error("SpawnPlant on occupied cell succeeded")
	}
	if _, ok := s.SpawnAnimal(0, 0, brain.Traits{}); ok {
		t.Error("SpawnAnimal on occupied cell succeeded")
	}
	if _, ok := s.SpawnAnimal(2, 0, brain.Traits{}); ok {
		t.Error("SpawnAnimal out of bounds succeeded")
	}
}

func TestAccessorsCheckComponents(t *testing.T) {
	s := newTestSim(t, 3, 3, Options{Rand: brain.NewSequence(0.5)})
	plant := mustSpawnPlant(t, s, 0, 0)
	animal := mustSpawnAnimal(t, s, 1, 0, brain.Traits{})

	if kind, ok := s.Kind(plant); !ok || kind != components.KindPlant {
		t.Errorf("Kind(plant) = %v, %v", kind, ok)
	}
	if cell, ok := s.Cell(plant); !ok || cell != (components.Cell{X: 0, Y: 0}) {
		t.Errorf("Cell(plant) = %v, %v", cell, ok)
	}
	if _, ok := s.AnimalState(plant); ok {
		t.Error("AnimalState should reject a plant")
	}
	if _, ok := s.AnimalState(animal); !ok {
		t.Error("AnimalState should accept an animal")
	}

	s.removePlant(plant, ReasonEaten)
	if _, ok := s.Kind(plant); ok {
		t.Error("Kind should reject a removed entity")
	}
	if _, ok := s.Cell(plant); ok {
		t.Error("Cell should reject a removed entity")
	}
	mustHoldInvariants(t, s)
}

func TestAtReportsOccupant(t *testing.T) {
	s := newTestSim(t, 3, 2, Options{})
	e := mustSpawnAnimal(t, s, 2, 1, brain.Traits{})

	if got, ok := s.At(2, 1); !ok || got != e {
		t.Errorf("At(2,1) = (%v, %v), want (%v, true)", got, ok, e)
	}
	if _, ok := s.At(0, 0); ok {
		t.Error("At(0,0) reported an occupant on an empty cell")
	}
	if _, ok := s.At(3, 0); ok {
		t.Error("At(3,0) reported an occupant out of bounds")
	}
}

func TestPopulateRandomBounds(t *testing.T) {
	tests := []struct {
		name                   string
		cols, rows             int
		plantFrac, animalFrac  float64
		wantPlants, wantAnimal int
	}{
		{"defaults", 10, 10, 0.08, 0.02, 8, 2},
		{"tiny fractions round up to one", 10, 10, 0.001, 0.001, 1, 1},
		{"zero fraction places none", 10, 10, 0, 0.1, 0, 10},
		{"overfull stops at grid size", 10, 10, 0.7, 0.7, 70, 30},
		{"single cell", 1, 1, 0.5, 0.5, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim(t, tt.cols, tt.rows, Options{Rand: rand.New(rand.NewSource(3))})
			s.PopulateRandom(tt.plantFrac, tt.animalFrac)

			if s.PlantCount() != tt.wantPlants || s.AnimalCount() != tt.wantAnimal {
				t.Errorf("got %d plants %d animals, want %d/%d", s.PlantCount(), s.AnimalCount(), tt.wantPlants, tt.wantAnimal)
			}
			mustHoldInvariants(t, s)

			seen := make(map[uint32]bool)
			for _, e := range s.Animals() {
				a, _ := s.AnimalState(e)
				if a.ID == 0 || seen[a.ID] {
					t.Errorf("animal id %d is zero or duplicated", a.ID)
				}
				seen[a.ID] = true
				if a.Energy != DefaultParams().InitialEnergy {
					t.Errorf("initial energy = %v", a.Energy)
				}
				if a.Laziness < 0 || a.Laziness >= 1 || a.WanderLust < 0 || a.WanderLust >= 1 {
					t.Errorf("traits out of range: %+v", a)
				}
			}
		})
	}
}

func TestPopulateRandomDrawOrder(t *testing.T) {
	// 2x1 grid: one shuffle draw, then laziness and wanderLust for the animal.
	rng := brain.NewSequence(0.5, 0.9, 0.25, 0.75)
	s := newTestSim(t, 2, 1, Options{Rand: rng})
	s.PopulateRandom(0.5, 0.5)

	if s.PlantCount() != 1 || s.AnimalCount() != 1 {
		t.Fatalf("got %d plants %d animals", s.PlantCount(), s.AnimalCount())
	}
	// j = int(0.9*2) = 1 leaves [(0,0),(1,0)] in place.
	if c, _ := s.Cell(s.Plants()[0]); c != (components.Cell{X: 0, Y: 0}) {
		t.Errorf("plant at %v, want (0,0)", c)
	}
	a, _ := s.AnimalState(s.Animals()[0])
	if a.Laziness != 0.25 || a.WanderLust != 0.75 {
		t.Errorf("traits = %v/%v, want 0.25/0.75", a.Laziness, a.WanderLust)
	}
	if rng.Drawn() != 3 {
		t.Errorf("drawn = %d, want 3", rng.Drawn())
	}
}

func TestRegrowthFillsEmptyCells(t *testing.T) {
	s := newTestSim(t, 4, 4, Options{
		Rand:   rand.New(rand.NewSource(1)),
		Params: Params{InitialEnergy: 10, Nutrition: 30, MoveCost: 1, StayCost: 0.3, PlantSpawnRate: 1},
	})
	s.Step()
	if s.PlantCount() != 16 {
		t.Errorf("spawn rate 1 should fill the grid, got %d plants", s.PlantCount())
	}
	mustHoldInvariants(t, s)
}

func TestResizeEvictsOutside(t *testing.T) {
	var removed []Removal
	s := newTestSim(t, 10, 10, Options{
		Rand:     rand.New(rand.NewSource(5)),
		OnRemove: func(r Removal) { removed = append(removed, r) },
	})
	s.PopulateRandom(0.3, 0.2)
	before := s.PlantCount() + s.AnimalCount()

	s.Resize(45, 38)

	if s.Cols() != 4 || s.Rows() != 3 {
		t.Fatalf("resized grid = %dx%d, want 4x3", s.Cols(), s.Rows())
	}
	after := s.PlantCount() + s.AnimalCount()
	if before-after != len(removed) {
		t.Errorf("dropped %d entities but notified %d", before-after, len(removed))
	}
	for _, r := range removed {
		if r.Reason != ReasonOutOfBounds {
			t.Errorf("removal reason = %v", r.Reason)
		}
		if r.Cell.X < 4 && r.Cell.Y < 3 {
			t.Errorf("entity at %v was inside the new bounds", r.Cell)
		}
	}
	for _, e := range append(s.Plants(), s.Animals()...) {
		c, _ := s.Cell(e)
		if !s.grid.IsInside(c.X, c.Y) {
			t.Errorf("entity at %v survived outside the grid", c)
		}
	}
	mustHoldInvariants(t, s)
}

func TestInvariantsHoldUnderRandomRuns(t *testing.T) {
	sizes := [][2]float64{{200, 150}, {120, 200}, {80, 60}, {300, 300}, {10, 10}, {150, 90}}

	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s, err := NewSimulation(200, 150, 10, Options{Rand: rng, StatsWindow: 10})
		if err != nil {
			t.Fatal(err)
		}
		s.PopulateRandom(0.2, 0.1)
		mustHoldInvariants(t, s)

		for i := 0; i < 300; i++ {
			s.Step()
			if i%50 == 49 {
				size := sizes[rng.Intn(len(sizes))]
				s.Resize(size[0], size[1])
			}
			mustHoldInvariants(t, s)

			if s.ShouldFlushStats() {
				stats := s.FlushStats()
				if stats.Animals != s.AnimalCount() || stats.Plants != s.PlantCount() {
					t.Fatalf("stats counts %d/%d disagree with %d/%d", stats.Plants, stats.Animals, s.PlantCount(), s.AnimalCount())
				}
			}
		}
	}
}

func TestSampleAnimals(t *testing.T) {
	s := newTestSim(t, 5, 5, Options{})
	mustSpawnPlant(t, s, 0, 0)
	mustSpawnAnimal(t, s, 1, 1, brain.Traits{Laziness: 0.1, WanderLust: 0.2})
	mustSpawnAnimal(t, s, 3, 3, brain.Traits{Laziness: 0.3, WanderLust: 0.4})

	sample := s.SampleAnimals(nil)
	if len(sample) != 2 {
		t.Fatalf("sampled %d animals, want 2", len(sample))
	}
	var lazy float64
	for _, a := range sample {
		lazy += a.Laziness
		if a.Energy != DefaultParams().InitialEnergy {
			t.Errorf("sampled energy %v", a.Energy)
		}
	}
	if math.Abs(lazy-0.4) > 1e-9 {
		t.Errorf("laziness sum = %v, want 0.4", lazy)
	}
}

func TestShuffleUsesEveryPosition(t *testing.T) {
	xs := []int{0, 1, 2, 3}
	// Draws of 0 swap each tail element with the head.
	shuffle(xs, brain.NewSequence(0))
	want := []int{1, 2, 3, 0}
	for i := range want {
		if xs[i] != want[i] {
			t.Fatalf("shuffle = %v, want %v", xs, want)
		}
	}

	// Draws near 1 leave the slice unchanged.
	ys := []int{0, 1, 2}
	shuffle(ys, brain.NewSequence(0.9999))
	if ys[0] != 0 || ys[1] != 1 || ys[2] != 2 {
		t.Errorf("shuffle with high draws = %v", ys)
	}
}
