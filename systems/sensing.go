package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/brain"
	"github.com/pthm-cable/meadow/components"
)

// SenseAdjacentPlant looks for a plant in the four orthogonal neighbours of
// at, in the order +x, -x, +y, -y, and returns the first one found.
func SenseAdjacentPlant(g *Grid, speciesMap *ecs.Map1[components.Species], at components.Cell) (components.Cell, bool) {
	for _, d := range components.Neighbors {
		n := at.Add(d)
		e, ok := g.Occupant(n.X, n.Y)
		if !ok {
			continue
		}
		if s := speciesMap.Get(e); s != nil && s.Kind == components.KindPlant {
			return n, true
		}
	}
	return components.Cell{}, false
}

// AdjacentFreeMoves appends every empty in-bounds neighbour of at to dst,
// in the same order as SenseAdjacentPlant. Reuse dst across calls to avoid
// allocations.
func AdjacentFreeMoves(g *Grid, at components.Cell, dst []brain.Option) []brain.Option {
	for _, d := range components.Neighbors {
		n := at.Add(d)
		if !g.IsInside(n.X, n.Y) {
			continue
		}
		if _, occupied := g.Occupant(n.X, n.Y); occupied {
			continue
		}
		dst = append(dst, brain.Option{Target: n, Dir: d})
	}
	return dst
}

// Sense gathers the inputs an animal hands to its brain.
func Sense(g *Grid, speciesMap *ecs.Map1[components.Species], at components.Cell, animal *components.Animal, moves []brain.Option) brain.Senses {
	plant, found := SenseAdjacentPlant(g, speciesMap, at)
	return brain.Senses{
		PlantFound: found,
		Plant:      plant,
		HasLastDir: animal.HasLastMove,
		LastDir:    animal.LastMoveDir,
		FreeMoves:  AdjacentFreeMoves(g, at, moves[:0]),
	}
}
