// Package brain implements the per-animal decision policy.
//
// Decide is a pure function of what the animal senses, its two fixed
// traits, and a uniform random source. Every random draw goes through the
// Source passed in, in a fixed order, so a scripted source reproduces a
// decision exactly.
package brain

import "github.com/pthm-cable/meadow/components"

// Policy probabilities.
const (
	EatChance         = 0.99 // eat when a plant is adjacent
	DeclineMoveChance = 0.5  // move after declining a meal
	WanderBase        = 0.5  // repeat-direction preference at wanderLust=0
)

// Source is a uniform random generator over [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Action is the kind of decision an animal makes.
type Action uint8

const (
	Stay Action = iota
	Move
	Eat
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Stay:
		return "stay"
	case Move:
		return "move"
	case Eat:
		return "eat"
	default:
		return "unknown"
	}
}

// Option is a free neighbouring cell and the step that reaches it.
type Option struct {
	Target components.Cell
	Dir    components.Dir
}

// Traits are the fixed behavioural knobs of an animal.
type Traits struct {
	Laziness   float64
	WanderLust float64
}

// Senses is everything an animal perceives before deciding.
type Senses struct {
	PlantFound bool
	Plant      components.Cell
	HasLastDir bool
	LastDir    components.Dir
	FreeMoves  []Option
}

// Decision is the chosen action and, for Eat and Move, its target cell.
type Decision struct {
	Action Action
	Target components.Cell
}

// Decide picks eat, move or stay.
func Decide(in Senses, t Traits, rng Source) Decision {
	if in.PlantFound {
		if rng.Float64() < EatChance {
			return Decision{Action: Eat, Target: in.Plant}
		}
		if len(in.FreeMoves) == 0 {
			return Decision{Action: Stay}
		}
		if rng.Float64() < DeclineMoveChance {
			m, _ := PickMove(in.FreeMoves, rng)
			return Decision{Action: Move, Target: m.Target}
		}
		return Decision{Action: Stay}
	}

	if len(in.FreeMoves) == 0 {
		return Decision{Action: Stay}
	}

	moveProbability := 1 - t.Laziness
	if rng.Float64() >= moveProbability {
		return Decision{Action: Stay}
	}

	if in.HasLastDir && t.WanderLust > 0 {
		if m, ok := findDir(in.FreeMoves, in.LastDir); ok {
			if rng.Float64() < WanderBase+(1-WanderBase)*t.WanderLust {
				return Decision{Action: Move, Target: m.Target}
			}
		}
	}

	m, _ := PickMove(in.FreeMoves, rng)
	return Decision{Action: Move, Target: m.Target}
}

// PickMove selects one of moves uniformly with a single draw.
// Returns false only when moves is empty, in which case nothing is drawn.
func PickMove(moves []Option, rng Source) (Option, bool) {
	n := len(moves)
	if n == 0 {
		return Option{}, false
	}
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	} else if i < 0 {
		i = 0
	}
	return moves[i], true
}

func findDir(moves []Option, d components.Dir) (Option, bool) {
	for _, m := range moves {
		if m.Dir == d {
			return m, true
		}
	}
	return Option{}, false
}
