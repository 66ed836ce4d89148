// Package components defines ECS components for the simulation.
package components

// Kind identifies the species of a grid entity.
type Kind uint8

const (
	KindPlant Kind = iota
	KindAnimal
)

// String returns the lowercase species name.
func (k Kind) String() string {
	switch k {
	case KindPlant:
		return "plant"
	case KindAnimal:
		return "animal"
	default:
		return "unknown"
	}
}

// Species tags every grid entity with its kind.
type Species struct {
	Kind Kind
}
