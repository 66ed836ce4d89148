package components

// Animal holds the mobile forager state. Laziness and WanderLust are drawn
// once at birth and never change.
type Animal struct {
	ID                 uint32
	Energy             float64
	CyclesSinceLastEat int
	Laziness           float64 // 0..1, chance to skip moving when idle
	WanderLust         float64 // 0..1, bias towards repeating the last move
	LastMoveDir        Dir
	HasLastMove        bool
}
