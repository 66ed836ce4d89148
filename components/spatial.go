package components

// Cell is an entity's grid coordinate.
type Cell struct {
	X, Y int
}

// Add returns the cell offset by d.
func (c Cell) Add(d Dir) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns the direction from o to c.
func (c Cell) Sub(o Cell) Dir {
	return Dir{X: c.X - o.X, Y: c.Y - o.Y}
}

// Dir is an orthogonal unit step on the grid.
type Dir struct {
	X, Y int
}

// Neighbor directions in sensing order: +x, -x, +y, -y.
var Neighbors = [4]Dir{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}
