// Package systems provides the grid occupancy map and the sensing queries
// animals run against it.
package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/components"
)

// ErrInvalidDimensions is returned when a grid is built with a non-positive
// width, height or cell size.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// noEntity marks an empty cell.
var noEntity ecs.Entity

// Grid is a fixed cell-size occupancy map holding at most one entity handle
// per cell. It never owns the entities it references.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    []ecs.Entity // row-major, index = y*cols + x
}

// NewGrid creates a grid covering widthPx x heightPx pixels.
func NewGrid(widthPx, heightPx, cellSize float64) (*Grid, error) {
	if !(widthPx > 0) || !(heightPx > 0) || !(cellSize > 0) {
		return nil, fmt.Errorf("%w: width=%v height=%v cell_size=%v", ErrInvalidDimensions, widthPx, heightPx, cellSize)
	}

	cols := cellsFor(widthPx, cellSize)
	rows := cellsFor(heightPx, cellSize)

	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([]ecs.Entity, cols*rows),
	}, nil
}

// cellsFor returns how many whole cells fit in px, never fewer than one.
func cellsFor(px, cellSize float64) int {
	n := int(math.Floor(px / cellSize))
	if n < 1 {
		return 1
	}
	return n
}

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the pixel size of a cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Len returns the total number of cells.
func (g *Grid) Len() int { return g.cols * g.rows }

// IsInside reports whether (x, y) is a valid cell.
func (g *Grid) IsInside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

// Occupant returns the entity at (x, y). The second result is false for an
// empty or out-of-bounds cell.
func (g *Grid) Occupant(x, y int) (ecs.Entity, bool) {
	if !g.IsInside(x, y) {
		return noEntity, false
	}
	e := g.cells[y*g.cols+x]
	return e, e != noEntity
}

// SetOccupant overwrites the cell at (x, y). It returns false and changes
// nothing when the cell is out of bounds. Callers must not clobber a live
// occupant.
func (g *Grid) SetOccupant(x, y int, e ecs.Entity) bool {
	if !g.IsInside(x, y) {
		return false
	}
	g.cells[y*g.cols+x] = e
	return true
}

// Clear empties the cell at (x, y).
func (g *Grid) Clear(x, y int) bool {
	return g.SetOccupant(x, y, noEntity)
}

// EmptyCells lists every unoccupied cell in row-major order. The order is
// deterministic; callers that need an unbiased order must shuffle.
func (g *Grid) EmptyCells() []components.Cell {
	out := make([]components.Cell, 0, g.EmptyCount())
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.cells[y*g.cols+x] == noEntity {
				out = append(out, components.Cell{X: x, Y: y})
			}
		}
	}
	return out
}

// EmptyCount returns the number of unoccupied cells.
func (g *Grid) EmptyCount() int {
	n := 0
	for _, e := range g.cells {
		if e == noEntity {
			n++
		}
	}
	return n
}

// Resize recomputes the grid extent for new pixel dimensions, keeping the
// cell size. The overlapping rectangle is copied; cells outside the new
// extent are dropped without notice and the caller must reconcile its own
// entity lists.
func (g *Grid) Resize(widthPx, heightPx float64) {
	cols := cellsFor(widthPx, g.cellSize)
	rows := cellsFor(heightPx, g.cellSize)

	cells := make([]ecs.Entity, cols*rows)
	for y := 0; y < min(rows, g.rows); y++ {
		for x := 0; x < min(cols, g.cols); x++ {
			cells[y*cols+x] = g.cells[y*g.cols+x]
		}
	}

	g.cols = cols
	g.rows = rows
	g.cells = cells
}
