// Package renderer draws the meadow grid with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/game"
)

// Minimum alpha for a starving animal, so it never vanishes entirely.
const minAnimalAlpha = 0.35

// View renders grid lines, plants and animals through a camera.
type View struct {
	Background  rl.Color
	GridColor   rl.Color
	PlantColor  rl.Color
	AnimalColor rl.Color
	SelectColor rl.Color

	// ShowGrid toggles the cell lines.
	ShowGrid bool
}

// NewView creates a view with the meadow palette.
func NewView() *View {
	return &View{
		Background:  rl.GetColor(0xf5f5dcff),
		GridColor:   rl.Color{R: 220, G: 220, B: 200, A: 255},
		PlantColor:  rl.GetColor(0x6b8e23ff),
		AnimalColor: rl.GetColor(0xd2b48cff),
		SelectColor: rl.Color{R: 200, G: 60, B: 60, A: 255},
		ShowGrid:    true,
	}
}

// Draw renders the simulation. selected, when valid, is outlined.
func (v *View) Draw(sim *game.Simulation, cam *camera.Camera, selected *components.Cell) {
	rl.ClearBackground(v.Background)

	size := float32(sim.CellSize())
	if v.ShowGrid {
		v.drawGrid(sim.Cols(), sim.Rows(), size, cam)
	}

	for _, e := range sim.Plants() {
		c, ok := sim.Cell(e)
		if !ok {
			continue
		}
		v.fillCell(c, size, cam, v.PlantColor)
	}

	initial := sim.Params().InitialEnergy
	for _, e := range sim.Animals() {
		c, ok := sim.Cell(e)
		if !ok {
			continue
		}
		state, _ := sim.AnimalState(e)
		v.fillCell(c, size, cam, rl.Fade(v.AnimalColor, energyAlpha(state.Energy, initial)))
	}

	if selected != nil {
		x, y := cam.WorldToScreen(float32(selected.X)*size, float32(selected.Y)*size)
		s := size * cam.Zoom
		rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: s, Height: s}, 2, v.SelectColor)
	}
}

func (v *View) drawGrid(cols, rows int, size float32, cam *camera.Camera) {
	w := float32(cols) * size
	h := float32(rows) * size
	for i := 0; i <= cols; i++ {
		x := float32(i) * size
		x0, y0 := cam.WorldToScreen(x, 0)
		x1, y1 := cam.WorldToScreen(x, h)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, v.GridColor)
	}
	for j := 0; j <= rows; j++ {
		y := float32(j) * size
		x0, y0 := cam.WorldToScreen(0, y)
		x1, y1 := cam.WorldToScreen(w, y)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, v.GridColor)
	}
}

func (v *View) fillCell(c components.Cell, size float32, cam *camera.Camera, color rl.Color) {
	half := size / 2
	cx := float32(c.X)*size + half
	cy := float32(c.Y)*size + half
	if !cam.IsVisible(cx, cy, half) {
		return
	}
	x, y := cam.WorldToScreen(float32(c.X)*size, float32(c.Y)*size)
	s := size * cam.Zoom
	// 1px inset keeps grid lines visible between neighbours.
	rl.DrawRectangleRec(rl.Rectangle{X: x + 1, Y: y + 1, Width: s - 1, Height: s - 1}, color)
}

// energyAlpha maps energy to an opacity in [minAnimalAlpha, 1], reaching
// full opacity at the initial energy.
func energyAlpha(energy, initial float64) float32 {
	if initial <= 0 {
		return 1
	}
	ratio := energy / initial
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return float32(minAnimalAlpha + (1-minAnimalAlpha)*ratio)
}
