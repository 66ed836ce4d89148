package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/telemetry"
)

// ControlsState is what the controls panel displays.
type ControlsState struct {
	Paused   bool
	Speed    int
	MaxSpeed int
	ShowGrid bool
}

// ControlActions reports what the user clicked this frame.
type ControlActions struct {
	TogglePause bool
	Step        bool
	Reseed      bool
	Speed       int // requested speed, equal to the current one when unchanged
	ShowGrid    bool
}

// ControlsPanel renders the raygui simulation controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Height returns the panel height.
func (c *ControlsPanel) Height() int32 {
	return 150
}

// Contains reports whether a screen point is over the panel, so clicks on
// it are not treated as cell selection.
func (c *ControlsPanel) Contains(px, py float32) bool {
	return px >= float32(c.x) && px < float32(c.x+c.width) &&
		py >= float32(c.y) && py < float32(c.y+c.Height())
}

// Draw renders the panel and returns the user's actions.
func (c *ControlsPanel) Draw(state ControlsState) ControlActions {
	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.Height())

	actions := ControlActions{Speed: state.Speed, ShowGrid: state.ShowGrid}
	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - padding*2)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 24

	half := (inner - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 24}, "Step") {
		actions.Step = true
	}
	y += 32

	rl.DrawText(fmt.Sprintf("Speed: %dx", state.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	maxSpeed := max(state.MaxSpeed, 1)
	newSpeed := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: y, Width: inner - 50, Height: 16},
		"1", fmt.Sprintf("%d", maxSpeed),
		float32(state.Speed), 1, float32(maxSpeed),
	)
	actions.Speed = int(math.Round(float64(newSpeed)))
	y += 24

	actions.ShowGrid = gui.CheckBox(rl.Rectangle{X: x, Y: y + 4, Width: 14, Height: 14}, "Grid", state.ShowGrid)
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 24}, "Reseed") {
		actions.Reseed = true
	}

	return actions
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

// StatsPanel renders the most recent telemetry window.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the stats panel. ok is false until the first window closes.
func (s *StatsPanel) Draw(stats telemetry.WindowStats, ok bool) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	content := s.width - padding*2

	panelHeight := lineHeight*11 + padding*2
	r.DrawPanel(s.x, s.y, s.width, panelHeight)

	y := s.y + padding
	rl.DrawText("Window Stats", s.x+padding, y, 14, rl.White)
	y += lineHeight + 2

	if !ok {
		r.DrawLabelValue(s.x+padding, y, "Window", "pending", content)
		return s.y + panelHeight
	}

	y = r.DrawLabelValue(s.x+padding, y, "Window end", fmt.Sprintf("%d", stats.WindowEndTick), content)
	y = r.DrawLabelValue(s.x+padding, y, "Plant cover", fmt.Sprintf("%.1f%%", stats.PlantCover*100), content)
	y = r.DrawLabelValue(s.x+padding, y, "Eaten", fmt.Sprintf("%d", stats.PlantsEaten), content)
	y = r.DrawLabelValue(s.x+padding, y, "Grown", fmt.Sprintf("%d", stats.PlantsGrown), content)
	y = r.DrawLabelValue(s.x+padding, y, "Moves", fmt.Sprintf("%d (%d failed)", stats.Moves, stats.FailedMoves), content)
	y = r.DrawLabelValue(s.x+padding, y, "Starved", fmt.Sprintf("%d", stats.Starved), content)
	y = r.DrawLabelValue(s.x+padding, y, "Energy p50", fmt.Sprintf("%.1f", stats.EnergyP50), content)
	y = r.DrawLabelValue(s.x+padding, y, "Energy p10", fmt.Sprintf("%.1f", stats.EnergyP10), content)
	y = r.DrawLabelValue(s.x+padding, y, "Hunger p90", fmt.Sprintf("%.0f", stats.HungerP90), content)

	return y
}
