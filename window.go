package main

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/game"
	"github.com/pthm-cable/meadow/renderer"
	"github.com/pthm-cable/meadow/telemetry"
	"github.com/pthm-cable/meadow/ui"
)

const controlsLegend = "[Space] Pause  [,/.] Speed  [N] Step  [R] Reseed  [Arrows] Pan  [Wheel] Zoom  [Z] Reset view  [G/C/I/S/P] Panels"

// perfRefresh bounds how often process stats are sampled for the panel.
const perfRefresh = time.Second

// window drives a Runner inside a raylib window.
type window struct {
	runner *game.Runner

	camera   *camera.Camera
	view     *renderer.View
	overlays *ui.OverlayRegistry

	hud       *ui.HUD
	controls  *ui.ControlsPanel
	inspector *ui.Inspector
	stats     *ui.StatsPanel
	perfPanel *ui.PerfPanel

	selected   *components.Cell
	perfStats  telemetry.PerfStats
	lastPerfAt time.Time
	screenW    int32
	screenH    int32
}

func newWindow(r *game.Runner, screenW, screenH int32) *window {
	w := &window{
		runner:    r,
		view:      renderer.NewView(),
		overlays:  ui.NewOverlayRegistry(),
		hud:       ui.NewHUD(),
		controls:  ui.NewControlsPanel(0, 0, 220),
		inspector: ui.NewInspector(0, 0, 240),
		stats:     ui.NewStatsPanel(0, 0, 220),
		perfPanel: ui.NewPerfPanel(0, 0),
		screenW:   screenW,
		screenH:   screenH,
	}
	w.camera = camera.New(float32(screenW), float32(screenH), w.worldW(), w.worldH())
	w.layout()
	return w
}

func (w *window) worldW() float32 {
	sim := w.runner.Sim()
	return float32(float64(sim.Cols()) * sim.CellSize())
}

func (w *window) worldH() float32 {
	sim := w.runner.Sim()
	return float32(float64(sim.Rows()) * sim.CellSize())
}

// layout positions panels along the right edge.
func (w *window) layout() {
	x := w.screenW - 230
	w.controls.SetPosition(x, 10)
	w.stats.SetPosition(x, 10+w.controls.Height()+10)
	w.inspector.SetPosition(10, 100)
	w.perfPanel.SetPosition(15, w.screenH-190)
}

// run loops until the window closes or maxTicks is reached.
func (w *window) run(maxTicks int) {
	for !rl.WindowShouldClose() {
		w.handleInput()
		w.runner.Advance(time.Now())
		w.draw()
		w.runner.Perf().RecordFrame()

		if maxTicks > 0 && int(w.runner.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", w.runner.Tick())
			return
		}
	}
}

func (w *window) draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	sim := w.runner.Sim()
	w.view.ShowGrid = w.overlays.IsEnabled(ui.OverlayGrid)
	w.view.Draw(sim, w.camera, w.selected)

	w.hud.Draw(ui.HUDData{
		Title:   "Meadow",
		Plants:  sim.PlantCount(),
		Animals: sim.AnimalCount(),
		Cols:    sim.Cols(),
		Rows:    sim.Rows(),
		Tick:    sim.Tick(),
		Speed:   w.runner.Speed(),
		FPS:     rl.GetFPS(),
		Paused:  w.runner.Paused(),
		Seed:    w.runner.Seed(),
	})

	if w.overlays.IsEnabled(ui.OverlayControls) {
		w.applyControls(w.controls.Draw(ui.ControlsState{
			Paused:   w.runner.Paused(),
			Speed:    w.runner.Speed(),
			MaxSpeed: w.runner.MaxSpeed(),
			ShowGrid: w.overlays.IsEnabled(ui.OverlayGrid),
		}))
	}

	if w.overlays.IsEnabled(ui.OverlayStats) {
		stats, ok := w.runner.LastStats()
		w.stats.Draw(stats, ok)
	}

	if w.overlays.IsEnabled(ui.OverlayInspector) && w.selected != nil {
		w.inspector.Draw(w.inspectorData(*w.selected))
	}

	if w.overlays.IsEnabled(ui.OverlayPerf) {
		if now := time.Now(); now.Sub(w.lastPerfAt) >= perfRefresh {
			w.perfStats = w.runner.Perf().Stats()
			w.lastPerfAt = now
		}
		w.perfPanel.Draw(w.perfStats)
	}

	w.hud.DrawControls(w.screenW, w.screenH, controlsLegend)
}

func (w *window) applyControls(a ui.ControlActions) {
	if a.TogglePause {
		w.runner.TogglePause()
	}
	if a.Step {
		w.runner.StepOnce()
	}
	if a.Speed != w.runner.Speed() {
		w.runner.SetSpeed(a.Speed)
	}
	w.overlays.SetEnabled(ui.OverlayGrid, a.ShowGrid)
	if a.Reseed {
		w.reseed()
	}
}

func (w *window) reseed() {
	if err := w.runner.Reseed(); err != nil {
		slog.Error("reseed failed", "error", err)
		return
	}
	w.selected = nil
}

func (w *window) inspectorData(c components.Cell) ui.InspectorData {
	sim := w.runner.Sim()
	data := ui.InspectorData{
		Cell:          c,
		Tick:          sim.Tick(),
		InitialEnergy: sim.Params().InitialEnergy,
	}
	e, ok := sim.At(c.X, c.Y)
	if !ok {
		return data
	}
	kind, ok := sim.Kind(e)
	if !ok {
		return data
	}
	data.Occupied = true
	data.Kind = kind
	if state, ok := sim.AnimalState(e); ok {
		data.Animal = state
		data.Lifetime = sim.Lifetimes().Get(state.ID)
	}
	return data
}

// resize propagates a new window size to the simulation, camera and layout.
func (w *window) resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == w.screenW && height == w.screenH {
		return
	}
	w.screenW, w.screenH = width, height
	w.runner.Resize(float64(width), float64(height))
	w.camera.Resize(float32(width), float32(height), w.worldW(), w.worldH())
	w.layout()

	if w.selected != nil && (w.selected.X >= w.runner.Sim().Cols() || w.selected.Y >= w.runner.Sim().Rows()) {
		w.selected = nil
	}
}

