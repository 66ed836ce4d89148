package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/ui"
)

// handleInput processes keyboard and mouse input.
func (w *window) handleInput() {
	// Window resize propagation
	if rl.IsWindowResized() && !rl.IsWindowMinimized() {
		w.resize(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		w.runner.TogglePause()
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		w.runner.SetSpeed(w.runner.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		w.runner.SetSpeed(w.runner.Speed() + 1)
	}

	// Single step, mostly useful while paused
	if rl.IsKeyPressed(rl.KeyN) {
		w.runner.StepOnce()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		w.reseed()
	}

	// Panel toggles
	if key := rl.GetKeyPressed(); key != 0 {
		w.overlays.HandleKeyPress(key)
	}

	w.handleCameraInput()
	w.handleSelection()
}

// handleCameraInput processes camera pan/zoom controls.
func (w *window) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / w.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		w.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		w.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		w.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		w.camera.Pan(0, -panSpeed)
	}

	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		w.camera.ZoomBy(1.0 + wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		w.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		w.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyZ) || rl.IsKeyPressed(rl.KeyHome) {
		w.camera.Reset()
	}
}

// handleSelection picks the cell under a left click. Clicking the selected
// cell again clears the selection.
func (w *window) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		return
	}
	mouse := rl.GetMousePosition()
	if w.overlays.IsEnabled(ui.OverlayControls) && w.controls.Contains(mouse.X, mouse.Y) {
		return
	}

	sim := w.runner.Sim()
	col, row, ok := w.camera.CellAt(mouse.X, mouse.Y, float32(sim.CellSize()))
	if !ok || col >= sim.Cols() || row >= sim.Rows() {
		w.selected = nil
		return
	}
	c := components.Cell{X: col, Y: row}
	if w.selected != nil && *w.selected == c {
		w.selected = nil
		return
	}
	w.selected = &c
}
