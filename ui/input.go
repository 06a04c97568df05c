package ui

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.TogglePause()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyI) {
		if err := v.game.ToggleInterpolation(); err != nil {
			slog.Error("failed to switch interpolation", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := v.game.Reseed(v.game.Seed() + 1); err != nil {
			slog.Error("failed to reseed", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyM) {
		v.game.ToggleMask()
	}
	if rl.IsKeyPressed(rl.KeyB) {
		v.surface.Additive = !v.surface.Additive
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.showStats = !v.showStats
	}
	if rl.IsKeyPressed(rl.KeyS) {
		if path, err := v.game.SaveSnapshot(); err != nil {
			slog.Warn("snapshot not saved", "error", err)
		} else {
			slog.Info("snapshot requested", "path", path)
		}
	}
	if rl.IsKeyPressed(rl.KeyC) && v.probe.HasProbe {
		rl.SetClipboardText(fmt.Sprintf("%.4f,%.4f,%.6f,%.6f",
			v.probe.ProbeX, v.probe.ProbeY, v.probe.ProbeU, v.probe.ProbeV))
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.camera.Resize(w, h)
	v.stats.SetPosition(int32(w)-270, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}
