package ui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lakeflow/camera"
	"github.com/pthm-cable/lakeflow/game"
)

const controlsText = "SPACE pause | ,/. speed | I interp | R reseed | M mask | B blend | TAB stats | S snapshot | C copy probe | arrows/wheel camera | HOME reset"

// Viewer runs the interactive window for a game. Must be created after
// rl.InitWindow.
type Viewer struct {
	game    *game.Game
	camera  *camera.Camera
	surface *RaylibSurface
	hud     *HUD
	stats   *StatsPanel

	screenWidth  float32
	screenHeight float32
	showStats    bool
	probe        HUDData
}

// NewViewer creates a viewer sized to the current window.
func NewViewer(g *game.Game) *Viewer {
	cfg := g.Config()
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	field := g.Field()

	v := &Viewer{
		game:         g,
		camera:       camera.New(w, h, field.Cols(), field.Rows(), float32(cfg.Screen.Margin)),
		surface:      NewRaylibSurface(float32(cfg.Render.LineWidth)),
		hud:          NewHUD(),
		stats:        NewStatsPanel(int32(w)-270, 10, 260),
		screenWidth:  w,
		screenHeight: h,
	}
	return v
}

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *camera.Camera { return v.camera }

// Run loops until the window closes or maxTicks is reached (0 = unlimited).
func (v *Viewer) Run(maxTicks int) {
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && v.game.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", v.game.Tick())
			return
		}
	}
}

// Update processes input for the frame.
func (v *Viewer) Update() {
	v.handleInput()
	v.updateProbe()
}

// Draw advances the game and renders the frame with the overlays.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	v.surface.Clear(v.game.Palette().Background)

	v.game.Frame(v.surface, v.camera.Viewport())

	field := v.game.Field()
	data := v.probe
	data.Title = "Lake Flow"
	data.Particles = v.game.Len()
	data.Resets = v.game.LastResets()
	data.WetCells = field.WetCount()
	data.Tick = v.game.Tick()
	data.Speed = v.game.StepsPerUpdate()
	data.FPS = rl.GetFPS()
	data.Interpolation = field.Interpolation().String()
	data.Seed = v.game.Seed()
	data.Paused = v.game.Paused()
	data.ShowMask = v.game.Renderer().ShowMask
	v.hud.Draw(data)

	if v.showStats {
		v.stats.Draw(v.game.LastStats(), v.game.Perf().Stats())
	}
	v.hud.DrawControls(int32(v.screenHeight), controlsText)

	rl.EndDrawing()
}

// updateProbe samples the field under the mouse cursor.
func (v *Viewer) updateProbe() {
	mouse := rl.GetMousePosition()
	gx, gy := v.camera.ScreenToGrid(mouse.X, mouse.Y)
	field := v.game.Field()
	if gx < 0 || gy < 0 || gx >= float64(field.Cols()) || gy >= float64(field.Rows()) {
		v.probe = HUDData{}
		return
	}
	u, vv, wet := v.game.Probe(gx, gy)
	v.probe = HUDData{
		HasProbe: true,
		ProbeX:   gx,
		ProbeY:   gy,
		ProbeU:   u,
		ProbeV:   vv,
		ProbeWet: wet,
	}
}
