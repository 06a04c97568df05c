// Flow preview tool - interactive synthetic lake tuning with sliders.
//
// Usage: go run ./cmd/flowpreview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lakeflow/camera"
	"github.com/pthm-cable/lakeflow/config"
	"github.com/pthm-cable/lakeflow/game"
	"github.com/pthm-cable/lakeflow/gridio"
	"github.com/pthm-cable/lakeflow/renderer"
	"github.com/pthm-cable/lakeflow/systems"
	"github.com/pthm-cable/lakeflow/ui"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 720
	previewH     = 520
	panelWidth   = windowWidth - previewW - 30
)

// PreviewParams holds the tunable lake and particle parameters.
type PreviewParams struct {
	Gyres          float32
	Strength       float32
	ShorelineNoise float32
	EddyNoise      float32
	Seed           float32

	SpeedScale float32
	MaxAge     float32
	MaxHistory float32
	Count      float32
}

func defaultParams(cfg *config.Config) PreviewParams {
	return PreviewParams{
		Gyres:          float32(cfg.Synthetic.Gyres),
		Strength:       float32(cfg.Synthetic.Strength),
		ShorelineNoise: float32(cfg.Synthetic.ShorelineNoise),
		EddyNoise:      float32(cfg.Synthetic.EddyNoise),
		Seed:           float32(cfg.Synthetic.Seed),
		SpeedScale:     float32(cfg.Particles.SpeedScale),
		MaxAge:         float32(cfg.Particles.MaxAge),
		MaxHistory:     float32(cfg.Particles.MaxHistory),
		Count:          float32(cfg.Particles.Count),
	}
}

// apply writes params into cfg.
func (p PreviewParams) apply(cfg *config.Config) {
	cfg.Synthetic.Gyres = int(p.Gyres)
	cfg.Synthetic.Strength = float64(p.Strength)
	cfg.Synthetic.ShorelineNoise = float64(p.ShorelineNoise)
	cfg.Synthetic.EddyNoise = float64(p.EddyNoise)
	cfg.Synthetic.Seed = int64(p.Seed)
	cfg.Particles.SpeedScale = float64(p.SpeedScale)
	cfg.Particles.MaxAge = int(p.MaxAge)
	cfg.Particles.MaxHistory = int(p.MaxHistory)
	cfg.Particles.Count = int(p.Count)
	if cfg.Particles.ResetAgeMargin >= cfg.Particles.MaxAge {
		cfg.Particles.ResetAgeMargin = cfg.Particles.MaxAge / 2
	}
}

// slider draws a labelled slider and reports whether the value changed.
func slider(x float32, y *float32, label, format string, value *float32, lo, hi float32, integer bool) bool {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		*value, lo, hi,
	)
	if integer {
		next = float32(int(next + 0.5))
	}
	rl.DrawText(fmt.Sprintf(format, *value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 30
	if next != *value {
		*value = next
		return true
	}
	return false
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Lake Flow Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	palette, err := renderer.NewPalette(cfg.Render.Background, cfg.Render.MaskColor, cfg.Render.TrailColor, cfg.Render.TrailAlpha)
	if err != nil {
		slog.Error("bad palette", "error", err)
		os.Exit(1)
	}
	flowRenderer := renderer.NewFlowRenderer(palette, true)
	surface := ui.NewRaylibSurface(float32(cfg.Render.LineWidth))

	params := defaultParams(cfg)
	mode := systems.Bilinear

	var grid *gridio.Grid
	var flow *systems.FlowFieldSystem
	regenGrid, regenFlow := true, true

	for !rl.WindowShouldClose() {
		if regenGrid {
			params.apply(cfg)
			g, err := gridio.Synthetic(game.SyntheticConfig(cfg))
			if err != nil {
				slog.Warn("synthetic lake rejected", "error", err)
			} else {
				grid = g
			}
			regenGrid = false
			regenFlow = true
		}
		if regenFlow && grid != nil {
			params.apply(cfg)
			if next, err := newFlow(cfg, grid, mode); err != nil {
				slog.Warn("flow rejected", "error", err)
			} else {
				if flow != nil {
					flow.Close()
				}
				flow = next
			}
			regenFlow = false
		}

		if flow != nil {
			flow.Update()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview area
		rl.DrawRectangle(10, 10, previewW, previewH, rl.Color{R: palette.Background.R, G: palette.Background.G, B: palette.Background.B, A: 255})
		if flow != nil {
			field := flow.Field()
			view := camera.Fit(previewW, previewH, field.Cols(), field.Rows(), 8)
			view.OriginX += 10
			view.OriginY += 10
			flowRenderer.Draw(surface, flow, view)

			var speeds []float64
			speeds = flow.Speeds(speeds)
			var mean float64
			for _, s := range speeds {
				mean += s
			}
			if len(speeds) > 0 {
				mean /= float64(len(speeds))
			}
			statsY := int32(previewH + 25)
			rl.DrawText(fmt.Sprintf("Grid: %dx%d  Wet: %d  Particles: %d", field.Rows(), field.Cols(), field.WetCount(), flow.Len()), 15, statsY, 16, rl.DarkGray)
			rl.DrawText(fmt.Sprintf("Mean speed: %.3f  Interpolation: %s  FPS: %d", mean, mode, rl.GetFPS()), 15, statsY+20, 16, rl.DarkGray)
		}
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)
		rl.DrawText("Synthetic Lake", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 30

		if slider(panelX, &panelY, "Gyres", "%.0f", &params.Gyres, 1, 6, true) {
			regenGrid = true
		}
		if slider(panelX, &panelY, "Strength (peak current)", "%.2f", &params.Strength, 0.05, 2, false) {
			regenGrid = true
		}
		if slider(panelX, &panelY, "Shoreline noise", "%.2f", &params.ShorelineNoise, 0, 1, false) {
			regenGrid = true
		}
		if slider(panelX, &panelY, "Eddy noise", "%.2f", &params.EddyNoise, 0, 1, false) {
			regenGrid = true
		}
		if slider(panelX, &panelY, "Seed", "%.0f", &params.Seed, 0, 9999, true) {
			regenGrid = true
		}

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 10
		rl.DrawText("Particles", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25

		if slider(panelX, &panelY, "Speed scale", "%.2f", &params.SpeedScale, 0.1, 5, false) {
			regenFlow = true
		}
		if slider(panelX, &panelY, "Max age", "%.0f", &params.MaxAge, 15, 300, true) {
			regenFlow = true
		}
		if slider(panelX, &panelY, "Max history", "%.0f", &params.MaxHistory, 2, 40, true) {
			regenFlow = true
		}
		if slider(panelX, &panelY, "Count", "%.0f", &params.Count, 100, 10000, true) {
			regenFlow = true
		}
		panelY += 5

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, mode.String()) {
			if mode == systems.Bilinear {
				mode = systems.Bicubic
			} else {
				mode = systems.Bilinear
			}
			regenFlow = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = float32(rl.GetRandomValue(0, 9999))
			regenGrid = true
		}
		panelY += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			fresh, _ := config.Load("")
			params = defaultParams(fresh)
			mode = systems.Bilinear
			regenGrid = true
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlFor(params, mode))
		}

		rl.EndDrawing()
	}

	if flow != nil {
		flow.Close()
	}
}

// newFlow builds a population for the current config on grid.
func newFlow(cfg *config.Config, grid *gridio.Grid, mode systems.Interpolation) (*systems.FlowFieldSystem, error) {
	field, err := grid.Field(systems.WithInterpolation(mode))
	if err != nil {
		return nil, err
	}
	return systems.NewFlowFieldSystem(field, cfg.FlowConfig(1))
}

func yamlFor(p PreviewParams, mode systems.Interpolation) string {
	return fmt.Sprintf(`field:
  interpolation: %s
particles:
  count: %d
  max_age: %d
  max_history: %d
  speed_scale: %.2f
synthetic:
  seed: %d
  gyres: %d
  strength: %.2f
  shoreline_noise: %.2f
  eddy_noise: %.2f`,
		mode, int(p.Count), int(p.MaxAge), int(p.MaxHistory), p.SpeedScale,
		int64(p.Seed), int(p.Gyres), p.Strength, p.ShorelineNoise, p.EddyNoise)
}
