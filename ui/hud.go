package ui

import (
	"fmt"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/lakeflow/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Particles     int
	Resets        int
	WetCells      int
	Tick          int
	Speed         int
	FPS           int32
	Interpolation string
	Seed          int64
	Paused        bool
	ShowMask      bool

	// Cursor probe, in grid units
	HasProbe bool
	ProbeX   float64
	ProbeY   float64
	ProbeU   float64
	ProbeV   float64
	ProbeWet bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Resets: %d | Wet cells: %d", data.Particles, data.Resets, data.WetCells),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | %s | seed %d", data.Tick, data.Speed, data.FPS, data.Interpolation, data.Seed),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if !data.ShowMask {
		statusText += " | mask hidden"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	if data.HasProbe {
		text := fmt.Sprintf("(%.2f, %.2f) dry", data.ProbeX, data.ProbeY)
		if data.ProbeWet {
			speed := math.Hypot(data.ProbeU, data.ProbeV)
			text = fmt.Sprintf("(%.2f, %.2f) u=%+.3f v=%+.3f |v|=%.3f",
				data.ProbeX, data.ProbeY, data.ProbeU, data.ProbeV, speed)
		}
		rl.DrawText(text, 10, 95, 14, h.renderer.Theme.SectionHeader)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsPanel renders the latest stats window and the perf phase split.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a stats panel at x, y.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *StatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel.
func (p *StatsPanel) Draw(stats telemetry.WindowStats, perf telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	lh := r.Theme.LineHeight
	height := lh*16 + pad*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := p.y + pad

	y = r.DrawSectionHeader(x, y, "Flow")
	if stats.WindowEndTick == 0 {
		y = r.DrawLabelValue(x, y, "window", "pending")
	} else {
		y = r.DrawLabelValue(x, y, "window", fmt.Sprintf("%d-%d", stats.WindowStartTick, stats.WindowEndTick))
	}
	y = r.DrawLabelValue(x, y, "speed", fmt.Sprintf("%.3f +/- %.3f", stats.SpeedMean, stats.SpeedStd))
	y = r.DrawLabelValue(x, y, "p10/50/90", fmt.Sprintf("%.3f %.3f %.3f", stats.SpeedP10, stats.SpeedP50, stats.SpeedP90))
	y = r.DrawLabelValue(x, y, "reset rate", fmt.Sprintf("%.4f", stats.ResetRate))
	y = r.DrawLabelValue(x, y, "age", fmt.Sprintf("%.1f (p90 %.0f)", stats.AgeMean, stats.AgeP90))
	y = r.DrawLabelValue(x, y, "trail", fmt.Sprintf("%.1f", stats.TrailMean))
	y += 4

	y = r.DrawSectionHeader(x, y, "Frame")
	y = r.DrawLabelValue(x, y, "tick", fmt.Sprintf("%s (max %s)",
		perf.AvgTickDuration.Round(time.Microsecond), perf.MaxTickDuration.Round(time.Microsecond)))
	y = r.DrawLabelValue(x, y, "fps", fmt.Sprintf("%.0f", perf.FPS))
	for _, phase := range []string{
		telemetry.PhaseAdvance,
		telemetry.PhaseMask,
		telemetry.PhaseTrails,
		telemetry.PhaseTelemetry,
	} {
		y = r.DrawPercentBar(x, y, phase, perf.PhasePct[phase], p.width-2*pad)
	}
}
