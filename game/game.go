// Package game drives the flow viewer: it owns the field, the particle
// population, rendering and telemetry, and advances them one tick at a time.
package game

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pthm-cable/lakeflow/camera"
	"github.com/pthm-cable/lakeflow/config"
	"github.com/pthm-cable/lakeflow/gridio"
	"github.com/pthm-cable/lakeflow/renderer"
	"github.com/pthm-cable/lakeflow/systems"
	"github.com/pthm-cable/lakeflow/telemetry"
)

// Game holds the viewer state.
type Game struct {
	cfg *config.Config

	// mu serializes advance, draw and field swaps.
	mu sync.Mutex

	grid *gridio.Grid
	flow *systems.FlowFieldSystem
	seed int64
	tick int

	paused         bool
	stepsPerUpdate int

	palette      *renderer.Palette
	flowRenderer *renderer.FlowRenderer

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	lastStats     telemetry.WindowStats
	lastResets    int

	// Headless PNG frames
	snapshotDir   string
	snapshotEvery int
	lastFrameTick int
	frame         *renderer.ImageSurface
}

// New loads the field, seeds the population and opens run output.
func New(cfg *config.Config, opts Options) (*Game, error) {
	grid, err := loadGrid(cfg, opts.GridPath)
	if err != nil {
		return nil, err
	}
	field, err := buildField(grid, cfg.Derived.Interpolation)
	if err != nil {
		return nil, err
	}
	flow, err := systems.NewFlowFieldSystem(field, cfg.FlowConfig(opts.Seed))
	if err != nil {
		return nil, err
	}

	palette, err := renderer.NewPalette(cfg.Render.Background, cfg.Render.MaskColor, cfg.Render.TrailColor, cfg.Render.TrailAlpha)
	if err != nil {
		flow.Close()
		return nil, err
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	every := opts.SnapshotEvery
	if every <= 0 {
		every = cfg.Telemetry.SnapshotEvery
	}

	g := &Game{
		cfg:            cfg,
		grid:           grid,
		flow:           flow,
		seed:           opts.Seed,
		stepsPerUpdate: steps,
		palette:        palette,
		flowRenderer:   renderer.NewFlowRenderer(palette, cfg.Render.DrawMask),
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:      telemetry.NewBookmarkDetector(10),
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		snapshotDir:    opts.SnapshotDir,
		snapshotEvery:  every,
	}

	if g.snapshotDir != "" {
		if err := os.MkdirAll(g.snapshotDir, 0755); err != nil {
			flow.Close()
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		flow.Close()
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	slog.Info("game initialized",
		"particles", flow.Len(),
		"rows", field.Rows(),
		"cols", field.Cols(),
		"wet", field.WetCount(),
		"interpolation", field.Interpolation().String(),
		"workers", cfg.Derived.Workers,
		"seed", opts.Seed,
	)
	return g, nil
}

// Config returns the configuration the game was created with.
func (g *Game) Config() *config.Config { return g.cfg }

// Palette returns the trail and mask colors.
func (g *Game) Palette() *renderer.Palette { return g.palette }

// Renderer returns the flow renderer.
func (g *Game) Renderer() *renderer.FlowRenderer { return g.flowRenderer }

// Perf returns the frame timing collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.perfCollector }

// Tick returns the number of ticks advanced so far.
func (g *Game) Tick() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tick
}

// Seed returns the seed of the current population.
func (g *Game) Seed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seed
}

// Field returns the current vector field.
func (g *Game) Field() *systems.VectorField {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flow.Field()
}

// Len returns the population size.
func (g *Game) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flow.Len()
}

// LastResets returns the number of resets in the most recent tick.
func (g *Game) LastResets() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastResets
}

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastStats
}

// Paused reports whether Update skips advancing.
func (g *Game) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// TogglePause flips the paused state and returns the new value.
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = !g.paused
	return g.paused
}

// StepsPerUpdate returns the number of ticks advanced per Update.
func (g *Game) StepsPerUpdate() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the simulation speed, clamped to [1, 64].
func (g *Game) SetStepsPerUpdate(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stepsPerUpdate = max(1, min(n, 64))
}

// Step advances the population by one tick and returns the number of
// particles that reset.
func (g *Game) Step() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.perfCollector.StartTick()
	resets := g.advance()
	g.perfCollector.EndTick()
	return resets
}

// Update advances stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perfCollector.StartTick()
		g.advance()
		g.perfCollector.EndTick()
	}
}

// advance runs one tick and its telemetry. Caller holds mu and an open
// perf tick.
func (g *Game) advance() int {
	g.perfCollector.StartPhase(telemetry.PhaseAdvance)
	resets := g.flow.Update()
	g.tick++
	g.lastResets = resets
	g.collector.RecordResets(resets)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	return resets
}

// Draw renders the mask and trails for the current state. The surface is
// not cleared.
func (g *Game) Draw(s systems.Surface, view systems.Viewport) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flowRenderer.Draw(s, g.flow, view)
}

// draw renders with phase timing. Caller holds mu and an open perf tick.
func (g *Game) draw(s systems.Surface, view systems.Viewport) {
	if g.flowRenderer.ShowMask {
		g.perfCollector.StartPhase(telemetry.PhaseMask)
		g.flowRenderer.DrawMask(s, g.flow.Field(), view)
	}
	g.perfCollector.StartPhase(telemetry.PhaseTrails)
	g.flowRenderer.DrawTrails(s, g.flow, view)
}

// Frame advances stepsPerUpdate ticks (none while paused) and draws the
// result, all under one lock so a field swap cannot land mid-frame.
func (g *Game) Frame(s systems.Surface, view systems.Viewport) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.perfCollector.StartTick()
	if !g.paused {
		for i := 0; i < g.stepsPerUpdate; i++ {
			g.advance()
		}
	}
	g.draw(s, view)
	g.perfCollector.EndTick()
	g.perfCollector.RecordFrame()
}

// ToggleMask flips wet-cell mask drawing.
func (g *Game) ToggleMask() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flowRenderer.ShowMask = !g.flowRenderer.ShowMask
	return g.flowRenderer.ShowMask
}

// Probe samples the current field at a grid position.
func (g *Game) Probe(x, y float64) (u, v float64, wet bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.flow.Field()
	u, v = f.VelocityAt(x, y)
	wet = x >= 0 && y >= 0 && !f.IsOutOfBounds(int(x), int(y))
	return u, v, wet
}

// SwapField replaces the field and reseeds the population on it. The new
// population is built outside the lock; the old one is closed after the
// swap.
func (g *Game) SwapField(field *systems.VectorField) error {
	g.mu.Lock()
	cfg := g.cfg.FlowConfig(g.seed)
	g.mu.Unlock()

	flow, err := systems.NewFlowFieldSystem(field, cfg)
	if err != nil {
		return fmt.Errorf("swapping field: %w", err)
	}

	g.mu.Lock()
	old := g.flow
	g.flow = flow
	g.mu.Unlock()
	old.Close()

	slog.Info("field swapped",
		"rows", field.Rows(),
		"cols", field.Cols(),
		"wet", field.WetCount(),
		"interpolation", field.Interpolation().String(),
	)
	return nil
}

// SetInterpolation rebuilds the field from the loaded grid in mode.
func (g *Game) SetInterpolation(mode systems.Interpolation) error {
	field, err := buildField(g.grid, mode)
	if err != nil {
		return err
	}
	return g.SwapField(field)
}

// ToggleInterpolation switches between bilinear and bicubic.
func (g *Game) ToggleInterpolation() error {
	mode := systems.Bicubic
	if g.Field().Interpolation() == systems.Bicubic {
		mode = systems.Bilinear
	}
	return g.SetInterpolation(mode)
}

// Reseed restarts the population on the current field with seed.
func (g *Game) Reseed(seed int64) error {
	g.mu.Lock()
	g.seed = seed
	field := g.flow.Field()
	g.mu.Unlock()
	return g.SwapField(field)
}

// SaveSnapshot writes the population to the output directory.
func (g *Game) SaveSnapshot() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outputManager == nil {
		return "", fmt.Errorf("snapshot: output directory not set")
	}
	return g.saveSnapshot(nil)
}

// UpdateHeadless advances one Update and writes a PNG frame when due.
func (g *Game) UpdateHeadless() error {
	g.Update()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshotDir == "" || g.snapshotEvery <= 0 {
		return nil
	}
	if g.tick-g.lastFrameTick < g.snapshotEvery {
		return nil
	}
	g.lastFrameTick = g.tick
	path := filepath.Join(g.snapshotDir, fmt.Sprintf("frame_%06d.png", g.tick))
	return g.renderPNG(path)
}

// RenderPNG draws the current state at screen size and saves it to path.
func (g *Game) RenderPNG(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.renderPNG(path)
}

func (g *Game) renderPNG(path string) error {
	w, h := g.cfg.Screen.Width, g.cfg.Screen.Height
	if g.frame == nil {
		g.frame = renderer.NewImageSurface(w, h, g.cfg.Render.LineWidth)
	}
	g.frame.Clear(g.palette.Background)

	field := g.flow.Field()
	view := camera.Fit(float32(w), float32(h), field.Cols(), field.Rows(), float32(g.cfg.Screen.Margin))
	g.flowRenderer.Draw(g.frame, g.flow, view)

	if err := g.frame.SavePNG(path); err != nil {
		return err
	}
	slog.Debug("frame saved", "path", path, "tick", g.tick)
	return nil
}

// Close stops the worker pool and flushes run output.
func (g *Game) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flow.Close()
	slog.Info("game closed", "tick", g.tick, "output", g.outputManager.Dir())
	return g.outputManager.Close()
}
