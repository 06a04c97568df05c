package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/lakeflow/systems"
)

// uniformFlow returns a population on a fully wet rows x cols field where
// every cell flows (0.5, 0).
func uniformFlow(t *testing.T, rows, cols, count int) *systems.FlowFieldSystem {
	t.Helper()
	u := make([][]float64, rows)
	v := make([][]float64, rows)
	for r := range u {
		u[r] = make([]float64, cols)
		v[r] = make([]float64, cols)
		for c := range u[r] {
			u[r][c] = 0.5
		}
	}
	field, err := systems.NewVectorFieldFromFloats(u, v)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	flow, err := systems.NewFlowFieldSystem(field, systems.FlowConfig{
		Particle:          systems.DefaultParticleConfig(),
		Count:             count,
		Workers:           1,
		ParallelThreshold: 1 << 30,
		Seed:              11,
	})
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	t.Cleanup(flow.Close)
	return flow
}

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(3)
	if c.ShouldFlush(2) {
		t.Error("window should not be complete at tick 2")
	}
	if !c.ShouldFlush(3) {
		t.Error("window should be complete at tick 3")
	}
	if NewCollector(0).WindowTicks() != 1 {
		t.Error("window clamps to at least one tick")
	}
}

func TestCollectorFlush(t *testing.T) {
	flow := uniformFlow(t, 4, 4, 10)
	c := NewCollector(3)

	c.RecordResets(4)
	c.RecordResets(2)
	stats := c.Flush(3, flow)

	if stats.Resets != 6 {
		t.Errorf("resets = %d, want 6", stats.Resets)
	}
	if math.Abs(stats.ResetRate-0.2) > 1e-12 {
		t.Errorf("reset rate = %v, want 0.2", stats.ResetRate)
	}
	if stats.Particles != 10 || stats.WetCells != 16 {
		t.Errorf("particles/wet = %d/%d, want 10/16", stats.Particles, stats.WetCells)
	}
	if stats.Interpolation != "bilinear" {
		t.Errorf("interpolation = %q", stats.Interpolation)
	}
	if math.Abs(stats.SpeedMean-0.5) > 1e-12 || stats.SpeedStd > 1e-12 {
		t.Errorf("speed mean/std = %v/%v, want 0.5/0", stats.SpeedMean, stats.SpeedStd)
	}
	if stats.TrailMean != 1 {
		t.Errorf("trail mean = %v, want 1 for fresh particles", stats.TrailMean)
	}

	next := c.Flush(6, flow)
	if next.Resets != 0 || next.WindowStartTick != 3 || next.WindowEndTick != 6 {
		t.Errorf("next window = %+v", next)
	}
}
