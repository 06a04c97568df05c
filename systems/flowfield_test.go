package systems

import (
	"errors"
	"math"
	"testing"
)

func testFlowConfig(count int) FlowConfig {
	return FlowConfig{
		Particle:          DefaultParticleConfig(),
		Count:             count,
		Workers:           1,
		ParallelThreshold: 1 << 30,
		Seed:              42,
	}
}

// swirlField is a small basin with a dry border.
func swirlField(t *testing.T) *VectorField {
	t.Helper()
	rows, cols := 12, 16
	u := make([][]float64, rows)
	v := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		u[r] = make([]float64, cols)
		v[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			if r == 0 || c == 0 || r == rows-1 || c == cols-1 {
				u[r][c], v[r][c] = math.NaN(), math.NaN()
				continue
			}
			dx := float64(c) - float64(cols)/2
			dy := float64(r) - float64(rows)/2
			u[r][c] = -dy * 0.05
			v[r][c] = dx * 0.05
		}
	}
	return mustField(t, u, v)
}

func TestNewFlowFieldSystem(t *testing.T) {
	f := swirlField(t)
	s, err := NewFlowFieldSystem(f, testFlowConfig(200))
	if err != nil {
		t.Fatalf("NewFlowFieldSystem: %v", err)
	}
	defer s.Close()

	if s.Len() != 200 {
		t.Errorf("Len() = %d, want 200", s.Len())
	}
	if s.Field() != f {
		t.Error("Field() should return the construction field")
	}
	for i := range s.Particles {
		p := &s.Particles[i]
		if p.NeedsReset() && p.Age() <= s.Config().Particle.MaxAge {
			t.Fatalf("particle %d spawned on an invalid cell at %v", i, p.Position())
		}
		if p.Len() != 1 {
			t.Fatalf("particle %d starts with %d trail points, want 1", i, p.Len())
		}
	}
}

func TestNewFlowFieldSystemErrors(t *testing.T) {
	f := swirlField(t)

	if _, err := NewFlowFieldSystem(nil, testFlowConfig(10)); err == nil {
		t.Error("expected error for nil field")
	}
	if _, err := NewFlowFieldSystem(f, testFlowConfig(0)); err == nil {
		t.Error("expected error for zero count")
	}
	if _, err := NewFlowFieldSystem(&VectorField{}, testFlowConfig(10)); !errors.Is(err, ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for empty field, got %v", err)
	}

	cfg := testFlowConfig(10)
	cfg.Particle.MaxHistory = 0
	if _, err := NewFlowFieldSystem(f, cfg); err == nil {
		t.Error("expected error for invalid particle config")
	}
}

func snapshot(s *FlowFieldSystem) [][]Point {
	out := make([][]Point, len(s.Particles))
	for i := range s.Particles {
		out[i] = s.Particles[i].History(nil)
	}
	return out
}

func equalSnapshots(a, b [][]Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestFlowFieldSystemDeterministic(t *testing.T) {
	tests := []struct {
		name string
		cfg  FlowConfig
	}{
		{"serial", testFlowConfig(300)},
		{"parallel", func() FlowConfig {
			c := testFlowConfig(300)
			c.Workers = 4
			c.ParallelThreshold = 1
			return c
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := swirlField(t)
			a, err := NewFlowFieldSystem(f, tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer a.Close()
			b, err := NewFlowFieldSystem(f, tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer b.Close()

			for i := 0; i < 120; i++ {
				ra := a.Update()
				rb := b.Update()
				if ra != rb {
					t.Fatalf("tick %d: resets %d != %d", i, ra, rb)
				}
			}
			if !equalSnapshots(snapshot(a), snapshot(b)) {
				t.Error("populations with the same seed diverged")
			}
		})
	}
}

func TestFlowFieldSystemCountsResets(t *testing.T) {
	f := mustField(t, uniformGrid(4, 4, 0), uniformGrid(4, 4, 0))
	cfg := testFlowConfig(64)
	cfg.Particle.MaxAge = 0

	s, err := NewFlowFieldSystem(f, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Reset ages are 0, so the first tick moves and the second resets all
	if got := s.Update(); got != 0 {
		t.Errorf("first Update() resets = %d, want 0", got)
	}
	if got := s.Update(); got != 64 {
		t.Errorf("second Update() resets = %d, want 64", got)
	}
}

func TestFlowFieldSystemParallelCountsResets(t *testing.T) {
	f := mustField(t, uniformGrid(4, 4, 0), uniformGrid(4, 4, 0))
	cfg := testFlowConfig(100)
	cfg.Particle.MaxAge = 0
	cfg.Workers = 3
	cfg.ParallelThreshold = 1

	s, err := NewFlowFieldSystem(f, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Update()
	if got := s.Update(); got != 100 {
		t.Errorf("parallel Update() resets = %d, want 100", got)
	}
}

func TestFlowFieldSystemHistoryCap(t *testing.T) {
	s, err := NewFlowFieldSystem(swirlField(t), testFlowConfig(100))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	maxHistory := s.Config().Particle.MaxHistory
	for i := 0; i < 200; i++ {
		s.Update()
		for j := range s.Particles {
			if n := s.Particles[j].Len(); n < 1 || n > maxHistory {
				t.Fatalf("tick %d particle %d has %d trail points", i, j, n)
			}
		}
	}
}

func TestFlowFieldSystemDraw(t *testing.T) {
	s, err := NewFlowFieldSystem(swirlField(t), testFlowConfig(25))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Update()

	surf := &recordingSurface{}
	s.Draw(surf, Viewport{CellW: 1, CellH: 1})

	if surf.strokes != 25 || len(surf.moves) != 25 {
		t.Errorf("strokes=%d moves=%d, want 25 each", surf.strokes, len(surf.moves))
	}
}

func TestFlowFieldSystemSpeeds(t *testing.T) {
	f := mustField(t, uniformGrid(3, 3, 3), uniformGrid(3, 3, 4))
	cfg := testFlowConfig(10)
	cfg.Particle.SpeedScale = 0.5

	s, err := NewFlowFieldSystem(f, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	speeds := s.Speeds(nil)
	if len(speeds) != 10 {
		t.Fatalf("len(Speeds) = %d, want 10", len(speeds))
	}
	for i, sp := range speeds {
		if math.Abs(sp-2.5) > 1e-12 {
			t.Errorf("speed[%d] = %v, want 2.5", i, sp)
		}
	}
}
