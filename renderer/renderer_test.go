package renderer

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/lakeflow/systems"
)

func testPalette(t *testing.T) *Palette {
	t.Helper()
	p, err := NewPalette("#0b1d2a", "#12344a", "#9fd8f5", 0.8)
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}
	return p
}

func TestNewPalette(t *testing.T) {
	p := testPalette(t)
	want := color.RGBA{R: 0x0b, G: 0x1d, B: 0x2a, A: 255}
	if p.Background != want {
		t.Errorf("Background = %v, want %v", p.Background, want)
	}
	if p.Trail.A != 204 {
		t.Errorf("trail alpha = %d, want 204", p.Trail.A)
	}

	if _, err := NewPalette("#zzzzzz", "#000000", "#ffffff", 1); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestTrailShade(t *testing.T) {
	p := testPalette(t)

	young := p.TrailShade(0, 50)
	mid := p.TrailShade(25, 50)
	if young.A >= mid.A {
		t.Errorf("newborn alpha %d should be below mid-life alpha %d", young.A, mid.A)
	}
	// Out of range ages clamp to the ramp ends
	if p.TrailShade(500, 50) != p.TrailShade(50, 50) {
		t.Error("ages past max should clamp")
	}
	if p.TrailShade(-3, 50) != young {
		t.Error("negative ages should clamp")
	}
	if p.TrailShade(0, 0) != p.shades[fadeSteps-1] {
		t.Error("zero max age should use the final shade")
	}
}

func testFlow(t *testing.T, count int) *systems.FlowFieldSystem {
	t.Helper()
	u := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	v := [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	f, err := systems.NewVectorFieldFromFloats(u, v)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	flow, err := systems.NewFlowFieldSystem(f, systems.FlowConfig{
		Particle:          systems.DefaultParticleConfig(),
		Count:             count,
		Workers:           1,
		ParallelThreshold: 1 << 30,
		Seed:              3,
	})
	if err != nil {
		t.Fatalf("flow: %v", err)
	}
	t.Cleanup(flow.Close)
	return flow
}

func TestFlowRendererDraw(t *testing.T) {
	flow := testFlow(t, 20)
	flow.Update()

	view := systems.Viewport{CellW: 10, CellH: 10}
	tests := []struct {
		name      string
		mask      bool
		wantRects int
	}{
		{"with mask", true, 9},
		{"trails only", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			NewFlowRenderer(testPalette(t), tt.mask).Draw(rec, flow, view)

			if got := rec.Count(OpFillRect); got != tt.wantRects {
				t.Errorf("rects = %d, want %d", got, tt.wantRects)
			}
			if got := rec.Count(OpStroke); got != 20 {
				t.Errorf("strokes = %d, want 20", got)
			}
			if got := rec.Count(OpStrokeColor); got != 20 {
				t.Errorf("stroke colors = %d, want 20", got)
			}
			if got := rec.Count(OpMoveTo); got != 20 {
				t.Errorf("moves = %d, want 20", got)
			}
		})
	}
}

func TestRecorderReset(t *testing.T) {
	rec := &Recorder{}
	rec.MoveTo(1, 2)
	rec.LineTo(3, 4)
	rec.Stroke()
	if len(rec.Ops) != 3 {
		t.Fatalf("ops = %d, want 3", len(rec.Ops))
	}
	if op := rec.Ops[1]; op.Kind != OpLineTo || op.X != 3 || op.Y != 4 {
		t.Errorf("op = %+v", op)
	}
	rec.Reset()
	if len(rec.Ops) != 0 {
		t.Errorf("ops after reset = %d", len(rec.Ops))
	}
}

func TestImageSurface(t *testing.T) {
	s := NewImageSurface(16, 16, 2)
	s.Clear(color.RGBA{A: 255})

	s.SetFillColor(color.RGBA{R: 255, A: 255})
	s.FillRect(0, 0, 8, 8)

	s.SetStrokeColor(color.RGBA{G: 255, A: 255})
	s.MoveTo(0, 12)
	s.LineTo(16, 12)
	s.Stroke()

	img := s.Image()
	if r, g, b, _ := img.At(3, 3).RGBA(); r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("filled pixel = (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
	if _, g, _, _ := img.At(8, 12).RGBA(); g>>8 < 128 {
		t.Errorf("stroked pixel green = %d, want bright", g>>8)
	}
	if r, g, b, _ := img.At(12, 4).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("untouched pixel = (%d,%d,%d), want black", r>>8, g>>8, b>>8)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("png not written: %v", err)
	}
}

func TestImageSurfaceStrokeWithoutPath(t *testing.T) {
	s := NewImageSurface(4, 4, 1)
	s.Clear(color.RGBA{A: 255})
	s.Stroke()
	s.MoveTo(1, 1)
	s.Stroke()

	if r, g, b, _ := s.Image().At(1, 1).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("single point should draw nothing, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
