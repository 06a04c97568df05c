package systems

import (
	"image/color"
	"testing"
)

// recordingSurface captures drawing calls for assertions.
type recordingSurface struct {
	moves   [][2]float32
	lines   [][2]float32
	strokes int
	rects   [][4]float32
	fill    color.RGBA
	stroke  color.RGBA
}

func (r *recordingSurface) SetStrokeColor(c color.RGBA) { r.stroke = c }
func (r *recordingSurface) SetFillColor(c color.RGBA)   { r.fill = c }
func (r *recordingSurface) MoveTo(x, y float32)         { r.moves = append(r.moves, [2]float32{x, y}) }
func (r *recordingSurface) LineTo(x, y float32)         { r.lines = append(r.lines, [2]float32{x, y}) }
func (r *recordingSurface) Stroke()                     { r.strokes++ }
func (r *recordingSurface) FillRect(x, y, w, h float32) {
	r.rects = append(r.rects, [4]float32{x, y, w, h})
}

func TestViewportProject(t *testing.T) {
	view := Viewport{OriginX: 10, OriginY: 20, CellW: 4, CellH: 2}

	tests := []struct {
		gx, gy float64
		sx, sy float32
	}{
		{0, 0, 10, 20},
		{1, 1, 14, 22},
		{2.5, 0.5, 20, 21},
	}

	for _, tt := range tests {
		sx, sy := view.Project(tt.gx, tt.gy)
		if sx != tt.sx || sy != tt.sy {
			t.Errorf("Project(%v, %v) = (%v, %v), want (%v, %v)", tt.gx, tt.gy, sx, sy, tt.sx, tt.sy)
		}
	}
}
