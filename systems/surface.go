package systems

import "image/color"

// Surface is the minimal immediate-mode 2D drawing capability the flow
// engine draws through. Any canvas-like API satisfies it.
type Surface interface {
	SetStrokeColor(c color.RGBA)
	SetFillColor(c color.RGBA)
	MoveTo(x, y float32)
	LineTo(x, y float32)
	Stroke()
	FillRect(x, y, w, h float32)
}

// Viewport maps grid coordinates to surface coordinates.
// A grid point (gx, gy) lands at (OriginX + gx*CellW, OriginY + gy*CellH).
type Viewport struct {
	OriginX, OriginY float32
	CellW, CellH     float32
}

// Project converts a grid-space position to surface space.
func (v Viewport) Project(gx, gy float64) (sx, sy float32) {
	return v.OriginX + float32(gx)*v.CellW, v.OriginY + float32(gy)*v.CellH
}
