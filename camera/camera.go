// Package camera maps the lake grid onto the screen.
package camera

import (
	"github.com/pthm-cable/lakeflow/systems"
)

// Fit returns the aspect-preserving viewport that letterboxes a
// cols x rows grid inside a screenW x screenH area, leaving margin pixels
// on every side. Cells are square.
func Fit(screenW, screenH float32, cols, rows int, margin float32) systems.Viewport {
	scale := fitScale(screenW, screenH, cols, rows, margin)
	return systems.Viewport{
		OriginX: (screenW - float32(cols)*scale) / 2,
		OriginY: (screenH - float32(rows)*scale) / 2,
		CellW:   scale,
		CellH:   scale,
	}
}

func fitScale(screenW, screenH float32, cols, rows int, margin float32) float32 {
	if cols < 1 || rows < 1 {
		return 1
	}
	availW := max(screenW-2*margin, 1)
	availH := max(screenH-2*margin, 1)
	return min(availW/float32(cols), availH/float32(rows))
}

// Camera controls the view into the grid. Supports pan and zoom; the view
// centre stays on the grid.
type Camera struct {
	// Position is the view centre in grid coordinates
	X, Y float32

	// Zoom level relative to the fitted scale (1.0 = whole lake visible)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid dimensions in cells
	Cols, Rows int
	Margin     float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	fit float32 // pixels per cell at Zoom 1
}

// New creates a camera showing the whole grid.
func New(viewportW, viewportH float32, cols, rows int, margin float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Cols:      cols,
		Rows:      rows,
		Margin:    margin,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
	c.fit = fitScale(viewportW, viewportH, cols, rows, margin)
	c.Reset()
	return c
}

// Scale returns the current pixels per grid cell.
func (c *Camera) Scale() float32 { return c.fit * c.Zoom }

// Viewport returns the grid-to-screen mapping for drawing.
func (c *Camera) Viewport() systems.Viewport {
	s := c.Scale()
	return systems.Viewport{
		OriginX: c.ViewportW/2 - c.X*s,
		OriginY: c.ViewportH/2 - c.Y*s,
		CellW:   s,
		CellH:   s,
	}
}

// GridToScreen converts grid coordinates to screen coordinates.
func (c *Camera) GridToScreen(gx, gy float64) (sx, sy float32) {
	return c.Viewport().Project(gx, gy)
}

// ScreenToGrid converts screen coordinates to grid coordinates. The result
// may lie outside the grid.
func (c *Camera) ScreenToGrid(sx, sy float32) (gx, gy float64) {
	s := c.Scale()
	gx = float64(c.X + (sx-c.ViewportW/2)/s)
	gy = float64(c.Y + (sy-c.ViewportH/2)/s)
	return gx, gy
}

// IsVisible reports whether a grid point with the given grid-space radius
// could be on screen (conservative check for culling).
func (c *Camera) IsVisible(gx, gy, radius float32) bool {
	s := c.Scale()
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return absf(gx-c.X) <= halfW && absf(gy-c.Y) <= halfH
}

// Resize updates viewport dimensions and refits the grid.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.fit = fitScale(viewportW, viewportH, c.Cols, c.Rows, c.Margin)
}

// Pan moves the view by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X = clamp(c.X+dx/s, 0, float32(c.Cols))
	c.Y = clamp(c.Y+dy/s, 0, float32(c.Rows))
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centres the whole grid at zoom 1.
func (c *Camera) Reset() {
	c.X = float32(c.Cols) / 2
	c.Y = float32(c.Rows) / 2
	c.Zoom = 1.0
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
