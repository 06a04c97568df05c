package renderer

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

// ImageSurface draws into an in-memory RGBA image for headless snapshots.
type ImageSurface struct {
	dc     *gg.Context
	stroke color.NRGBA
	fill   color.NRGBA
	open   bool // path has at least one segment
}

// NewImageSurface creates a w x h surface.
func NewImageSurface(w, h int, lineWidth float64) *ImageSurface {
	dc := gg.NewContext(w, h)
	dc.SetLineWidth(lineWidth)
	dc.SetLineCap(gg.LineCapRound)
	return &ImageSurface{
		dc:     dc,
		stroke: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		fill:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Colors passed to a Surface are straight alpha.
func straight(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Clear fills the whole image with c.
func (s *ImageSurface) Clear(c color.RGBA) {
	s.dc.SetColor(straight(c))
	s.dc.Clear()
}

func (s *ImageSurface) SetStrokeColor(c color.RGBA) { s.stroke = straight(c) }
func (s *ImageSurface) SetFillColor(c color.RGBA)   { s.fill = straight(c) }

func (s *ImageSurface) MoveTo(x, y float32) {
	s.dc.MoveTo(float64(x), float64(y))
}

func (s *ImageSurface) LineTo(x, y float32) {
	s.dc.LineTo(float64(x), float64(y))
	s.open = true
}

// Stroke draws and clears the current path.
func (s *ImageSurface) Stroke() {
	if !s.open {
		s.dc.ClearPath()
		return
	}
	s.dc.SetColor(s.stroke)
	s.dc.Stroke()
	s.open = false
}

func (s *ImageSurface) FillRect(x, y, w, h float32) {
	// A rectangle must not join a dangling polyline
	s.dc.ClearPath()
	s.open = false
	s.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	s.dc.SetColor(s.fill)
	s.dc.Fill()
}

// Image returns the backing image.
func (s *ImageSurface) Image() image.Image { return s.dc.Image() }

// SavePNG writes the image to path.
func (s *ImageSurface) SavePNG(path string) error {
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving frame %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes the image as PNG to w.
func (s *ImageSurface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}
