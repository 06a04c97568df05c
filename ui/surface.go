package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibSurface draws to the current raylib render target. Paths are
// buffered as segments and flushed with DrawLineEx on Stroke. Must be used
// between rl.BeginDrawing and rl.EndDrawing.
type RaylibSurface struct {
	LineWidth float32
	Additive  bool // blend trails additively

	stroke rl.Color
	fill   rl.Color

	cursor   rl.Vector2
	hasPoint bool
	segments []rl.Vector2 // pairs of endpoints
}

// NewRaylibSurface creates a surface with the given stroke width.
func NewRaylibSurface(lineWidth float32) *RaylibSurface {
	return &RaylibSurface{
		LineWidth: lineWidth,
		stroke:    rl.White,
		fill:      rl.White,
		segments:  make([]rl.Vector2, 0, 64),
	}
}

func toRaylib(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Clear fills the whole target with c.
func (s *RaylibSurface) Clear(c color.RGBA) {
	rl.ClearBackground(toRaylib(c))
}

func (s *RaylibSurface) SetStrokeColor(c color.RGBA) { s.stroke = toRaylib(c) }
func (s *RaylibSurface) SetFillColor(c color.RGBA)   { s.fill = toRaylib(c) }

func (s *RaylibSurface) MoveTo(x, y float32) {
	s.cursor = rl.Vector2{X: x, Y: y}
	s.hasPoint = true
}

func (s *RaylibSurface) LineTo(x, y float32) {
	next := rl.Vector2{X: x, Y: y}
	if s.hasPoint {
		s.segments = append(s.segments, s.cursor, next)
	}
	s.cursor = next
	s.hasPoint = true
}

// Stroke draws the buffered path and starts a new one.
func (s *RaylibSurface) Stroke() {
	if len(s.segments) > 0 {
		if s.Additive {
			rl.BeginBlendMode(rl.BlendAdditive)
		}
		for i := 0; i+1 < len(s.segments); i += 2 {
			rl.DrawLineEx(s.segments[i], s.segments[i+1], s.LineWidth, s.stroke)
		}
		if s.Additive {
			rl.EndBlendMode()
		}
	}
	s.segments = s.segments[:0]
	s.hasPoint = false
}

func (s *RaylibSurface) FillRect(x, y, w, h float32) {
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, s.fill)
}
