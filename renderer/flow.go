// Package renderer draws the flow field onto Surfaces.
package renderer

import (
	"github.com/pthm-cable/lakeflow/systems"
)

// FlowRenderer draws the wet-cell mask and particle trails.
type FlowRenderer struct {
	Palette  *Palette
	ShowMask bool
}

// NewFlowRenderer creates a renderer using palette.
func NewFlowRenderer(palette *Palette, showMask bool) *FlowRenderer {
	return &FlowRenderer{Palette: palette, ShowMask: showMask}
}

// Draw renders the mask (when enabled) followed by every trail. The
// surface is not cleared.
func (r *FlowRenderer) Draw(s systems.Surface, flow *systems.FlowFieldSystem, view systems.Viewport) {
	if r.ShowMask {
		r.DrawMask(s, flow.Field(), view)
	}
	r.DrawTrails(s, flow, view)
}

// DrawMask fills every wet cell with the mask color.
func (r *FlowRenderer) DrawMask(s systems.Surface, field *systems.VectorField, view systems.Viewport) {
	s.SetFillColor(r.Palette.Mask)
	field.DrawWetCellMask(s, view)
}

// DrawTrails strokes every trail, tinted by particle age.
func (r *FlowRenderer) DrawTrails(s systems.Surface, flow *systems.FlowFieldSystem, view systems.Viewport) {
	maxAge := flow.Config().Particle.MaxAge
	for i := range flow.Particles {
		p := &flow.Particles[i]
		if p.Len() == 0 {
			continue
		}
		s.SetStrokeColor(r.Palette.TrailShade(p.Age(), maxAge))
		p.Draw(s, view)
	}
}
