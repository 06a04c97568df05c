package renderer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// fadeSteps is the number of precomputed trail shades across a lifetime.
const fadeSteps = 32

// Palette holds the viewer colors and the trail fade ramp.
type Palette struct {
	Background color.RGBA
	Mask       color.RGBA
	Trail      color.RGBA

	shades [fadeSteps]color.RGBA
}

// NewPalette parses hex colors and builds the trail ramp. alpha scales the
// trail opacity in [0,1].
func NewPalette(background, mask, trail string, alpha float64) (*Palette, error) {
	bg, err := colorful.Hex(background)
	if err != nil {
		return nil, fmt.Errorf("render.background: %w", err)
	}
	mk, err := colorful.Hex(mask)
	if err != nil {
		return nil, fmt.Errorf("render.mask_color: %w", err)
	}
	tr, err := colorful.Hex(trail)
	if err != nil {
		return nil, fmt.Errorf("render.trail_color: %w", err)
	}
	alpha = math.Max(0, math.Min(1, alpha))

	p := &Palette{
		Background: rgba(bg, 1),
		Mask:       rgba(mk, 1),
		Trail:      rgba(tr, alpha),
	}

	for i := range p.shades {
		life := float64(i) / float64(fadeSteps-1)
		w := fade(life)
		// Young and dying trails sink toward the water color
		c := mk.BlendLab(tr, w).Clamped()
		p.shades[i] = rgba(c, alpha*(0.25+0.75*w))
	}
	return p, nil
}

// TrailShade returns the stroke color for a particle at age/maxAge.
func (p *Palette) TrailShade(age, maxAge int) color.RGBA {
	if maxAge <= 0 {
		return p.shades[fadeSteps-1]
	}
	life := float64(age) / float64(maxAge)
	i := int(math.Round(life * float64(fadeSteps-1)))
	i = max(0, min(fadeSteps-1, i))
	return p.shades[i]
}

// fade is 0 at birth, quadratic in over the first fifth of life, then
// eases out toward the end.
func fade(life float64) float64 {
	in := math.Min(life*5, 1)
	in *= in
	out := math.Min((1-life)*3+0.7, 1)
	return in * out
}

func rgba(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}
