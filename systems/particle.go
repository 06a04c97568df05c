package systems

import (
	"errors"
	"fmt"
	"math"
)

// ParticleConfig holds the tunables shared by every particle of a population.
// It is copied into each particle at creation and never mutated afterwards.
type ParticleConfig struct {
	MaxAge         int     // ticks before a forced respawn
	MaxHistory     int     // trail length in points
	SpeedScale     float64 // velocity to grid units per tick
	ResetAgeMargin int     // reset age is drawn from [0, MaxAge-ResetAgeMargin)
}

// DefaultParticleConfig returns the stock tunables.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		MaxAge:         50,
		MaxHistory:     8,
		SpeedScale:     1,
		ResetAgeMargin: 10,
	}
}

// Validate checks the tunables are usable.
func (c ParticleConfig) Validate() error {
	var errs []error
	if c.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("max_age must be >= 0, got %d", c.MaxAge))
	}
	if c.MaxHistory < 1 {
		errs = append(errs, fmt.Errorf("max_history must be >= 1, got %d", c.MaxHistory))
	}
	if math.IsNaN(c.SpeedScale) || math.IsInf(c.SpeedScale, 0) {
		errs = append(errs, fmt.Errorf("speed_scale must be finite, got %v", c.SpeedScale))
	}
	if c.ResetAgeMargin < 0 {
		errs = append(errs, fmt.Errorf("reset_age_margin must be >= 0, got %d", c.ResetAgeMargin))
	}
	return errors.Join(errs...)
}

// Point is a continuous position in grid-cell units.
type Point struct {
	X, Y float64
}

// Particle is one drifting tracer with a bounded trail.
type Particle struct {
	field *VectorField
	cfg   ParticleConfig

	// Ring buffer of positions; head is the oldest entry
	trail []Point
	head  int
	n     int

	age int
}

// NewParticle creates a particle at a random wet position with a
// randomized age. It fails when cfg does not validate.
func NewParticle(field *VectorField, cfg ParticleConfig, rng Rand) (*Particle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid particle config: %w", err)
	}
	p := &Particle{}
	p.init(field, cfg, make([]Point, cfg.MaxHistory))
	p.Reset(rng)
	return p, nil
}

// NewParticleAt creates a particle at a fixed position and age.
// It fails when cfg does not validate.
func NewParticleAt(field *VectorField, cfg ParticleConfig, x, y float64, age int) (*Particle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid particle config: %w", err)
	}
	p := &Particle{}
	p.init(field, cfg, make([]Point, cfg.MaxHistory))
	p.push(Point{X: x, Y: y})
	p.age = age
	return p, nil
}

// init binds the particle to its field and trail storage in the zero state.
func (p *Particle) init(field *VectorField, cfg ParticleConfig, trail []Point) {
	p.field = field
	p.cfg = cfg
	p.trail = trail
	p.head = 0
	p.n = 0
	p.age = 0
}

// Age returns ticks since the last reset (offset by the randomized start age).
func (p *Particle) Age() int { return p.age }

// Len returns the number of stored trail points.
func (p *Particle) Len() int { return p.n }

// Position returns the newest trail point.
func (p *Particle) Position() Point {
	if p.n == 0 {
		return Point{}
	}
	return p.trail[(p.head+p.n-1)%len(p.trail)]
}

// History appends the trail to dst oldest-first and returns it.
func (p *Particle) History(dst []Point) []Point {
	for i := 0; i < p.n; i++ {
		dst = append(dst, p.trail[(p.head+i)%len(p.trail)])
	}
	return dst
}

// NeedsReset reports whether the particle aged out or its cell has no data.
func (p *Particle) NeedsReset() bool {
	if p.n == 0 || p.age > p.cfg.MaxAge {
		return true
	}
	pos := p.Position()
	return p.field.IsOutOfBounds(int(math.Floor(pos.X)), int(math.Floor(pos.Y)))
}

// Reset respawns the particle at a random wet position with a single-point
// trail and a staggered age.
func (p *Particle) Reset(rng Rand) {
	x, y := p.field.spawn(rng)
	p.head = 0
	p.n = 0
	p.push(Point{X: x, Y: y})

	p.age = 0
	if span := p.cfg.MaxAge - p.cfg.ResetAgeMargin; span > 0 {
		p.age = rng.Intn(span)
	}
}

// Move advances the particle one tick, or resets it if required.
// Returns true when the call reset the particle.
func (p *Particle) Move(rng Rand) bool {
	if p.NeedsReset() {
		p.Reset(rng)
		return true
	}

	pos := p.Position()
	u, v := p.field.VelocityAt(pos.X, pos.Y)
	p.push(Point{
		X: pos.X + u*p.cfg.SpeedScale,
		Y: pos.Y + v*p.cfg.SpeedScale,
	})
	p.age++
	return false
}

// push appends a point, dropping the oldest once the trail is full.
func (p *Particle) push(pt Point) {
	size := len(p.trail)
	if p.n < size {
		p.trail[(p.head+p.n)%size] = pt
		p.n++
		return
	}
	p.trail[p.head] = pt
	p.head = (p.head + 1) % size
}

// Draw strokes the trail oldest-first as one polyline. It never mutates
// the particle.
func (p *Particle) Draw(s Surface, view Viewport) {
	if p.n == 0 {
		return
	}
	size := len(p.trail)

	first := p.trail[p.head]
	s.MoveTo(view.Project(first.X, first.Y))
	for i := 1; i < p.n; i++ {
		pt := p.trail[(p.head+i)%size]
		s.LineTo(view.Project(pt.X, pt.Y))
	}
	s.Stroke()
}
