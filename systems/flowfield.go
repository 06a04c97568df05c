package systems

import (
	"fmt"
	"math"
	"math/rand"
)

// FlowConfig configures a particle population.
type FlowConfig struct {
	Particle ParticleConfig
	Count    int

	// Workers is the parallel advance width (0 = GOMAXPROCS).
	Workers int
	// ParallelThreshold is the minimum population advanced in parallel.
	// Below this, single-threaded is faster due to goroutine overhead.
	ParallelThreshold int

	Seed int64
}

// FlowFieldSystem owns a population of particles sharing one field.
// Advance and draw must be called in series for a given frame.
type FlowFieldSystem struct {
	Particles []Particle

	field *VectorField
	cfg   FlowConfig

	// One RNG stream per chunk keeps runs reproducible for a seed
	streams []*rand.Rand
	resets  []int
	pool    *workerPool
}

// NewFlowFieldSystem creates cfg.Count randomized particles on field.
func NewFlowFieldSystem(field *VectorField, cfg FlowConfig) (*FlowFieldSystem, error) {
	if field == nil {
		return nil, fmt.Errorf("flow field system: nil field")
	}
	if field.WetCount() == 0 {
		return nil, fmt.Errorf("flow field system: %w", ErrEmptyField)
	}
	if cfg.Count < 1 {
		return nil, fmt.Errorf("flow field system: count must be >= 1, got %d", cfg.Count)
	}
	if err := cfg.Particle.Validate(); err != nil {
		return nil, fmt.Errorf("flow field system: %w", err)
	}

	s := &FlowFieldSystem{
		Particles: make([]Particle, cfg.Count),
		field:     field,
		cfg:       cfg,
	}

	s.pool = newWorkerPool(cfg.Workers, s.advanceChunk)
	s.streams = make([]*rand.Rand, s.pool.numWorkers)
	s.resets = make([]int, s.pool.numWorkers)
	for i := range s.streams {
		s.streams[i] = rand.New(rand.NewSource(cfg.Seed + int64(i+1)*7919))
	}

	// All trails share one backing array
	trails := make([]Point, cfg.Count*cfg.Particle.MaxHistory)
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := range s.Particles {
		p := &s.Particles[i]
		h := cfg.Particle.MaxHistory
		p.init(field, cfg.Particle, trails[i*h:(i+1)*h:(i+1)*h])
		p.Reset(rng)
	}

	return s, nil
}

// Field returns the field the population is bound to.
func (s *FlowFieldSystem) Field() *VectorField { return s.field }

// Config returns the population configuration.
func (s *FlowFieldSystem) Config() FlowConfig { return s.cfg }

// Len returns the population size.
func (s *FlowFieldSystem) Len() int { return len(s.Particles) }

// Update advances every particle one tick and returns how many reset.
func (s *FlowFieldSystem) Update() int {
	n := len(s.Particles)
	if n < s.cfg.ParallelThreshold || s.pool.numWorkers == 1 {
		s.advanceChunk(workChunk{start: 0, end: n, stream: 0})
		return s.takeResets()
	}

	s.pool.dispatch(n)
	return s.takeResets()
}

// advanceChunk moves one particle range using the chunk's RNG stream.
func (s *FlowFieldSystem) advanceChunk(c workChunk) {
	rng := s.streams[c.stream]
	resets := 0
	for i := c.start; i < c.end; i++ {
		if s.Particles[i].Move(rng) {
			resets++
		}
	}
	s.resets[c.stream] = resets
}

func (s *FlowFieldSystem) takeResets() int {
	total := 0
	for i, r := range s.resets {
		total += r
		s.resets[i] = 0
	}
	return total
}

// Draw strokes every particle's trail.
func (s *FlowFieldSystem) Draw(surface Surface, view Viewport) {
	for i := range s.Particles {
		s.Particles[i].Draw(surface, view)
	}
}

// Speeds appends each particle's current speed in grid units per tick.
func (s *FlowFieldSystem) Speeds(dst []float64) []float64 {
	for i := range s.Particles {
		pos := s.Particles[i].Position()
		u, v := s.field.VelocityAt(pos.X, pos.Y)
		dst = append(dst, math.Hypot(u, v)*math.Abs(s.cfg.Particle.SpeedScale))
	}
	return dst
}

// Close stops the worker pool. The population must not be advanced after.
func (s *FlowFieldSystem) Close() {
	s.pool.stop()
}
