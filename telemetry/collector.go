// Package telemetry aggregates flow statistics and frame timing and writes
// them to CSV.
package telemetry

import "github.com/pthm-cable/lakeflow/systems"

// Collector accumulates per-tick counts within a window and produces
// WindowStats.
type Collector struct {
	windowTicks int

	windowStartTick int
	resets          int

	// Scratch reused across flushes
	speeds []float64
	ages   []float64
	trails []float64
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	return &Collector{windowTicks: max(windowTicks, 1)}
}

// RecordResets adds resets performed in one tick.
func (c *Collector) RecordResets(n int) {
	c.resets += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(tick int) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int { return c.windowTicks }

// Flush samples the population, produces the window's stats and starts the
// next window at tick.
func (c *Collector) Flush(tick int, flow *systems.FlowFieldSystem) WindowStats {
	field := flow.Field()
	n := flow.Len()

	c.speeds = flow.Speeds(c.speeds[:0])
	c.ages = c.ages[:0]
	c.trails = c.trails[:0]
	for i := range flow.Particles {
		p := &flow.Particles[i]
		c.ages = append(c.ages, float64(p.Age()))
		c.trails = append(c.trails, float64(p.Len()))
	}

	speed := Summarize(c.speeds)
	age := Summarize(c.ages)
	trail := Summarize(c.trails)

	ticks := tick - c.windowStartTick
	var rate float64
	if ticks > 0 && n > 0 {
		rate = float64(c.resets) / float64(n*ticks)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		Particles:       n,
		WetCells:        field.WetCount(),
		Interpolation:   field.Interpolation().String(),
		Resets:          c.resets,
		ResetRate:       rate,
		SpeedMean:       speed.Mean,
		SpeedStd:        speed.Std,
		SpeedP10:        speed.P10,
		SpeedP50:        speed.P50,
		SpeedP90:        speed.P90,
		AgeMean:         age.Mean,
		AgeP90:          age.P90,
		TrailMean:       trail.Mean,
	}

	c.windowStartTick = tick
	c.resets = 0
	return stats
}
