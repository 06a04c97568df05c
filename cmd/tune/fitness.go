package main

import (
	"sync"

	"github.com/pthm-cable/lakeflow/config"
	"github.com/pthm-cable/lakeflow/game"
	"github.com/pthm-cable/lakeflow/telemetry"
)

// failedFitness scores parameter sets the flow rejects.
const failedFitness = 1e9

// Targets are the flow statistics the tuner steers toward.
type Targets struct {
	ResetRate float64 // resets per particle per tick
	TrailMean float64 // mean trail length in points
	SpeedP50  float64 // median step, grid units per tick
}

// FitnessEvaluator runs headless flows and scores their statistics.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	baseConfig *config.Config
	gridPath   string
	targets    Targets

	mu       sync.Mutex
	lastMean telemetry.WindowStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config, gridPath string, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
		gridPath:   gridPath,
		targets:    targets,
	}
}

// LastMean returns the averaged window stats from the most recent evaluation.
func (fe *FitnessEvaluator) LastMean() telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMean
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel; the config is only read
	results := make([]telemetry.WindowStats, len(fe.seeds))
	failed := make([]bool, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			stats, ok := fe.run(cfg, s)
			results[idx] = stats
			failed[idx] = !ok
		}(i, seed)
	}
	wg.Wait()

	var windows []telemetry.WindowStats
	for i, r := range results {
		if failed[i] {
			return failedFitness
		}
		windows = append(windows, r)
	}
	mean := meanStats(windows)

	fe.mu.Lock()
	fe.lastMean = mean
	fe.mu.Unlock()

	return score(mean, fe.targets)
}

// run advances one seed and returns the mean of its windows after the first.
func (fe *FitnessEvaluator) run(cfg *config.Config, seed int64) (telemetry.WindowStats, bool) {
	var windows []telemetry.WindowStats
	g, err := game.New(cfg, game.Options{
		Seed:          seed,
		GridPath:      fe.gridPath,
		Headless:      true,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		return telemetry.WindowStats{}, false
	}
	defer g.Close()

	for g.Tick() < fe.ticks {
		g.Step()
	}

	// The first window still carries the initial random ages
	if len(windows) > 1 {
		windows = windows[1:]
	}
	if len(windows) == 0 {
		return telemetry.WindowStats{}, false
	}
	return meanStats(windows), true
}

// copyConfig returns a shallow copy of the base config; all tuned fields
// are values.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// meanStats averages the fields the score uses.
func meanStats(windows []telemetry.WindowStats) telemetry.WindowStats {
	var m telemetry.WindowStats
	if len(windows) == 0 {
		return m
	}
	for _, w := range windows {
		m.ResetRate += w.ResetRate
		m.TrailMean += w.TrailMean
		m.SpeedP50 += w.SpeedP50
		m.AgeMean += w.AgeMean
	}
	n := float64(len(windows))
	m.ResetRate /= n
	m.TrailMean /= n
	m.SpeedP50 /= n
	m.AgeMean /= n
	return m
}

// score sums squared relative errors against each non-zero target.
func score(m telemetry.WindowStats, t Targets) float64 {
	var s float64
	add := func(got, want float64) {
		if want <= 0 {
			return
		}
		e := (got - want) / want
		s += e * e
	}
	add(m.ResetRate, t.ResetRate)
	add(m.TrailMean, t.TrailMean)
	add(m.SpeedP50, t.SpeedP50)
	return s
}
