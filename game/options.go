package game

import "github.com/pthm-cable/lakeflow/telemetry"

// Options holds configuration for game initialization.
type Options struct {
	Seed     int64
	GridPath string // .csv or .nc; empty generates a synthetic lake
	Headless bool

	LogStats      bool
	OutputDir     string // telemetry CSVs, config.yaml and snapshots
	SnapshotDir   string // PNG frames in headless mode
	SnapshotEvery int    // ticks between PNG frames (0 = use config)

	StepsPerUpdate int // simulation ticks per Update call

	// StatsCallback is called with each flushed window.
	StatsCallback func(telemetry.WindowStats)
}
