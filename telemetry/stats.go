package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated flow statistics for one window of ticks.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	Particles     int    `csv:"particles"`
	WetCells      int    `csv:"wet_cells"`
	Interpolation string `csv:"interpolation"`

	// Resets during the window
	Resets    int     `csv:"resets"`
	ResetRate float64 `csv:"reset_rate"` // resets per particle per tick

	// Speed distribution at window end, grid units per tick
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	AgeMean   float64 `csv:"age_mean"`
	AgeP90    float64 `csv:"age_p90"`
	TrailMean float64 `csv:"trail_mean"`
}

// Distribution is the summary of a sample of values.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes the mean, population std dev and empirical quantiles
// of values. values is not modified. An empty sample summarizes to zeros.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var d Distribution
	d.Mean, d.Std = stat.PopMeanStdDev(sorted, nil)
	d.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("particles", s.Particles),
		slog.Int("wet_cells", s.WetCells),
		slog.String("interpolation", s.Interpolation),
		slog.Int("resets", s.Resets),
		slog.Float64("reset_rate", s.ResetRate),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_p90", s.AgeP90),
		slog.Float64("trail_mean", s.TrailMean),
	)
}

// LogStats logs the window under the "stats" message.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
