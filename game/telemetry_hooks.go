package game

import (
	"log/slog"

	"github.com/pthm-cable/lakeflow/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
// Caller holds mu.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.flow)
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.outputManager != nil {
			if _, err := g.saveSnapshot(&bm); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			}
		}
	}
}

// saveSnapshot captures the population and writes it under the output
// directory. Caller holds mu.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) (string, error) {
	snap := telemetry.CaptureSnapshot(g.flow, g.tick)
	snap.Bookmark = bookmark

	path, err := g.outputManager.WriteSnapshot(snap)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
	return path, nil
}
