package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkResetSurge  BookmarkType = "reset_surge"
	BookmarkStagnation  BookmarkType = "stagnation"
	BookmarkSteadyState BookmarkType = "steady_state"
)

// steadyWindows is how many consecutive calm windows make a steady state.
const steadyWindows = 5

// Bookmark marks a window worth looking at.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector flags unusual windows against a rolling history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	steadyCount int // consecutive windows with low variation
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	historySize = max(historySize, steadyWindows)
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkResetSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStagnation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if b := bd.checkSteadyState(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) mean(field func(WindowStats) float64) (float64, int) {
	history := bd.recent(bd.historySize)
	if len(history) == 0 {
		return 0, 0
	}
	vals := make([]float64, len(history))
	for i, h := range history {
		vals[i] = field(h)
	}
	return stat.Mean(vals, nil), len(vals)
}

// checkResetSurge fires when the reset rate more than doubles its rolling
// average, typically particles leaking through an open boundary.
func (bd *BookmarkDetector) checkResetSurge(stats WindowStats) *Bookmark {
	avg, n := bd.mean(func(w WindowStats) float64 { return w.ResetRate })
	if n < 3 || avg == 0 {
		return nil
	}
	if stats.ResetRate > avg*2 && stats.Resets >= 10 {
		return &Bookmark{
			Type:        BookmarkResetSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Reset rate %.4f is %.1fx average (%.4f)", stats.ResetRate, stats.ResetRate/avg, avg),
		}
	}
	return nil
}

// checkStagnation fires when mean speed drops below a quarter of its
// rolling average.
func (bd *BookmarkDetector) checkStagnation(stats WindowStats) *Bookmark {
	avg, n := bd.mean(func(w WindowStats) float64 { return w.SpeedMean })
	if n < 3 || avg == 0 {
		return nil
	}
	if stats.SpeedMean < avg*0.25 {
		return &Bookmark{
			Type:        BookmarkStagnation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed %.4f fell to %.0f%% of average (%.4f)", stats.SpeedMean, stats.SpeedMean/avg*100, avg),
		}
	}
	return nil
}

// checkSteadyState fires once when mean speed and reset rate have varied by
// less than 20% (coefficient of variation) over the last windows.
func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	history := bd.recent(steadyWindows - 1)
	if len(history) < steadyWindows-1 {
		return nil
	}

	speeds := make([]float64, len(history))
	rates := make([]float64, len(history))
	for i, h := range history {
		speeds[i] = h.SpeedMean
		rates[i] = h.ResetRate
	}

	if calm(speeds) && calm(rates) {
		bd.steadyCount++
	} else {
		bd.steadyCount = 0
	}

	if bd.steadyCount == steadyWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady circulation at mean speed %.4f over %d+ windows", stats.SpeedMean, steadyWindows),
		}
	}
	return nil
}

func calm(vals []float64) bool {
	mean, std := stat.PopMeanStdDev(vals, nil)
	if mean == 0 {
		return std == 0
	}
	cv := std / mean
	return cv*cv < 0.04
}
