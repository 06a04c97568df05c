package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, kind BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == kind {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_ResetSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 300, Resets: 30, ResetRate: 0.01, SpeedMean: 0.3})
	}

	surge := WindowStats{WindowEndTick: 1500, Resets: 120, ResetRate: 0.04, SpeedMean: 0.3}
	if !hasBookmark(bd.Check(surge), BookmarkResetSurge) {
		t.Error("expected reset_surge bookmark")
	}
}

func TestBookmarkDetector_ResetSurgeNeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Resets: 30, ResetRate: 0.01})

	if hasBookmark(bd.Check(WindowStats{Resets: 300, ResetRate: 0.1}), BookmarkResetSurge) {
		t.Error("surge should need at least three windows of history")
	}
}

func TestBookmarkDetector_Stagnation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 300, SpeedMean: 0.4, ResetRate: 0.01})
	}

	slow := WindowStats{WindowEndTick: 1200, SpeedMean: 0.05, ResetRate: 0.01}
	if !hasBookmark(bd.Check(slow), BookmarkStagnation) {
		t.Error("expected stagnation bookmark")
	}
}

func TestBookmarkDetector_SteadyStateOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	firedAt := -1
	for i := 0; i < 12; i++ {
		stats := WindowStats{WindowEndTick: i * 300, SpeedMean: 0.3, ResetRate: 0.02}
		if hasBookmark(bd.Check(stats), BookmarkSteadyState) {
			fired++
			firedAt = i
		}
	}

	if fired != 1 {
		t.Fatalf("steady_state fired %d times, want 1", fired)
	}
	// Four windows fill the comparison span, then five calm checks
	if firedAt != 7 {
		t.Errorf("steady_state fired at window %d, want 7", firedAt)
	}
}
