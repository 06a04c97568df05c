package telemetry

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []float64{4}, Distribution{Mean: 4, P10: 4, P50: 4, P90: 4}},
		{"unsorted five", []float64{5, 1, 4, 2, 3}, Distribution{Mean: 3, Std: math.Sqrt2, P10: 1, P50: 3, P90: 5}},
		{"constant", []float64{2, 2, 2, 2}, Distribution{Mean: 2, P10: 2, P50: 2, P90: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			for _, c := range []struct {
				name      string
				got, want float64
			}{
				{"mean", got.Mean, tt.want.Mean},
				{"std", got.Std, tt.want.Std},
				{"p10", got.P10, tt.want.P10},
				{"p50", got.P50, tt.want.P50},
				{"p90", got.P90, tt.want.P90},
			} {
				if math.Abs(c.got-c.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
				}
			}
		})
	}
}

func TestSummarizeLeavesInputUnsorted(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}
