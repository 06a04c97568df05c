package systems

import "math"

// Sample is one velocity component at a grid cell: either a value or missing.
// Missing covers every form of absent data (sentinel tags, null, NaN).
type Sample struct {
	Value float64
	Valid bool
}

// Missing returns a sample with no data.
func Missing() Sample {
	return Sample{}
}

// Value returns a present sample.
func Value(f float64) Sample {
	return Sample{Value: f, Valid: true}
}

// SampleOf converts a raw float, treating NaN and infinities as missing.
func SampleOf(f float64) Sample {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value(f)
}

// SamplesFromFloats converts a row-major float grid into samples.
func SamplesFromFloats(grid [][]float64) [][]Sample {
	out := make([][]Sample, len(grid))
	for r, row := range grid {
		out[r] = make([]Sample, len(row))
		for c, f := range row {
			out[r][c] = SampleOf(f)
		}
	}
	return out
}
