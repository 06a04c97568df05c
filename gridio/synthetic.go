package gridio

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/lakeflow/systems"
)

// SyntheticConfig shapes a generated lake.
type SyntheticConfig struct {
	Rows, Cols     int
	Seed           int64
	Gyres          int     // circulation cells side by side across the basin
	Strength       float64 // peak speed in grid units per tick
	ShorelineNoise float64 // radial shoreline perturbation, 0 gives an ellipse
	EddyNoise      float64 // streamfunction noise relative to the gyres
}

const (
	basinRadiusX = 0.46
	basinRadiusY = 0.44
	eddyScale    = 4.0
	eddyOctaves  = 3
)

// Synthetic generates an elliptical lake with a noisy shoreline and a
// divergence-free gyre circulation. Cells outside the shoreline are dry.
// The same config always yields the same grid.
func Synthetic(cfg SyntheticConfig) (*Grid, error) {
	if cfg.Rows < 2 || cfg.Cols < 2 {
		return nil, fmt.Errorf("synthetic grid must be at least 2x2, got %dx%d", cfg.Rows, cfg.Cols)
	}
	if math.IsNaN(cfg.Strength) || math.IsInf(cfg.Strength, 0) {
		return nil, fmt.Errorf("synthetic strength must be finite, got %v", cfg.Strength)
	}
	gyres := max(cfg.Gyres, 1)

	noise := opensimplex.New(cfg.Seed)
	rows, cols := cfg.Rows, cfg.Cols

	// Streamfunction: u = dpsi/dy, v = -dpsi/dx keeps the flow divergence free.
	psi := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		yn := (float64(r) + 0.5) / float64(rows)
		for c := 0; c < cols; c++ {
			xn := (float64(c) + 0.5) / float64(cols)
			gyre := math.Sin(math.Pi*float64(gyres)*xn) * math.Sin(math.Pi*yn)
			psi[r*cols+c] = gyre + cfg.EddyNoise*fbm(noise, xn*eddyScale, yn*eddyScale)
		}
	}

	g := NewGrid(rows, cols)
	peak := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !inLake(noise, cfg.ShorelineNoise, r, c, rows, cols) {
				continue
			}
			u := derivative(psi, r*cols+c, r, rows, cols)
			v := -derivative(psi, r*cols+c, c, cols, 1)
			g.U[r][c] = systems.Value(u)
			g.V[r][c] = systems.Value(v)
			peak = math.Max(peak, math.Hypot(u, v))
		}
	}

	// The centre is always open water so the lake is never empty.
	cr, cc := rows/2, cols/2
	if !g.U[cr][cc].Valid {
		g.U[cr][cc] = systems.Value(0)
		g.V[cr][cc] = systems.Value(0)
	}

	if peak > 0 {
		k := cfg.Strength / peak
		for r := range g.U {
			for c := range g.U[r] {
				if g.U[r][c].Valid {
					g.U[r][c].Value *= k
					g.V[r][c].Value *= k
				}
			}
		}
	}
	return g, nil
}

// inLake tests the cell centre against the perturbed ellipse.
func inLake(noise opensimplex.Noise, roughness float64, r, c, rows, cols int) bool {
	dx := ((float64(c)+0.5)/float64(cols) - 0.5) / basinRadiusX
	dy := ((float64(r)+0.5)/float64(rows) - 0.5) / basinRadiusY
	theta := math.Atan2(dy, dx)
	edge := 1 + roughness*noise.Eval2(math.Cos(theta)*1.7+31.4, math.Sin(theta)*1.7+27.1)
	return math.Hypot(dx, dy) < edge
}

// derivative differentiates psi along one axis at flat index i, where pos is
// the position along that axis, n its length and stride the index step.
func derivative(psi []float64, i, pos, n, stride int) float64 {
	switch {
	case pos > 0 && pos < n-1:
		return (psi[i+stride] - psi[i-stride]) / 2
	case pos == 0:
		return psi[i+stride] - psi[i]
	default:
		return psi[i] - psi[i-stride]
	}
}

// fbm sums octaves of simplex noise, roughly in [-1, 1].
func fbm(noise opensimplex.Noise, x, y float64) float64 {
	sum, amp, freq, norm := 0.0, 0.5, 1.0, 0.0
	for o := 0; o < eddyOctaves; o++ {
		sum += amp * noise.Eval2(x*freq, y*freq)
		norm += amp
		freq *= 2
		amp *= 0.5
	}
	return sum / norm
}
