package systems

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// Rand is the random source used for spawning and reset ages.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Interpolation selects the continuous velocity evaluator.
type Interpolation uint8

const (
	Bilinear Interpolation = iota
	Bicubic
)

// String returns the config name of the interpolation mode.
func (m Interpolation) String() string {
	switch m {
	case Bicubic:
		return "bicubic"
	default:
		return "bilinear"
	}
}

// ParseInterpolation parses a config value ("bilinear" or "bicubic").
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear":
		return Bilinear, nil
	case "bicubic":
		return Bicubic, nil
	}
	return Bilinear, fmt.Errorf("unknown interpolation %q", s)
}

// Cell addresses one grid cell.
type Cell struct {
	Col, Row int
}

// VectorField is an immutable discretized velocity grid with an explicit
// list of wet cells. It is safe for concurrent reads.
type VectorField struct {
	rows, cols int

	// Row-major samples, index = row*cols + col
	u, v []Sample

	wet  []Cell
	mode Interpolation

	// Bicubic patches, built once on first use
	cubicOnce sync.Once
	cubicU    []cubicPatch
	cubicV    []cubicPatch
}

// FieldOption configures a VectorField at construction.
type FieldOption func(*VectorField)

// WithInterpolation selects the evaluator used by VelocityAt.
func WithInterpolation(mode Interpolation) FieldOption {
	return func(f *VectorField) {
		f.mode = mode
	}
}

// NewVectorField builds a field from row-major u and v grids of identical
// shape. It fails with ErrConstruction on empty or mismatched grids and
// additionally with ErrEmptyField when no cell is wet.
func NewVectorField(u, v [][]Sample, opts ...FieldOption) (*VectorField, error) {
	if len(u) == 0 || len(v) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrConstruction)
	}
	if len(u) != len(v) {
		return nil, fmt.Errorf("%w: u has %d rows, v has %d", ErrConstruction, len(u), len(v))
	}
	cols := len(u[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrConstruction)
	}

	rows := len(u)
	f := &VectorField{
		rows: rows,
		cols: cols,
		u:    make([]Sample, rows*cols),
		v:    make([]Sample, rows*cols),
	}

	for r := 0; r < rows; r++ {
		if len(u[r]) != cols || len(v[r]) != cols {
			return nil, fmt.Errorf("%w: row %d has %d/%d columns, want %d",
				ErrConstruction, r, len(u[r]), len(v[r]), cols)
		}
		for c := 0; c < cols; c++ {
			f.u[r*cols+c] = normalize(u[r][c])
			f.v[r*cols+c] = normalize(v[r][c])
		}
	}

	// Wetness is derived once; spawning and bounds checks never rescan
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if isWet(f.u[i]) && isWet(f.v[i]) {
				f.wet = append(f.wet, Cell{Col: c, Row: r})
			}
		}
	}
	if len(f.wet) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, ErrEmptyField)
	}

	for _, opt := range opts {
		opt(f)
	}
	if f.mode == Bicubic {
		f.ensureCubic()
	}

	return f, nil
}

// NewVectorFieldFromFloats builds a field from raw floats where NaN marks missing data.
func NewVectorFieldFromFloats(u, v [][]float64, opts ...FieldOption) (*VectorField, error) {
	return NewVectorField(SamplesFromFloats(u), SamplesFromFloats(v), opts...)
}

func isWet(s Sample) bool {
	return s.Valid && !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}

// normalize maps non-finite values to Missing so every runtime check can
// rely on Valid alone.
func normalize(s Sample) Sample {
	if !isWet(s) {
		return Missing()
	}
	return s
}

// Rows returns the grid row count.
func (f *VectorField) Rows() int { return f.rows }

// Cols returns the grid column count.
func (f *VectorField) Cols() int { return f.cols }

// Interpolation returns the evaluator used by VelocityAt.
func (f *VectorField) Interpolation() Interpolation { return f.mode }

// WetCount returns the number of wet cells.
func (f *VectorField) WetCount() int { return len(f.wet) }

// WetCells returns a copy of the wet cell list in row-major order.
func (f *VectorField) WetCells() []Cell {
	out := make([]Cell, len(f.wet))
	copy(out, f.wet)
	return out
}

// At returns the raw samples at a cell. Cells outside the grid are missing.
func (f *VectorField) At(col, row int) (u, v Sample) {
	i, ok := f.index(col, row)
	if !ok {
		return Missing(), Missing()
	}
	return f.u[i], f.v[i]
}

// RandomSpawnPoint returns a uniformly random position inside a uniformly
// random wet cell.
func (f *VectorField) RandomSpawnPoint(rng Rand) (x, y float64, err error) {
	if len(f.wet) == 0 {
		return 0, 0, ErrEmptyField
	}
	x, y = f.spawn(rng)
	return x, y, nil
}

// spawn assumes at least one wet cell, which construction guarantees.
func (f *VectorField) spawn(rng Rand) (x, y float64) {
	c := f.wet[rng.Intn(len(f.wet))]
	return float64(c.Col) + rng.Float64(), float64(c.Row) + rng.Float64()
}

// IsOutOfBounds reports whether a cell lies outside the grid or lacks data.
func (f *VectorField) IsOutOfBounds(col, row int) bool {
	i, ok := f.index(col, row)
	if !ok {
		return true
	}
	return !f.u[i].Valid || !f.v[i].Valid
}

// VelocityAt returns the interpolated velocity at a fractional grid position
// using the field's configured evaluator.
func (f *VectorField) VelocityAt(x, y float64) (u, v float64) {
	if f.mode == Bicubic {
		return f.Bicubic(x, y)
	}
	return f.Bilinear(x, y)
}

// Bilinear interpolates over the 2x2 neighborhood of floor(x), floor(y).
// Missing neighbors take the base corner's value; a missing base corner
// yields zero velocity.
func (f *VectorField) Bilinear(x, y float64) (u, v float64) {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	c, r := int(x0), int(y0)

	i, ok := f.index(c, r)
	if !ok || !f.u[i].Valid || !f.v[i].Valid {
		return 0, 0
	}
	u00, v00 := f.u[i].Value, f.v[i].Value

	u10, v10 := f.valueOr(c+1, r, u00, v00)
	u01, v01 := f.valueOr(c, r+1, u00, v00)
	u11, v11 := f.valueOr(c+1, r+1, u00, v00)

	fx := x - x0
	fy := y - y0
	return bilerp(u00, u10, u01, u11, fx, fy), bilerp(v00, v10, v01, v11, fx, fy)
}

func bilerp(f00, f10, f01, f11, x, y float64) float64 {
	return f00 + (f10-f00)*x + (f01-f00)*y + (f11-f10-f01+f00)*x*y
}

// valueOr returns the samples at a cell, substituting the fallbacks
// component-wise where data is missing or outside the grid.
func (f *VectorField) valueOr(col, row int, fu, fv float64) (u, v float64) {
	i, ok := f.index(col, row)
	if !ok {
		return fu, fv
	}
	u, v = fu, fv
	if f.u[i].Valid {
		u = f.u[i].Value
	}
	if f.v[i].Valid {
		v = f.v[i].Value
	}
	return u, v
}

func (f *VectorField) index(col, row int) (int, bool) {
	if col < 0 || row < 0 || col >= f.cols || row >= f.rows {
		return 0, false
	}
	return row*f.cols + col, true
}

// DrawWetCellMask fills one rectangle per wet cell using the surface's
// current fill color.
func (f *VectorField) DrawWetCellMask(s Surface, view Viewport) {
	for _, c := range f.wet {
		x, y := view.Project(float64(c.Col), float64(c.Row))
		s.FillRect(x, y, view.CellW, view.CellH)
	}
}
