// Package gridio loads and writes velocity grids for the flow viewer.
//
// Grids are row-major u/v sample arrays. Missing data (the "nan" tag, empty
// cells, NetCDF fill values, numeric NaN) is converted to systems.Missing
// once at load time.
package gridio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/lakeflow/systems"
)

// Grid is a pair of equally shaped velocity component arrays.
type Grid struct {
	U, V [][]systems.Sample
}

// DefaultMaxCells bounds the grid size a file may declare.
const DefaultMaxCells = 4_000_000

// Options controls file decoding.
type Options struct {
	UVar      string  // NetCDF variable for u
	VVar      string  // NetCDF variable for v
	FillValue float64 // NetCDF missing marker when the variable has no _FillValue
	MaxCells  int     // largest rows*cols accepted on load; <= 0 uses DefaultMaxCells
}

// DefaultOptions returns options matching the stock config.
func DefaultOptions() Options {
	return Options{UVar: "u", VVar: "v", FillValue: -9999, MaxCells: DefaultMaxCells}
}

// checkSize rejects shapes larger than maxCells without overflowing rows*cols.
func checkSize(rows, cols, maxCells int) error {
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	if rows > maxCells || cols > maxCells || rows > maxCells/cols {
		return fmt.Errorf("grid %dx%d exceeds %d cells", rows, cols, maxCells)
	}
	return nil
}

// NewGrid allocates a rows x cols grid with every sample missing.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{
		U: make([][]systems.Sample, rows),
		V: make([][]systems.Sample, rows),
	}
	for r := 0; r < rows; r++ {
		g.U[r] = make([]systems.Sample, cols)
		g.V[r] = make([]systems.Sample, cols)
	}
	return g
}

// Rows returns the row count.
func (g *Grid) Rows() int { return len(g.U) }

// Cols returns the column count (0 for an empty grid).
func (g *Grid) Cols() int {
	if len(g.U) == 0 {
		return 0
	}
	return len(g.U[0])
}

// WetCount returns the number of cells with both components present.
func (g *Grid) WetCount() int {
	n := 0
	for r := range g.U {
		for c := range g.U[r] {
			if g.U[r][c].Valid && g.V[r][c].Valid {
				n++
			}
		}
	}
	return n
}

// FlipVertical reverses row order in place so row 0 becomes the other edge.
func (g *Grid) FlipVertical() {
	for i, j := 0, len(g.U)-1; i < j; i, j = i+1, j-1 {
		g.U[i], g.U[j] = g.U[j], g.U[i]
		g.V[i], g.V[j] = g.V[j], g.V[i]
	}
}

// Field builds a vector field from the grid.
func (g *Grid) Field(opts ...systems.FieldOption) (*systems.VectorField, error) {
	return systems.NewVectorField(g.U, g.V, opts...)
}

// Load reads a grid, choosing the decoder from the file extension.
func Load(path string, opts Options) (*Grid, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadCSV(path, opts.MaxCells)
	case ".nc", ".cdf", ".netcdf":
		return LoadNetCDF(path, opts)
	default:
		return nil, fmt.Errorf("unsupported grid format %q", ext)
	}
}

// Save writes a grid, choosing the encoder from the file extension.
func Save(path string, g *Grid, opts Options) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return SaveCSV(path, g)
	case ".nc", ".cdf", ".netcdf":
		return SaveNetCDF(path, g, opts)
	default:
		return fmt.Errorf("unsupported grid format %q", ext)
	}
}
