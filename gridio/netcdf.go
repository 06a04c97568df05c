package gridio

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"

	"github.com/pthm-cable/lakeflow/systems"
)

// LoadNetCDF reads u/v from a classic NetCDF file. Variables may be 2-D
// (y, x) or carry leading singleton dimensions such as time or depth; only
// the first slab is read.
func LoadNetCDF(path string, opts Options) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid netcdf: %w", err)
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("gridio.LoadNetCDF: %v", err)
	}

	u, err := readSlab(nc, opts.UVar, opts.FillValue, opts.MaxCells)
	if err != nil {
		return nil, err
	}
	v, err := readSlab(nc, opts.VVar, opts.FillValue, opts.MaxCells)
	if err != nil {
		return nil, err
	}
	if len(u) != len(v) || len(u[0]) != len(v[0]) {
		return nil, fmt.Errorf("gridio.LoadNetCDF: %s is %dx%d but %s is %dx%d",
			opts.UVar, len(u), len(u[0]), opts.VVar, len(v), len(v[0]))
	}
	return &Grid{U: u, V: v}, nil
}

func readSlab(nc *cdf.File, name string, fill float64, maxCells int) ([][]systems.Sample, error) {
	dims := nc.Header.Lengths(name)
	if len(dims) < 2 {
		return nil, fmt.Errorf("gridio.LoadNetCDF: variable %q missing or not 2-D", name)
	}
	ny, nx := dims[len(dims)-2], dims[len(dims)-1]
	if ny < 1 || nx < 1 {
		return nil, fmt.Errorf("gridio.LoadNetCDF: variable %q is empty", name)
	}
	if err := checkSize(ny, nx, maxCells); err != nil {
		return nil, fmt.Errorf("gridio.LoadNetCDF: %s: %w", name, err)
	}

	if attr, ok := attributeFloat(nc.Header.GetAttribute(name, "_FillValue")); ok {
		fill = attr
	}

	begin := make([]int, len(dims))
	end := make([]int, len(dims))
	for i := range end {
		end[i] = 1
	}
	end[len(dims)-2], end[len(dims)-1] = ny, nx

	r := nc.Reader(name, begin, end)
	buf := r.Zero(ny * nx)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("gridio.LoadNetCDF: reading %s: %v", name, err)
	}
	flat, err := floatsOf(buf)
	if err != nil {
		return nil, fmt.Errorf("gridio.LoadNetCDF: %s: %w", name, err)
	}

	out := make([][]systems.Sample, ny)
	for row := 0; row < ny; row++ {
		out[row] = make([]systems.Sample, nx)
		for col := 0; col < nx; col++ {
			out[row][col] = fillSample(flat[row*nx+col], fill)
		}
	}
	return out, nil
}

// fillSample treats values equal to the fill marker (at float32 precision)
// as missing.
func fillSample(x, fill float64) systems.Sample {
	if x == fill || float32(x) == float32(fill) {
		return systems.Missing()
	}
	return systems.SampleOf(x)
}

func floatsOf(buf interface{}) ([]float64, error) {
	switch s := buf.(type) {
	case []float32:
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	case []float64:
		return s, nil
	case []int32:
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported element type %T", buf)
	}
}

func attributeFloat(a interface{}) (float64, bool) {
	switch s := a.(type) {
	case []float32:
		if len(s) > 0 {
			return float64(s[0]), true
		}
	case []float64:
		if len(s) > 0 {
			return s[0], true
		}
	case []int32:
		if len(s) > 0 {
			return float64(s[0]), true
		}
	case []int16:
		if len(s) > 0 {
			return float64(s[0]), true
		}
	}
	return 0, false
}

// SaveNetCDF writes the grid as float32 (y, x) variables with a _FillValue.
func SaveNetCDF(path string, g *Grid, opts Options) error {
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("gridio.SaveNetCDF: empty grid")
	}

	h := cdf.NewHeader([]string{"y", "x"}, []int{rows, cols})
	h.AddAttribute("", "comment", "lakeflow surface current grid")
	for _, name := range []string{opts.UVar, opts.VVar} {
		h.AddVariable(name, []string{"y", "x"}, []float32{0})
		h.AddAttribute(name, "_FillValue", []float32{float32(opts.FillValue)})
	}
	h.Define()

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating grid netcdf: %w", err)
	}
	defer w.Close()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("gridio.SaveNetCDF: %v", err)
	}
	if err := writeVar(f, opts.UVar, g.U, opts.FillValue); err != nil {
		return err
	}
	if err := writeVar(f, opts.VVar, g.V, opts.FillValue); err != nil {
		return err
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("gridio.SaveNetCDF: %v", err)
	}
	return w.Close()
}

func writeVar(f *cdf.File, name string, data [][]systems.Sample, fill float64) error {
	cols := len(data[0])
	data32 := make([]float32, len(data)*cols)
	for r, row := range data {
		for c, s := range row {
			x := fill
			if s.Valid && !math.IsNaN(s.Value) {
				x = s.Value
			}
			data32[r*cols+c] = float32(x)
		}
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	if _, err := f.Writer(name, start, end).Write(data32); err != nil {
		return fmt.Errorf("gridio.SaveNetCDF: writing %s: %v", name, err)
	}
	return nil
}
