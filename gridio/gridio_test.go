package gridio

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/lakeflow/systems"
)

func TestReadCSV(t *testing.T) {
	in := `row,col,u,v
0,0,1.5,-2
0,1,nan,0
1,0,,3
1,1,0.25,NaN
`
	g, err := ReadCSV(strings.NewReader(in), 0)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", g.Rows(), g.Cols())
	}

	if u := g.U[0][0]; !u.Valid || u.Value != 1.5 {
		t.Errorf("u[0][0] = %+v, want 1.5", u)
	}
	if v := g.V[0][0]; !v.Valid || v.Value != -2 {
		t.Errorf("v[0][0] = %+v, want -2", v)
	}
	if g.U[0][1].Valid {
		t.Error("nan tag should decode as missing")
	}
	if g.U[1][0].Valid {
		t.Error("empty cell should decode as missing")
	}
	if g.V[1][1].Valid {
		t.Error("numeric NaN should decode as missing")
	}
	if got := g.WetCount(); got != 1 {
		t.Errorf("WetCount = %d, want 1", got)
	}
}

func TestReadCSVSparseCellsMissing(t *testing.T) {
	in := "row,col,u,v\n2,3,1,1\n"
	g, err := ReadCSV(strings.NewReader(in), 0)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if g.Rows() != 3 || g.Cols() != 4 {
		t.Fatalf("dims = %dx%d, want 3x4", g.Rows(), g.Cols())
	}
	if g.WetCount() != 1 {
		t.Errorf("WetCount = %d, want 1", g.WetCount())
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no cells", "row,col,u,v\n"},
		{"duplicate", "row,col,u,v\n0,0,1,1\n0,0,2,2\n"},
		{"negative index", "row,col,u,v\n-1,0,1,1\n"},
		{"bad number", "row,col,u,v\n0,0,fast,1\n"},
		{"huge row index", "row,col,u,v\n1000000000,0,1,1\n"},
		{"overflowing shape", "row,col,u,v\n4611686018427387904,0,1,1\n0,4611686018427387904,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in), 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadCSVMaxCells(t *testing.T) {
	in := "row,col,u,v\n0,0,1,1\n2,3,1,1\n"

	if _, err := ReadCSV(strings.NewReader(in), 11); err == nil {
		t.Error("expected error for a 3x4 grid with max 11 cells")
	}
	g, err := ReadCSV(strings.NewReader(in), 12)
	if err != nil {
		t.Fatalf("ReadCSV at limit: %v", err)
	}
	if g.Rows() != 3 || g.Cols() != 4 {
		t.Errorf("grid = %dx%d, want 3x4", g.Rows(), g.Cols())
	}
}

func TestWriteCSVMissingAsTag(t *testing.T) {
	g := NewGrid(1, 2)
	g.U[0][0], g.V[0][0] = systems.Value(0.5), systems.Value(-1)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, g); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "row,col,u,v\n") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "0,1,nan,nan") {
		t.Errorf("missing cell not tagged nan in %q", out)
	}

	back, err := ReadCSV(&buf, 0)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if back.U[0][0] != g.U[0][0] || back.V[0][0] != g.V[0][0] || back.U[0][1].Valid {
		t.Errorf("written grid did not read back: %+v", back)
	}
}

func TestFlipVertical(t *testing.T) {
	g := NewGrid(3, 1)
	for r := 0; r < 3; r++ {
		g.U[r][0] = systems.Value(float64(r))
		g.V[r][0] = systems.Value(float64(r))
	}
	g.FlipVertical()
	for r, want := range []float64{2, 1, 0} {
		if g.U[r][0].Value != want || g.V[r][0].Value != want {
			t.Errorf("row %d = %v, want %v", r, g.U[r][0].Value, want)
		}
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "grid.json"), DefaultOptions()); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestSaveLoadNetCDF(t *testing.T) {
	g := NewGrid(3, 4)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			if r == 1 && c == 2 {
				continue
			}
			g.U[r][c] = systems.Value(float64(r) + 0.5)
			g.V[r][c] = systems.Value(float64(c) - 0.25)
		}
	}

	path := filepath.Join(t.TempDir(), "lake.nc")
	opts := DefaultOptions()
	if err := Save(path, g, opts); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if back.Rows() != 3 || back.Cols() != 4 {
		t.Fatalf("dims = %dx%d, want 3x4", back.Rows(), back.Cols())
	}
	if back.U[1][2].Valid || back.V[1][2].Valid {
		t.Error("fill value should load as missing")
	}
	if got := back.U[2][3]; !got.Valid || math.Abs(got.Value-2.5) > 1e-6 {
		t.Errorf("u[2][3] = %+v, want 2.5", got)
	}
	if got := back.V[0][1]; !got.Valid || math.Abs(got.Value-0.75) > 1e-6 {
		t.Errorf("v[0][1] = %+v, want 0.75", got)
	}
}

func TestLoadNetCDFMissingVariable(t *testing.T) {
	g := NewGrid(2, 2)
	g.U[0][0], g.V[0][0] = systems.Value(1), systems.Value(1)
	path := filepath.Join(t.TempDir(), "lake.nc")
	if err := SaveNetCDF(path, g, DefaultOptions()); err != nil {
		t.Fatalf("SaveNetCDF: %v", err)
	}

	opts := DefaultOptions()
	opts.UVar = "water_u"
	if _, err := LoadNetCDF(path, opts); err == nil {
		t.Error("expected error for absent variable")
	}
}

func testSynthetic() SyntheticConfig {
	return SyntheticConfig{
		Rows:           40,
		Cols:           60,
		Seed:           7,
		Gyres:          2,
		Strength:       0.5,
		ShorelineNoise: 0.15,
		EddyNoise:      0.2,
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	a, err := Synthetic(testSynthetic())
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}
	b, err := Synthetic(testSynthetic())
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}
	for r := range a.U {
		for c := range a.U[r] {
			if a.U[r][c] != b.U[r][c] || a.V[r][c] != b.V[r][c] {
				t.Fatalf("cell (%d,%d) differs between identical configs", r, c)
			}
		}
	}
}

func TestSyntheticShape(t *testing.T) {
	cfg := testSynthetic()
	cfg.ShorelineNoise = 0
	g, err := Synthetic(cfg)
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}

	if g.Rows() != cfg.Rows || g.Cols() != cfg.Cols {
		t.Fatalf("dims = %dx%d", g.Rows(), g.Cols())
	}
	// Corners lie outside an unperturbed ellipse
	for _, rc := range [][2]int{{0, 0}, {0, cfg.Cols - 1}, {cfg.Rows - 1, 0}, {cfg.Rows - 1, cfg.Cols - 1}} {
		if g.U[rc[0]][rc[1]].Valid {
			t.Errorf("corner %v should be dry", rc)
		}
	}
	if !g.U[cfg.Rows/2][cfg.Cols/2].Valid {
		t.Error("centre should be wet")
	}

	peak := 0.0
	for r := range g.U {
		for c := range g.U[r] {
			if g.U[r][c].Valid {
				peak = math.Max(peak, math.Hypot(g.U[r][c].Value, g.V[r][c].Value))
			}
		}
	}
	if math.Abs(peak-cfg.Strength) > 1e-9 {
		t.Errorf("peak speed = %v, want %v", peak, cfg.Strength)
	}

	f, err := g.Field()
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if f.WetCount() != g.WetCount() {
		t.Errorf("field wet = %d, grid wet = %d", f.WetCount(), g.WetCount())
	}
}

func TestSyntheticRejectsTinyGrid(t *testing.T) {
	cfg := testSynthetic()
	cfg.Rows = 1
	if _, err := Synthetic(cfg); err == nil {
		t.Error("expected error")
	}
}
