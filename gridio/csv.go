package gridio

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/lakeflow/systems"
)

// cellRecord is one row of the long-format grid CSV.
type cellRecord struct {
	Row int       `csv:"row"`
	Col int       `csv:"col"`
	U   csvSample `csv:"u"`
	V   csvSample `csv:"v"`
}

// csvSample decodes the "nan" tag, blanks and null markers as missing.
type csvSample systems.Sample

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (s *csvSample) UnmarshalCSV(text string) error {
	t := strings.TrimSpace(text)
	switch strings.ToLower(t) {
	case "", "nan", "null", "na", "undefined":
		*s = csvSample(systems.Missing())
		return nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return fmt.Errorf("parsing sample %q: %w", text, err)
	}
	*s = csvSample(systems.SampleOf(f))
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (s csvSample) MarshalCSV() (string, error) {
	if !s.Valid {
		return "nan", nil
	}
	return strconv.FormatFloat(s.Value, 'g', -1, 64), nil
}

// LoadCSV reads a long-format grid file with columns row,col,u,v.
// Files declaring more than maxCells cells are rejected.
func LoadCSV(path string, maxCells int) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid csv: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, maxCells)
}

// ReadCSV decodes a long-format grid. Cells absent from the input are missing.
// The shape implied by the largest indices must fit in maxCells
// (<= 0 uses DefaultMaxCells).
func ReadCSV(r io.Reader, maxCells int) (*Grid, error) {
	var records []cellRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading grid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading grid csv: no cells")
	}

	rows, cols := 0, 0
	for i, rec := range records {
		if rec.Row < 0 || rec.Col < 0 {
			return nil, fmt.Errorf("reading grid csv: record %d has negative index (%d,%d)", i, rec.Row, rec.Col)
		}
		rows = max(rows, rec.Row+1)
		cols = max(cols, rec.Col+1)
	}
	if err := checkSize(rows, cols, maxCells); err != nil {
		return nil, fmt.Errorf("reading grid csv: %w", err)
	}

	g := NewGrid(rows, cols)
	seen := make([]bool, rows*cols)
	for _, rec := range records {
		k := rec.Row*cols + rec.Col
		if seen[k] {
			return nil, fmt.Errorf("reading grid csv: duplicate cell (%d,%d)", rec.Row, rec.Col)
		}
		seen[k] = true
		g.U[rec.Row][rec.Col] = systems.Sample(rec.U)
		g.V[rec.Row][rec.Col] = systems.Sample(rec.V)
	}
	return g, nil
}

// SaveCSV writes every cell of the grid in row-major order.
func SaveCSV(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating grid csv: %w", err)
	}
	if err := WriteCSV(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV encodes the grid in long format.
func WriteCSV(w io.Writer, g *Grid) error {
	records := make([]cellRecord, 0, g.Rows()*g.Cols())
	for r := range g.U {
		for c := range g.U[r] {
			records = append(records, cellRecord{
				Row: r,
				Col: c,
				U:   csvSample(g.U[r][c]),
				V:   csvSample(g.V[r][c]),
			})
		}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing grid csv: %w", err)
	}
	return nil
}
