package systems

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// cubicPatch holds the 16 coefficients a[i*4+j] of
// p(x, y) = sum a_ij * x^i * y^j over one unit cell.
type cubicPatch [16]float64

// hermite maps corner values and derivatives to polynomial coefficients.
var hermite = mat.NewDense(4, 4, []float64{
	1, 0, 0, 0,
	0, 0, 1, 0,
	-3, 3, -2, -1,
	2, -2, 1, 1,
})

// Bicubic interpolates with a bicubic Hermite patch per cell. Corner
// derivatives come from central differences, one-sided at the grid edges.
// Missing samples follow the same fallback policy as Bilinear.
func (f *VectorField) Bicubic(x, y float64) (u, v float64) {
	x0 := math.Floor(x)
	y0 := math.Floor(y)

	i, ok := f.index(int(x0), int(y0))
	if !ok || !f.u[i].Valid || !f.v[i].Valid {
		return 0, 0
	}
	f.ensureCubic()

	fx := x - x0
	fy := y - y0
	return f.cubicU[i].eval(fx, fy), f.cubicV[i].eval(fx, fy)
}

func (p *cubicPatch) eval(x, y float64) float64 {
	var res float64
	for i := 3; i >= 0; i-- {
		row := ((p[i*4+3]*y+p[i*4+2])*y+p[i*4+1])*y + p[i*4]
		res = res*x + row
	}
	return res
}

func (f *VectorField) ensureCubic() {
	f.cubicOnce.Do(func() {
		f.cubicU = make([]cubicPatch, len(f.u))
		f.cubicV = make([]cubicPatch, len(f.v))

		corners := mat.NewDense(4, 4, nil)
		var coef mat.Dense
		for _, c := range f.wet {
			i := c.Row*f.cols + c.Col
			f.fillCorners(corners, f.u, c.Col, c.Row, f.u[i].Value)
			coef.Product(hermite, corners, hermite.T())
			copyPatch(&f.cubicU[i], &coef)

			f.fillCorners(corners, f.v, c.Col, c.Row, f.v[i].Value)
			coef.Product(hermite, corners, hermite.T())
			copyPatch(&f.cubicV[i], &coef)
		}
	})
}

func copyPatch(p *cubicPatch, m *mat.Dense) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			p[i*4+j] = m.At(i, j)
		}
	}
}

// fillCorners writes the Hermite corner matrix
//
//	[ f(0,0)  f(0,1)  fy(0,0)  fy(0,1)  ]
//	[ f(1,0)  f(1,1)  fy(1,0)  fy(1,1)  ]
//	[ fx(0,0) fx(0,1) fxy(0,0) fxy(0,1) ]
//	[ fx(1,0) fx(1,1) fxy(1,0) fxy(1,1) ]
//
// for the cell at (col, row), where f(a,b) is the corner at offset (a,b).
func (f *VectorField) fillCorners(m *mat.Dense, grid []Sample, col, row int, base float64) {
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			cc, rr := col+a, row+b
			val, dx, dy, dxy := f.cornerTerms(grid, cc, rr, base)
			m.Set(a, b, val)
			m.Set(a, 2+b, dy)
			m.Set(2+a, b, dx)
			m.Set(2+a, 2+b, dxy)
		}
	}
}

func (f *VectorField) cornerTerms(grid []Sample, col, row int, base float64) (val, dx, dy, dxy float64) {
	at := func(c, r int) float64 {
		i, ok := f.index(c, r)
		if !ok || !grid[i].Valid {
			return base
		}
		return grid[i].Value
	}

	val = at(col, row)
	xlo, xhi := stencil(col, f.cols)
	ylo, yhi := stencil(row, f.rows)

	if h := xhi - xlo; h > 0 {
		dx = (at(xhi, row) - at(xlo, row)) / float64(h)
	}
	if h := yhi - ylo; h > 0 {
		dy = (at(col, yhi) - at(col, ylo)) / float64(h)
	}
	if hx, hy := xhi-xlo, yhi-ylo; hx > 0 && hy > 0 {
		dxy = (at(xhi, yhi) - at(xhi, ylo) - at(xlo, yhi) + at(xlo, ylo)) / float64(hx*hy)
	}
	return val, dx, dy, dxy
}

// stencil returns the difference points around i on an axis of length n:
// central in the interior, one-sided at the edges, empty past the edge.
func stencil(i, n int) (lo, hi int) {
	lo, hi = i-1, i+1
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo > i {
		lo = i
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
