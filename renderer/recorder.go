package renderer

import "image/color"

// OpKind identifies a recorded surface call.
type OpKind uint8

const (
	OpStrokeColor OpKind = iota
	OpFillColor
	OpMoveTo
	OpLineTo
	OpStroke
	OpFillRect
)

// Op is one recorded surface call. Unused fields are zero.
type Op struct {
	Kind       OpKind
	X, Y, W, H float32
	Color      color.RGBA
}

// Recorder is a Surface that records every call. It is used to count draw
// work without a display and in tests.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) SetStrokeColor(c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeColor, Color: c})
}

func (r *Recorder) SetFillColor(c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpFillColor, Color: c})
}

func (r *Recorder) MoveTo(x, y float32) { r.Ops = append(r.Ops, Op{Kind: OpMoveTo, X: x, Y: y}) }
func (r *Recorder) LineTo(x, y float32) { r.Ops = append(r.Ops, Op{Kind: OpLineTo, X: x, Y: y}) }
func (r *Recorder) Stroke()             { r.Ops = append(r.Ops, Op{Kind: OpStroke}) }

func (r *Recorder) FillRect(x, y, w, h float32) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h})
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops recorded ops, keeping capacity.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
