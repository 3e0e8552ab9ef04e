package passes

import (
	"sort"

	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
	"sketchpath.dev/pipeline"
	"sketchpath.dev/sketchbuf"
)

// SingleQuadraticSegmentWithFixedEndpointsPass fits a single quadratic
// Bézier across the whole input and resamples it into a fixed number of
// evenly-u-spaced output points, carrying interpolated width/pressure/
// timestamp from the bracketing input samples (spec §4.C
// SingleQuadraticSegmentWithFixedEndpointsPass).
type SingleQuadraticSegmentWithFixedEndpointsPass struct {
	// NumOutputSegments is numOutputSegments in the spec; output has
	// NumOutputSegments+1 points. Defaults to 8 (9 points) when zero.
	NumOutputSegments int

	buf bezier.FitBuffer
}

func (p *SingleQuadraticSegmentWithFixedEndpointsPass) Reset() {}

func (p *SingleQuadraticSegmentWithFixedEndpointsPass) TransformMatrix() affine.Aff3 {
	return affine.Identity
}

func (p *SingleQuadraticSegmentWithFixedEndpointsPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	if n == 0 {
		output.Resize(0)
		output.SetNumStablePoints(0)
		return
	}

	numSegs := p.NumOutputSegments
	if numSegs <= 0 {
		numSegs = 8
	}

	if n == 1 {
		output.Resize(1)
		output.Set(0, input.First())
		output.UpdateChordLengths()
		if input.NumStablePoints() > 0 {
			output.SetNumStablePoints(1)
		} else {
			output.SetNumStablePoints(0)
		}
		return
	}

	positions := make([]bezier.Point, n)
	s := make([]float64, n)
	for i := 0; i < n; i++ {
		sp := input.At(i)
		positions[i] = sp.Position
		s[i] = sp.S
	}

	q, params := bezier.QuadraticFit(&p.buf, positions, s, 0, n-1, nil)

	output.Resize(numSegs + 1)
	for k := 0; k <= numSegs; k++ {
		u := float64(k) / float64(numSegs)
		lo, hi := bracket(params, u)
		attrs := sketchbuf.Lerp(input.At(lo), input.At(hi), fraction(params[lo], params[hi], u))
		attrs.Position = q.Eval(u)
		output.Set(k, attrs)
	}
	output.UpdateChordLengths()

	if input.NumStablePoints() > 0 {
		output.SetNumStablePoints(1)
	} else {
		output.SetNumStablePoints(0)
	}
}

// bracket returns the indices lo, hi such that params[lo] <= u <= params[hi]
// and hi = lo+1 (or lo == hi at the array ends).
func bracket(params []float64, u float64) (lo, hi int) {
	i := sort.SearchFloat64s(params, u)
	switch {
	case i <= 0:
		return 0, 0
	case i >= len(params):
		return len(params) - 1, len(params) - 1
	default:
		return i - 1, i
	}
}

// fraction returns the normalized position of u within [a,b], clamped to
// [0,1]; returns 0 when a == b.
func fraction(a, b, u float64) float64 {
	if b == a {
		return 0
	}
	t := (u - a) / (b - a)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
