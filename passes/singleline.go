package passes

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
	"sketchpath.dev/pipeline"

	"gonum.org/v1/gonum/mat"
)

// SingleLineSegmentWithFixedEndpointsPass reduces the input to the two
// points input.first and input.last (spec §4.C Single-segment passes).
type SingleLineSegmentWithFixedEndpointsPass struct{}

func (p *SingleLineSegmentWithFixedEndpointsPass) Reset() {}

func (p *SingleLineSegmentWithFixedEndpointsPass) TransformMatrix() affine.Aff3 {
	return affine.Identity
}

func (p *SingleLineSegmentWithFixedEndpointsPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	if n == 0 {
		output.Resize(0)
		output.SetNumStablePoints(0)
		return
	}
	output.Resize(2)
	output.Set(0, input.First())
	output.Set(1, input.Last())
	output.UpdateChordLengths()
	stable := 0
	if input.NumStablePoints() > 0 {
		stable = 1
	}
	output.SetNumStablePoints(stable)
}

// SingleLineSegmentWithFreeEndpointsPass fits a total-least-squares
// (orthogonal regression) line through every sample, then projects the
// extreme-projection samples onto it to produce the two output points
// (spec §4.C Single-segment passes). It exposes no stable prefix.
type SingleLineSegmentWithFreeEndpointsPass struct{}

func (p *SingleLineSegmentWithFreeEndpointsPass) Reset() {}

func (p *SingleLineSegmentWithFreeEndpointsPass) TransformMatrix() affine.Aff3 {
	return affine.Identity
}

func (p *SingleLineSegmentWithFreeEndpointsPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	if n == 0 {
		output.Resize(0)
		output.SetNumStablePoints(0)
		return
	}
	if n == 1 {
		output.Resize(1)
		output.Set(0, input.First())
		output.UpdateChordLengths()
		output.SetNumStablePoints(0)
		return
	}

	var centroid bezier.Point
	for i := 0; i < n; i++ {
		centroid = centroid.Add(input.At(i).Position)
	}
	centroid = centroid.Div(float64(n))

	var sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		d := input.At(i).Position.Sub(centroid)
		sxx += d.X * d.X
		syy += d.Y * d.Y
		sxy += d.X * d.Y
	}

	dir := principalDirection(sxx, syy, sxy)

	minU, maxU := 0.0, 0.0
	minIdx, maxIdx := 0, 0
	for i := 0; i < n; i++ {
		d := input.At(i).Position.Sub(centroid)
		u := d.Dot(dir)
		if i == 0 || u < minU {
			minU, minIdx = u, i
		}
		if i == 0 || u > maxU {
			maxU, maxIdx = u, i
		}
	}

	a := centroid.Add(dir.Mul(minU))
	b := centroid.Add(dir.Mul(maxU))

	output.Resize(2)
	out0, out1 := input.At(minIdx), input.At(maxIdx)
	out0.Position = a
	out1.Position = b
	output.Set(0, out0)
	output.Set(1, out1)
	output.UpdateChordLengths()
	output.SetNumStablePoints(0)
}

// principalDirection returns the unit direction of greatest variance of a
// centered point cloud with scatter entries sxx, syy, sxy, via the
// dominant eigenvector of the symmetric scatter matrix [[sxx,sxy],[sxy,syy]].
func principalDirection(sxx, syy, sxy float64) bezier.Point {
	if sxx == 0 && syy == 0 && sxy == 0 {
		return bezier.Pt(1, 0)
	}
	sym := mat.NewSymDense(2, []float64{sxx, sxy, sxy, syy})
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		// Degenerate scatter matrix (e.g. all points coincide): fall back
		// to the horizontal direction.
		return bezier.Pt(1, 0)
	}
	values := eig.Values(nil)
	vectors := mat.NewDense(2, 2, nil)
	eig.VectorsTo(vectors)

	best := 0
	if values[1] > values[0] {
		best = 1
	}
	dir := bezier.Pt(vectors.At(0, best), vectors.At(1, best))
	if dir.LenSq() == 0 {
		return bezier.Pt(1, 0)
	}
	return dir.Normalized()
}
