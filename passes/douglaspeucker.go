package passes

import (
	"math"
	"slices"

	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
	"sketchpath.dev/pipeline"
)

// DouglasPeuckerPass is a dequantizing simplification: besides picking the
// subset of samples to keep, it nudges each inserted sample slightly
// toward the chord it broke, to counteract integer pixel quantization
// bias in the original samples (spec §4.C DouglasPeuckerPass).
type DouglasPeuckerPass struct {
	// Tolerance is the caller-chosen baseline tolerance added to the
	// axis-proximity threshold.
	Tolerance float64

	kept []int
}

func NewDouglasPeuckerPass(tolerance float64) *DouglasPeuckerPass {
	return &DouglasPeuckerPass{Tolerance: tolerance}
}

func (p *DouglasPeuckerPass) Reset() { p.kept = nil }

func (p *DouglasPeuckerPass) TransformMatrix() affine.Aff3 { return affine.Identity }

// UpdateFrom rebuilds its output from scratch every call; it exposes no
// stable prefix.
func (p *DouglasPeuckerPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	if n == 0 {
		output.Resize(0)
		output.SetNumStablePoints(0)
		return
	}
	pts := make([]bezier.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = input.At(i).Position
	}

	kept := map[int]bool{0: true, n - 1: true}
	p.split(pts, 0, n-1, kept)

	indices := make([]int, 0, len(kept))
	for i := range kept {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	output.Resize(len(indices))
	for i, idx := range indices {
		sp := input.At(idx)
		sp.Position = pts[idx]
		output.Set(i, sp)
	}
	output.UpdateChordLengths()
	output.SetNumStablePoints(0)
}

func (p *DouglasPeuckerPass) split(pts []bezier.Point, iA, iB int, kept map[int]bool) {
	if iB <= iA+1 {
		return
	}
	a, b := pts[iA], pts[iB]
	threshold := axisThreshold(a, b, p.Tolerance)

	maxDist := -1.0
	maxIdx := -1
	maxSigned := 0.0
	for i := iA + 1; i < iB; i++ {
		signed := signedPerpDistance(pts[i], a, b)
		d := math.Abs(signed)
		if d > maxDist {
			maxDist, maxIdx, maxSigned = d, i, signed
		}
	}
	if maxIdx < 0 || maxDist <= threshold {
		return
	}

	pts[maxIdx] = dequantizeToward(pts[maxIdx], a, b, maxSigned, 0.8*threshold)
	kept[maxIdx] = true
	p.split(pts, iA, maxIdx, kept)
	p.split(pts, maxIdx, iB, kept)
}

// axisThreshold returns the smallest perpendicular distance at which the
// segment a-b can just avoid the one-pixel square around any integer
// sample, plus the caller's tolerance.
func axisThreshold(a, b bezier.Point, tol float64) float64 {
	d := b.Sub(a)
	angle := math.Atan2(math.Abs(d.Y), math.Abs(d.X))
	theta := angle
	if theta > math.Pi/4 {
		theta = math.Pi/2 - theta
	}
	return math.Cos(math.Pi/4-theta)*math.Sqrt2/2 + tol
}

// signedPerpDistance returns the signed perpendicular distance from p to
// the line through a-b (positive on the left of a->b).
func signedPerpDistance(p, a, b bezier.Point) float64 {
	dir := b.Sub(a)
	length := dir.Len()
	if length == 0 {
		return p.Sub(a).Len()
	}
	return p.Sub(a).PerpDot(dir) / length
}

// dequantizeToward moves p 0.8*threshold toward the chord a-b,
// perpendicular to it, on the side opposite its deviation.
func dequantizeToward(p, a, b bezier.Point, signedDeviation, amount float64) bezier.Point {
	dir := b.Sub(a)
	length := dir.Len()
	if length == 0 {
		return p
	}
	normal := dir.Rot90CCW().Div(length)
	sign := 1.0
	if signedDeviation < 0 {
		sign = -1.0
	}
	return p.Add(normal.Mul(sign * amount))
}
