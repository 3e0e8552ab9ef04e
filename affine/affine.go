// Package affine implements the 2D affine transform used by
// passes.TransformPass and exposed read-only as every pass's transform
// matrix (spec: "a read-only 2D affine transformMatrix").
//
// It mirrors the teacher's golang.org/x/image/math/f32-based affine
// package, widened from float32 to the float64 precision the sketch
// pipeline's fit kernels require.
package affine

import (
	"math"

	"sketchpath.dev/bezier"
)

// Aff3 is a 2x3 affine matrix in row-major order:
//
//	x' = x*m[0] + y*m[1] + m[2]
//	y' = x*m[3] + y*m[4] + m[5]
type Aff3 [6]float64

// Identity is the affine identity transform.
var Identity = Aff3{
	1, 0, 0,
	0, 1, 0,
}

func mul(a, b Aff3) (r Aff3) {
	r[0] = a[0]*b[0] + a[1]*b[3]
	r[1] = a[0]*b[1] + a[1]*b[4]
	r[2] = a[0]*b[2] + a[1]*b[5] + a[2]
	r[3] = a[3]*b[0] + a[4]*b[3]
	r[4] = a[3]*b[1] + a[4]*b[4]
	r[5] = a[3]*b[2] + a[4]*b[5] + a[5]
	return r
}

// Mul composes a list of affine transforms, applied right to left (Mul(A,
// B) transforms a point by B, then by A), matching standard matrix
// multiplication order: Mul(A, B).Transform(p) == A.Transform(B.Transform(p)).
func Mul(m ...Aff3) (r Aff3) {
	if len(m) == 0 {
		return Identity
	}
	r = m[0]
	for i := 1; i < len(m); i++ {
		r = mul(r, m[i])
	}
	return r
}

// Offsetting returns the transform that translates by p.
func Offsetting(p bezier.Point) Aff3 {
	return Aff3{
		1, 0, p.X,
		0, 1, p.Y,
	}
}

// Scaling returns the transform that scales each axis independently.
func Scaling(s bezier.Point) Aff3 {
	return Aff3{
		s.X, 0, 0,
		0, s.Y, 0,
	}
}

// Rotating returns the transform that rotates by radians around the
// origin.
func Rotating(radians float64) Aff3 {
	s, c := math.Sincos(radians)
	return Aff3{
		c, -s, 0,
		s, c, 0,
	}
}

// Transform applies m to p.
func (m Aff3) Transform(p bezier.Point) bezier.Point {
	return bezier.Point{
		X: p.X*m[0] + p.Y*m[1] + m[2],
		Y: p.X*m[3] + p.Y*m[4] + m[5],
	}
}

// Determinant returns the determinant of the linear part of m.
func (m Aff3) Determinant() float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// Invert returns the inverse of m. Panics if m is singular; callers that
// build m themselves (as every caller in this module does) are expected to
// never pass a singular transform.
func (m Aff3) Invert() Aff3 {
	det := m.Determinant()
	if det == 0 {
		panic("affine: singular matrix")
	}
	inv := 1 / det
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	return Aff3{
		e * inv, -b * inv, (b*f - c*e) * inv,
		-d * inv, a * inv, (c*d - a*f) * inv,
	}
}
