// Package bezier implements 2D vector arithmetic and the quadratic Bézier
// primitive the rest of the sketch pipeline is built on, plus the
// least-squares fit kernels used to produce such Béziers from sampled
// data.
package bezier

import "math"

// Point is a 2D point or vector in double precision.
type Point struct {
	X, Y float64
}

// Pt is a shorthand constructor.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Div divides p by s. Callers must ensure s != 0.
func (p Point) Div(s float64) Point { return Point{X: p.X / s, Y: p.Y / s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// PerpDot returns the 2D "cross product" p.X*q.Y - p.Y*q.X.
func (p Point) PerpDot(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// LenSq returns the squared Euclidean length of p, avoiding the sqrt.
func (p Point) LenSq() float64 { return p.X*p.X + p.Y*p.Y }

// Normalized returns p scaled to unit length. The zero vector is returned
// unchanged.
func (p Point) Normalized() Point {
	l := p.Len()
	if l == 0 {
		return p
	}
	return p.Div(l)
}

// Rot90CW maps (x, y) to (y, -x): a 90° clockwise rotation with the Y axis
// pointing up (on a Y-down screen the same map turns counter-clockwise).
func (p Point) Rot90CW() Point { return Point{X: p.Y, Y: -p.X} }

// Rot90CCW maps (x, y) to (-y, x): a 90° counter-clockwise rotation with
// the Y axis pointing up.
func (p Point) Rot90CCW() Point { return Point{X: -p.Y, Y: p.X} }

// Lerp linearly interpolates between p and q component-wise by t.
func Lerp(p, q Point, t float64) Point {
	return Point{
		X: (1-t)*p.X + t*q.X,
		Y: (1-t)*p.Y + t*q.Y,
	}
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return p.Sub(q).Len()
}
