package bezier

import "math"

// Quadratic is the triple (B0, B1, B2) of a quadratic Bézier curve,
// evaluated as (1-u)^2 B0 + 2(1-u)u B1 + u^2 B2.
type Quadratic struct {
	B0, B1, B2 Point
}

// PointBezier returns the degenerate quadratic Bézier that is the single
// point p.
func PointBezier(p Point) Quadratic {
	return Quadratic{B0: p, B1: p, B2: p}
}

// Line returns the quadratic Bézier representing the straight segment from
// a to b, with the control point at the midpoint.
func Line(a, b Point) Quadratic {
	return Quadratic{B0: a, B1: Lerp(a, b, 0.5), B2: b}
}

// Eval evaluates the curve at parameter u.
func (q Quadratic) Eval(u float64) Point {
	t1 := 1 - u
	c0 := t1 * t1
	c1 := 2 * t1 * u
	c2 := u * u
	return q.B0.Mul(c0).Add(q.B1.Mul(c1)).Add(q.B2.Mul(c2))
}

// Deriv1 returns the first derivative B'(u) = 2(1-u)(B1-B0) + 2u(B2-B1).
func (q Quadratic) Deriv1(u float64) Point {
	d0 := q.B1.Sub(q.B0).Mul(2 * (1 - u))
	d1 := q.B2.Sub(q.B1).Mul(2 * u)
	return d0.Add(d1)
}

// Deriv2 returns the (constant) second derivative 2(B0 - 2B1 + B2).
func (q Quadratic) Deriv2() Point {
	return q.B0.Sub(q.B1.Mul(2)).Add(q.B2).Mul(2)
}

// IsDegenerateLine reports whether q is effectively a straight segment:
// ‖a‖² <= eps · ‖B2-B0‖², where a = B0 - 2B1 + B2 is (half) the second
// derivative. Used to special-case parameter refinement and flatness
// tests on nearly-linear fits.
func (q Quadratic) IsDegenerateLine(eps float64) bool {
	a := q.B0.Sub(q.B1.Mul(2)).Add(q.B2)
	chord := q.B2.Sub(q.B0)
	return a.LenSq() <= eps*chord.LenSq()
}

// Flatness returns ‖B2-B0‖ / ‖B''‖, a scalar measure of how close the curve
// is to a straight line (larger = flatter). Returns +Inf when the second
// derivative is zero (q is exactly linear).
func (q Quadratic) Flatness() float64 {
	d2 := q.Deriv2().Len()
	chord := q.B2.Sub(q.B0).Len()
	if d2 == 0 {
		return math.Inf(1)
	}
	return chord / d2
}

// ProjectOnSegment projects p orthogonally onto the segment a-b and returns
// the parameter t such that the projection equals Lerp(a, b, t). If a == b,
// t is 0.
func ProjectOnSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.LenSq()
	if l2 == 0 {
		return 0
	}
	return p.Sub(a).Dot(ab) / l2
}
