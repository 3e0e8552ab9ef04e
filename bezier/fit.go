package bezier

import "math"

// FitBuffer is reusable scratch state for repeated calls to QuadraticFit
// within a single pass update: positions and params are sized once and
// reused across the fixed number of refinement iterations, so the fit
// routines below never allocate internally (design note: "Fit kernels on
// span-like inputs").
type FitBuffer struct {
	Positions []Point
	Params    []float64
}

// reset resizes buf to hold n samples without reallocating when capacity
// already suffices.
func (buf *FitBuffer) reset(n int) {
	if cap(buf.Positions) < n {
		buf.Positions = make([]Point, n)
		buf.Params = make([]float64, n)
	} else {
		buf.Positions = buf.Positions[:n]
		buf.Params = buf.Params[:n]
	}
}

// FitFixedEndpoints finds the control point B1 minimizing
// E = Σ ‖B(u_i) - P_i‖² given fixed B0, B2 and the parameters u (spec
// §4.B.1). Degenerate cases (n <= 2, non-positive denominator) return the
// line-segment Bézier through B0 and B2.
func FitFixedEndpoints(positions []Point, u []float64, b0, b2 Point) Quadratic {
	n := len(positions)
	if n <= 2 {
		return Line(b0, b2)
	}
	var num Point
	var den float64
	for i := 0; i < n; i++ {
		ui := u[i]
		a0 := (1 - ui) * (1 - ui)
		a1 := 2 * (1 - ui) * ui
		a2 := ui * ui
		residual := positions[i].Sub(b0.Mul(a0)).Sub(b2.Mul(a2))
		num = num.Add(residual.Mul(a1))
		den += a1 * a1
	}
	if den <= 0 {
		return Line(b0, b2)
	}
	b1 := num.Div(den)
	return Quadratic{B0: b0, B1: b1, B2: b2}
}

// FitFixedEndpointsTangent finds B1 = B0 + a*T minimizing the same error as
// FitFixedEndpoints, with B1 constrained to lie on the ray from B0 along
// tangent T (spec §4.B.2).
func FitFixedEndpointsTangent(positions []Point, u []float64, b0, b2, tangent Point) Quadratic {
	n := len(positions)
	if n <= 2 {
		return fitFixedEndpointsTangentN2(b0, b2, tangent)
	}
	tLenSq := tangent.LenSq()
	if tLenSq == 0 {
		return Line(b0, b2)
	}
	var num, den float64
	for i := 0; i < n; i++ {
		ui := u[i]
		a0 := (1 - ui) * (1 - ui)
		a1 := 2 * (1 - ui) * ui
		a2 := ui * ui
		residual := positions[i].Sub(b0.Mul(a0 + a1)).Sub(b2.Mul(a2))
		num += residual.Dot(tangent) * a1
		den += a1 * a1 * tLenSq
	}
	a := resolveTangentScale(num, den, b0, b2, tangent)
	return Quadratic{B0: b0, B1: b0.Add(tangent.Mul(a)), B2: b2}
}

// fitFixedEndpointsTangentN2 is the dedicated n=2 branch kept separate from
// the general loop above, per original_source's
// quadraticFitWithFixedEndpointsAndStartTangent_n2: with exactly the two
// endpoint samples, a is chosen so B1 lies on the perpendicular bisector of
// B0B2 along T.
func fitFixedEndpointsTangentN2(b0, b2, tangent Point) Quadratic {
	chord := b2.Sub(b0)
	tLenSq := tangent.LenSq()
	if tLenSq == 0 {
		return Line(b0, b2)
	}
	// B1 on the perpendicular bisector: (B0 + a*T - mid) . chord = 0.
	mid := Lerp(b0, b2, 0.5)
	num := mid.Sub(b0).Dot(chord)
	den := tangent.Dot(chord)
	var a float64
	if den != 0 {
		a = num / den
	}
	a = clampTangentScale(a, b0, b2, tangent)
	return Quadratic{B0: b0, B1: b0.Add(tangent.Mul(a)), B2: b2}
}

// resolveTangentScale applies the capping/substitution rules of spec
// §4.B.2 to the natural least-squares solution num/den.
func resolveTangentScale(num, den float64, b0, b2, tangent Point) float64 {
	var a float64
	if den != 0 {
		a = num / den
	}
	return clampTangentScale(a, b0, b2, tangent)
}

// clampTangentScale enforces 0 < ‖aT‖ <= ‖B2-B0‖ per spec §4.B.2: if the
// natural a would explode or go backwards (a <= 0), substitute a small
// positive value that keeps G¹-continuity with the previous Bézier; cap a
// from above so B1 never overshoots past B2.
func clampTangentScale(a float64, b0, b2, tangent Point) float64 {
	chordLenSq := b2.Sub(b0).LenSq()
	tLenSq := tangent.LenSq()
	if tLenSq == 0 {
		return 0
	}
	maxA := chordLenSq / tLenSq
	if a <= 0 {
		a = 0.1 * maxA
	}
	if a*a*tLenSq > chordLenSq {
		a = maxA
	}
	return a
}

// RefineParams updates each interior u_i in place to the parameter
// minimizing ‖B(u)-P_i‖, using the closed-form cubic-root selection of
// spec §4.B.3 rather than blind Newton iteration (design note §9).
func RefineParams(q Quadratic, positions []Point, u []float64) {
	if q.IsDegenerateLine(1e-12) {
		refineParamsLinear(q, positions, u)
		return
	}
	a := q.B0.Sub(q.B1.Mul(2)).Add(q.B2) // half of B''
	b := q.B1.Sub(q.B0)

	aa := a.Dot(a)
	if aa == 0 {
		refineParamsLinear(q, positions, u)
		return
	}
	ab := a.Dot(b)
	uStar := -ab / (2 * aa)

	n := len(u)
	for i := 1; i < n-1; i++ {
		u[i] = refineOne(a, b, q, positions[i], uStar, aa, u[i])
	}
}

// refineOne solves for the optimal parameter of a single sample P against
// the fixed Bézier q, following spec §4.B.3 exactly:
//  1. u* is independent of P (passed in).
//  2. Discriminant D of f'(u) depends on P through (c - P)·a.
//  3. D <= 0: f monotone, Newton from u*∓1 depending on sign of f(u*).
//     D  > 0: two extrema at u* ∓ sqrt(D)/(12 aa); pick the stable interval.
//  4. Newton-iterate (<=32 steps, tolerance 1e-8) from the chosen start.
func refineOne(a, b Point, q Quadratic, p Point, uStar, aa float64, current float64) float64 {
	c := q.B0
	f := func(u float64) float64 {
		return q.Eval(u).Sub(p).Dot(q.Deriv1(u))
	}

	capU := func(u float64) float64 {
		if u < 0 {
			u = 0
		} else if u > 1 {
			u = 1
		}
		return u
	}

	// D = D1 + D2 * (c-P)·a, with D1, D2 constants of the cubic whose
	// derivative is the quadratic f'(u) = 6aa u^2 + 6ab u + (2bb + 2(c-P)·a).
	cp := c.Sub(p).Dot(a)
	bb := b.Dot(b)
	ab := a.Dot(b)
	// f'(u) = 6aa*u^2 + 6ab*u + 2*(bb + cp); discriminant of that quadratic:
	D := 36*ab*ab - 24*aa*(bb+cp)

	var start float64
	switch {
	case D <= 0:
		fStar := f(uStar)
		switch {
		case fStar > 0:
			start = uStar - 1
		case fStar < 0:
			start = uStar + 1
		default:
			return capU(uStar)
		}
	default:
		half := math.Sqrt(D) / (12 * aa)
		lo, hi := uStar-half, uStar+half
		fLo, fHi := f(lo), f(hi)
		loStable := fLo <= 0
		hiStable := fHi >= 0
		switch {
		case loStable && !hiStable:
			start = lo
		case hiStable && !loStable:
			start = hi
		case loStable && hiStable:
			// Both contain a root: prefer the interval on the same side of
			// u* as the current parameter.
			if current <= uStar {
				start = lo
			} else {
				start = hi
			}
		default:
			start = uStar
		}
	}

	u := start
	const maxIter = 32
	for i := 0; i < maxIter; i++ {
		fu := f(u)
		dfu := 6*aa*u*u + 6*ab*u + 2*(bb+cp)
		if dfu == 0 {
			break
		}
		delta := fu / dfu
		u -= delta
		if math.Abs(delta) < 1e-8 {
			break
		}
	}
	return capU(u)
}

// refineParamsLinear handles the degenerate near-linear case: project each
// sample onto the chord B0-B2 (spec §4.B.3).
func refineParamsLinear(q Quadratic, positions []Point, u []float64) {
	if q.B2 == q.B0 {
		return
	}
	for i := 1; i < len(u)-1; i++ {
		u[i] = clamp01(ProjectOnSegment(positions[i], q.B0, q.B2))
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// QuadraticFit implements the combined fit of spec §4.B.4 over
// input[firstIndex:lastIndex+1]. s must hold the cumulative chord length
// of each input sample. If startTangent is non-nil, the fit preserves
// G¹-continuity with the preceding curve via FitFixedEndpointsTangent.
// Returns the fitted Bézier and the final per-sample parameters (sized
// lastIndex-firstIndex+1, buf.Params[0]=0, buf.Params[last]=1).
func QuadraticFit(buf *FitBuffer, positions []Point, s []float64, firstIndex, lastIndex int, startTangent *Point) (Quadratic, []float64) {
	n := lastIndex - firstIndex + 1
	if n <= 0 {
		panic("bezier: empty fit range")
	}
	if n == 1 {
		buf.reset(1)
		buf.Params[0] = 0
		return PointBezier(positions[firstIndex]), buf.Params
	}
	buf.reset(n)
	copy(buf.Positions, positions[firstIndex:lastIndex+1])

	sFirst, sLast := s[firstIndex], s[lastIndex]
	span := sLast - sFirst
	b0, b2 := buf.Positions[0], buf.Positions[n-1]
	if n <= 2 || span <= 0 {
		buf.Params[0] = 0
		buf.Params[n-1] = 1
		for i := 1; i < n-1; i++ {
			buf.Params[i] = clamp01((s[firstIndex+i] - sFirst) / maxFloat(span, 1))
		}
		return Line(b0, b2), buf.Params
	}

	for i := 0; i < n; i++ {
		buf.Params[i] = clamp01((s[firstIndex+i] - sFirst) / span)
	}
	buf.Params[0] = 0
	buf.Params[n-1] = 1

	var q Quadratic
	for iter := 0; iter < 4; iter++ {
		if startTangent != nil {
			q = FitFixedEndpointsTangent(buf.Positions, buf.Params, b0, b2, *startTangent)
		} else {
			q = FitFixedEndpoints(buf.Positions, buf.Params, b0, b2)
		}
		RefineParams(q, buf.Positions, buf.Params)
	}
	return q, buf.Params
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
