package bezier

import (
	"math"
	"testing"
)

func TestFitFixedEndpointsExactLine(t *testing.T) {
	positions := make([]Point, 5)
	u := make([]float64, 5)
	for i := range positions {
		ui := float64(i) / 4
		positions[i] = Pt(10*ui, 0)
		u[i] = ui
	}
	q := FitFixedEndpoints(positions, u, positions[0], positions[4])
	if !near(q.B1.X, 5, 1e-9) || !near(q.B1.Y, 0, 1e-9) {
		t.Errorf("B1 = %v, want (5,0)", q.B1)
	}
}

func TestFitFixedEndpointsFewSamplesIsLine(t *testing.T) {
	b0, b2 := Pt(0, 0), Pt(4, 4)
	q := FitFixedEndpoints([]Point{b0, b2}, []float64{0, 1}, b0, b2)
	want := Line(b0, b2)
	if q.B1 != want.B1 {
		t.Errorf("B1 = %v, want %v", q.B1, want.B1)
	}
}

func TestFitFixedEndpointsTangentStaysOnRay(t *testing.T) {
	positions := []Point{Pt(0, 0), Pt(2, 1), Pt(5, 2), Pt(8, 1), Pt(10, 0)}
	u := []float64{0, 0.25, 0.5, 0.75, 1}
	tangent := Pt(1, 1)
	q := FitFixedEndpointsTangent(positions, u, positions[0], positions[4], tangent)
	dir := q.B1.Sub(q.B0)
	cross := dir.X*tangent.Y - dir.Y*tangent.X
	if !near(cross, 0, 1e-6) {
		t.Errorf("B1-B0 = %v not parallel to tangent %v", dir, tangent)
	}
	if dir.Dot(tangent) < 0 {
		t.Errorf("B1-B0 = %v points against tangent %v", dir, tangent)
	}
}

func TestClampTangentScaleNeverNegative(t *testing.T) {
	b0, b2 := Pt(0, 0), Pt(1, 0)
	a := clampTangentScale(-5, b0, b2, Pt(1, 0))
	if a <= 0 {
		t.Errorf("clampTangentScale returned non-positive a = %v", a)
	}
}

func TestClampTangentScaleCapsOvershoot(t *testing.T) {
	b0, b2 := Pt(0, 0), Pt(1, 0)
	a := clampTangentScale(1000, b0, b2, Pt(1, 0))
	chordLenSq := b2.Sub(b0).LenSq()
	if a*a > chordLenSq+1e-9 {
		t.Errorf("a=%v overshoots: a^2=%v > chordLenSq=%v", a, a*a, chordLenSq)
	}
}

func TestRefineParamsImprovesOrMaintainsFit(t *testing.T) {
	q := Quadratic{B0: Pt(0, 0), B1: Pt(5, 10), B2: Pt(10, 0)}
	positions := make([]Point, 9)
	u := make([]float64, 9)
	for i := range positions {
		ui := float64(i) / 8
		u[i] = ui
		positions[i] = q.Eval(ui).Add(Pt(0, 0.3))
	}
	errBefore := sumSqErr(q, positions, u)
	RefineParams(q, positions, u)
	errAfter := sumSqErr(q, positions, u)
	if errAfter > errBefore+1e-9 {
		t.Errorf("refinement made fit worse: before=%v after=%v", errBefore, errAfter)
	}
	if u[0] != 0 || u[len(u)-1] != 1 {
		t.Errorf("endpoints moved: u[0]=%v u[last]=%v", u[0], u[len(u)-1])
	}
}

func sumSqErr(q Quadratic, positions []Point, u []float64) float64 {
	var sum float64
	for i, p := range positions {
		sum += q.Eval(u[i]).Sub(p).LenSq()
	}
	return sum
}

func TestQuadraticFitSinglePoint(t *testing.T) {
	var buf FitBuffer
	positions := []Point{Pt(3, 4)}
	q, params := QuadraticFit(&buf, positions, []float64{0}, 0, 0, nil)
	if q.B0 != positions[0] || q.B1 != positions[0] || q.B2 != positions[0] {
		t.Errorf("single-point fit = %v, want degenerate point bezier", q)
	}
	if len(params) != 1 || params[0] != 0 {
		t.Errorf("params = %v, want [0]", params)
	}
}

func TestQuadraticFitConvergesOnParabola(t *testing.T) {
	var buf FitBuffer
	const n = 21
	positions := make([]Point, n)
	s := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		y := 0.1 * x * (20 - x)
		positions[i] = Pt(x, y)
		s[i] = x
	}
	q, params := QuadraticFit(&buf, positions, s, 0, n-1, nil)
	if len(params) != n {
		t.Fatalf("params len = %d, want %d", len(params), n)
	}
	var maxErr float64
	for i, p := range positions {
		d := q.Eval(params[i]).Sub(p).Len()
		if d > maxErr {
			maxErr = d
		}
	}
	if maxErr > 0.5 {
		t.Errorf("max fit error = %v, want small residual on a quadratic input", maxErr)
	}
}

func TestQuadraticFitZeroSpanIsLine(t *testing.T) {
	var buf FitBuffer
	positions := []Point{Pt(1, 1), Pt(1, 1), Pt(1, 1)}
	q, _ := QuadraticFit(&buf, positions, []float64{0, 0, 0}, 0, 2, nil)
	if q.B0 != positions[0] || q.B2 != positions[2] {
		t.Errorf("zero-span fit endpoints = %v/%v, want %v/%v", q.B0, q.B2, positions[0], positions[2])
	}
	if want := Line(positions[0], positions[2]); q.B1 != want.B1 {
		t.Errorf("zero-span fit B1 = %v, want line midpoint %v", q.B1, want.B1)
	}
}

func TestRefineOneStaysInBounds(t *testing.T) {
	q := Quadratic{B0: Pt(0, 0), B1: Pt(1, 5), B2: Pt(2, 0)}
	a := q.B0.Sub(q.B1.Mul(2)).Add(q.B2)
	b := q.B1.Sub(q.B0)
	aa := a.Dot(a)
	ab := a.Dot(b)
	uStar := -ab / (2 * aa)
	u := refineOne(a, b, q, Pt(100, 100), uStar, aa, 0.5)
	if u < 0 || u > 1 || math.IsNaN(u) {
		t.Errorf("refineOne returned out-of-range u = %v", u)
	}
}
