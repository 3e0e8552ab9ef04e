package bezier

import (
	"math"
	"testing"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestLineEval(t *testing.T) {
	l := Line(Pt(0, 0), Pt(10, 0))
	for _, u := range []float64{0, 0.25, 0.5, 0.75, 1} {
		p := l.Eval(u)
		if !near(p.X, 10*u, 1e-9) || !near(p.Y, 0, 1e-9) {
			t.Errorf("Eval(%v) = %v, want (%v, 0)", u, p, 10*u)
		}
	}
}

func TestEvalEndpoints(t *testing.T) {
	q := Quadratic{B0: Pt(0, 0), B1: Pt(1, 2), B2: Pt(2, 0)}
	if p := q.Eval(0); p != q.B0 {
		t.Errorf("Eval(0) = %v, want B0 = %v", p, q.B0)
	}
	if p := q.Eval(1); p != q.B2 {
		t.Errorf("Eval(1) = %v, want B2 = %v", p, q.B2)
	}
}

func TestDeriv1Numeric(t *testing.T) {
	q := Quadratic{B0: Pt(0, 0), B1: Pt(1, 3), B2: Pt(4, 1)}
	const h = 1e-6
	for _, u := range []float64{0.1, 0.5, 0.9} {
		numeric := q.Eval(u + h).Sub(q.Eval(u - h)).Div(2 * h)
		analytic := q.Deriv1(u)
		if !near(numeric.X, analytic.X, 1e-3) || !near(numeric.Y, analytic.Y, 1e-3) {
			t.Errorf("u=%v: numeric deriv %v, analytic %v", u, numeric, analytic)
		}
	}
}

func TestDeriv2Constant(t *testing.T) {
	q := Quadratic{B0: Pt(0, 0), B1: Pt(1, 3), B2: Pt(4, 1)}
	d2 := q.Deriv2()
	const h = 1e-4
	numeric := q.Deriv1(0.5 + h).Sub(q.Deriv1(0.5 - h)).Div(2 * h)
	if !near(numeric.X, d2.X, 1e-2) || !near(numeric.Y, d2.Y, 1e-2) {
		t.Errorf("numeric second deriv %v, analytic %v", numeric, d2)
	}
}

func TestIsDegenerateLine(t *testing.T) {
	line := Line(Pt(0, 0), Pt(10, 0))
	if !line.IsDegenerateLine(1e-9) {
		t.Error("exact line should be degenerate")
	}
	curve := Quadratic{B0: Pt(0, 0), B1: Pt(5, 10), B2: Pt(10, 0)}
	if curve.IsDegenerateLine(1e-9) {
		t.Error("curved quadratic should not be degenerate")
	}
}

func TestFlatnessOfLineIsInf(t *testing.T) {
	line := Line(Pt(0, 0), Pt(10, 0))
	if !math.IsInf(line.Flatness(), 1) {
		t.Errorf("Flatness() of a line = %v, want +Inf", line.Flatness())
	}
}

func TestProjectOnSegment(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	u := ProjectOnSegment(Pt(5, 3), a, b)
	if !near(u, 0.5, 1e-9) {
		t.Errorf("ProjectOnSegment = %v, want 0.5", u)
	}
	if u := ProjectOnSegment(Pt(1, 1), a, a); u != 0 {
		t.Errorf("ProjectOnSegment with zero-length segment = %v, want 0", u)
	}
}
