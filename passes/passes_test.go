package passes

import (
	"math"
	"testing"

	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
	"sketchpath.dev/pipeline"
	"sketchpath.dev/sketchbuf"
)

func pushLine(buf *pipeline.Buffer, pts [][2]float64, width float64) {
	for _, p := range pts {
		buf.Append(sketchbuf.SketchPoint{Position: bezier.Pt(p[0], p[1]), Width: width})
	}
	buf.UpdateChordLengths()
	buf.SetNumStablePoints(buf.Len())
}

func TestSingleLineSegmentFixedEndpointsSeedScenario(t *testing.T) {
	var input, output pipeline.Buffer
	pushLine(&input, [][2]float64{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}, 1.0)

	var pass SingleLineSegmentWithFixedEndpointsPass
	pass.UpdateFrom(&input, &output)

	if output.Len() != 2 {
		t.Fatalf("output.Len() = %d, want 2", output.Len())
	}
	if got := output.At(0).Position; got != bezier.Pt(0, 0) {
		t.Errorf("output[0] = %v, want (0,0)", got)
	}
	if got := output.At(1).Position; got != bezier.Pt(4, 0) {
		t.Errorf("output[1] = %v, want (4,0)", got)
	}
	if output.NumStablePoints() != 1 {
		t.Errorf("NumStablePoints() = %d, want 1", output.NumStablePoints())
	}
}

func TestRightAngleCornerSmoothingThenSpline(t *testing.T) {
	var input, smoothed, spline pipeline.Buffer
	pushLine(&input, [][2]float64{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}, 1.0)

	var smoothing SmoothingPass
	smoothing.UpdateFrom(&input, &smoothed)

	splinePass := NewQuadraticSplinePass(DefaultSplineFitSettings())
	splinePass.UpdateFrom(&smoothed, &spline)

	if len(splinePass.segments) < 2 {
		t.Fatalf("got %d spline segments, want at least 2", len(splinePass.segments))
	}

	for i := 0; i < smoothed.Len(); i++ {
		p := smoothed.At(i).Position
		var minDist float64 = math.Inf(1)
		for _, seg := range splinePass.segments {
			for k := 0; k <= 32; k++ {
				u := float64(k) / 32
				d := seg.curve.Eval(u).Sub(p).Len()
				if d < minDist {
					minDist = d
				}
			}
		}
		if minDist > 0.5+1e-6 {
			t.Errorf("sample %d (%v) is %v from the nearest fitted curve, want <= 0.5", i, p, minDist)
		}
	}

	first, second := splinePass.segments[0], splinePass.segments[1]
	firstTangent := first.curve.B2.Sub(first.curve.B1)
	secondTangent := second.curve.B1.Sub(second.curve.B0)
	cross := firstTangent.X*secondTangent.Y - firstTangent.Y*secondTangent.X
	if math.Abs(cross) > 1e-6*firstTangent.Len()*secondTangent.Len()+1e-9 {
		t.Errorf("tangents not parallel at shared knot: %v vs %v", firstTangent, secondTangent)
	}
}

func TestQuadraticBlendParabolaSingleFit(t *testing.T) {
	var input, output pipeline.Buffer
	const n = 20
	pts := make([][2]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		pts[i] = [2]float64{x, x * x / 10}
	}
	pushLine(&input, pts, 1.0)

	blend := NewQuadraticBlendPass(DefaultBlendFitSettings())
	blend.UpdateFrom(&input, &output)

	if len(blend.fits) != 1 {
		t.Fatalf("got %d blend fits, want exactly 1 for an exactly-representable parabola", len(blend.fits))
	}
	if blend.fits[0].i1 != 0 || blend.fits[0].i2 != n-1 {
		t.Errorf("fit range = [%d,%d], want [0,%d]", blend.fits[0].i1, blend.fits[0].i2, n-1)
	}
}

func TestEmptyPassPassesThrough(t *testing.T) {
	var input, output pipeline.Buffer
	pushLine(&input, [][2]float64{{0, 0}, {1, 1}}, 2.0)

	var pass EmptyPass
	pass.UpdateFrom(&input, &output)

	if output.Len() != input.Len() {
		t.Fatalf("output.Len() = %d, want %d", output.Len(), input.Len())
	}
	if output.NumStablePoints() != input.NumStablePoints() {
		t.Errorf("stability not carried over: got %d, want %d", output.NumStablePoints(), input.NumStablePoints())
	}
}

func TestEveryPassEmptyInputProducesEmptyOutput(t *testing.T) {
	var input pipeline.Buffer
	passesToTest := []pipeline.Pass{
		&EmptyPass{},
		NewTransformPass(affine.Identity),
		&SmoothingPass{},
		NewDouglasPeuckerPass(0.1),
		&SingleLineSegmentWithFixedEndpointsPass{},
		&SingleLineSegmentWithFreeEndpointsPass{},
		&SingleQuadraticSegmentWithFixedEndpointsPass{},
		NewQuadraticSplinePass(DefaultSplineFitSettings()),
		NewQuadraticBlendPass(DefaultBlendFitSettings()),
	}
	for _, pass := range passesToTest {
		var output pipeline.Buffer
		pass.UpdateFrom(&input, &output)
		if output.Len() != 0 {
			t.Errorf("%T: empty input produced %d output points, want 0", pass, output.Len())
		}
	}
}
