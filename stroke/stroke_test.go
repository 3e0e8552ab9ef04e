package stroke

import (
	"math"
	"testing"

	"sketchpath.dev/bezier"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestReverseInvolution(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(1, 2), Pt(3, 1), Pt(4, 4)}
	s := New(positions, []float64{1, 1, 1, 1}, false)
	s.Reverse()
	s.Reverse()
	for i, p := range s.Positions() {
		if p != positions[i] {
			t.Errorf("positions[%d] = %v, want %v", i, p, positions[i])
		}
	}
}

func Pt(x, y float64) bezier.Point { return bezier.Pt(x, y) }

func TestCloseOpenRestoresKnotCount(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(5, 0), Pt(5, 5), Pt(0, 0)}
	s := NewConstantWidth(positions, 1, false)
	before := s.NumKnots()
	s.Close(true)
	if s.NumKnots() != before-1 {
		t.Fatalf("Close(true) NumKnots = %d, want %d", s.NumKnots(), before-1)
	}
	if !s.IsClosed() {
		t.Fatalf("Close(true) did not mark stroke closed")
	}
	s.Open(true)
	if s.NumKnots() != before {
		t.Fatalf("Open(true) NumKnots = %d, want %d", s.NumKnots(), before)
	}
	if s.IsClosed() {
		t.Fatalf("Open(true) left stroke closed")
	}
}

// Seed test 3: closed triangle (0,0),(10,0),(5,8), constant width 2.
func TestClosedTriangleReverseLeavesLengthUnchanged(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(10, 0), Pt(5, 8)}
	s := NewConstantWidth(positions, 2, true)
	length := s.ApproximateLength()
	if length <= 0 {
		t.Fatalf("ApproximateLength = %v, want positive", length)
	}
	chordSum := 10 + 2*math.Hypot(5, 8)
	if !near(length, chordSum, chordSum*0.35) {
		t.Errorf("ApproximateLength = %v, want close to chord sum %v", length, chordSum)
	}

	s.Reverse()
	want := []bezier.Point{Pt(5, 8), Pt(10, 0), Pt(0, 0)}
	for i, p := range s.Positions() {
		if p != want[i] {
			t.Errorf("reversed positions[%d] = %v, want %v", i, p, want[i])
		}
	}
	reversedLength := s.ApproximateLength()
	if !near(reversedLength, length, 1e-6) {
		t.Errorf("ApproximateLength after reverse = %v, want %v", reversedLength, length)
	}
}

func TestSnapPlacesEndpoints(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(3, 0)}
	s := NewConstantWidth(positions, 1, false)
	aStart, aEnd := Pt(0, 1), Pt(3, -1)
	changed := s.Snap(aStart, aEnd, LinearInArclength)
	if !changed {
		t.Fatalf("Snap reported no-op, want a change")
	}
	first, last := s.EndPositions()
	if first != aStart {
		t.Errorf("first = %v, want %v", first, aStart)
	}
	if last != aEnd {
		t.Errorf("last = %v, want %v", last, aEnd)
	}
}

func TestSnapNoOpWhenAlreadyMatching(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(1, 0), Pt(2, 0)}
	s := NewConstantWidth(positions, 1, false)
	first, last := s.EndPositions()
	if s.Snap(first, last, LinearInArclength) {
		t.Errorf("Snap reported a change when endpoints already matched")
	}
}

// Seed test 4: sculpt grab on a straight stroke of 11 equally spaced knots.
func TestGrabStraightStroke(t *testing.T) {
	positions := make([]bezier.Point, 11)
	for i := range positions {
		positions[i] = Pt(float64(i), 0)
	}
	s := NewConstantWidth(positions, 1, false)
	s.Grab(Pt(5, 0), Pt(5, 1), 3, 0.05)

	knots := s.Positions()
	var center bezier.Point
	found := false
	for _, p := range knots {
		if near(p.X, 5, 0.25) {
			center = p
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no knot found near x=5 after grab: %v", knots)
	}
	if center.Y < 0.5 {
		t.Errorf("center knot y = %v after grab, want close to 1", center.Y)
	}

	var edge bezier.Point
	found = false
	for _, p := range knots {
		if near(p.X, 2, 0.25) {
			edge = p
			found = true
			break
		}
	}
	if found && math.Abs(edge.Y) > 1e-6 {
		t.Errorf("knot at radius boundary (x=2) moved: y = %v, want 0", edge.Y)
	}
}

func TestGrabIdentityWhenEqual(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(3, 0), Pt(4, 0)}
	s := NewConstantWidth(positions, 1, false)
	s.Grab(Pt(2, 0), Pt(2, 0), 1, 0.05)
	got := s.Positions()
	if len(got) != len(positions) {
		t.Fatalf("knot count changed: %d vs %d", len(got), len(positions))
	}
	for i, p := range got {
		if p != positions[i] {
			t.Errorf("positions[%d] = %v, want unchanged %v", i, p, positions[i])
		}
	}
}

// Seed test 5: sculpt width with delta=0.5, radius=2, uniform width-1 stroke.
func TestWidthIncreaseBoundedByDelta(t *testing.T) {
	positions := make([]bezier.Point, 9)
	for i := range positions {
		positions[i] = Pt(float64(i), 0)
	}
	s := NewConstantWidth(positions, 1, false)
	s.Width(Pt(4, 0), 0.5, 2)

	widths := s.Widths()
	for i, w := range widths {
		if w < 1-1e-9 {
			t.Errorf("width[%d] = %v decreased below base width", i, w)
		}
		if w > 1+1+1e-6 {
			t.Errorf("width[%d] = %v, exceeds base+2*delta bound", i, w)
		}
	}
}

func TestWidthZeroDeltaNoOpOnExistingKnots(t *testing.T) {
	positions := make([]bezier.Point, 5)
	for i := range positions {
		positions[i] = Pt(float64(i), 0)
	}
	s := NewConstantWidth(positions, 1, false)
	s.Width(Pt(2, 0), 0, 2)

	// Densification may insert new knots (and shift indices), but every
	// original knot position must keep its original width.
	newPositions, newWidths := s.Positions(), s.Widths()
	for _, orig := range positions {
		found := false
		for i, p := range newPositions {
			if p == orig {
				if !near(newWidths[i], 1, 1e-9) {
					t.Errorf("width at original knot %v changed with delta=0: %v", orig, newWidths[i])
				}
				found = true
				break
			}
		}
		if !found {
			t.Errorf("original knot %v missing after Width with delta=0", orig)
		}
	}
}

func TestEvalSegmentEndsMatchKnots(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(3, 0)}
	s := NewConstantWidth(positions, 1, false)
	p, w := s.Eval(CurveParameter{Segment: 1, U: 0})
	if p != positions[1] {
		t.Errorf("Eval at u=0 = %v, want knot %v", p, positions[1])
	}
	if w != 1 {
		t.Errorf("width at u=0 = %v, want 1", w)
	}
	p2, _ := s.Eval(CurveParameter{Segment: 1, U: 1})
	if p2 != positions[2] {
		t.Errorf("Eval at u=1 = %v, want knot %v", p2, positions[2])
	}
}

func TestNumSegmentsOpenVsClosed(t *testing.T) {
	positions := []bezier.Point{Pt(0, 0), Pt(1, 0), Pt(2, 0)}
	open := NewConstantWidth(positions, 1, false)
	if open.NumSegments() != 2 {
		t.Errorf("open NumSegments = %d, want 2", open.NumSegments())
	}
	closed := NewConstantWidth(positions, 1, true)
	if closed.NumSegments() != 3 {
		t.Errorf("closed NumSegments = %d, want 3", closed.NumSegments())
	}
}
