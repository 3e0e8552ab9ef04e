// Package stroke implements the interpolating stroke representation (spec
// component F) and the sculpt operations built on top of it (spec
// component G): the centerline curve the sketch pipeline ultimately
// produces knots for.
package stroke

import (
	"iter"
	"math"

	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
)

// Knot is one control point of an interpolating stroke: a 2D position
// with a width.
type Knot struct {
	Position bezier.Point
	Width    float64
}

// CurveParameter locates a point along a Stroke by segment index and the
// local parameter u within that segment.
type CurveParameter struct {
	Segment int
	U       float64
}

// StrokeSample is one adaptively-sampled point along a Stroke, as
// produced by SampleRange. HalfWidth is half the interpolated knot width.
type StrokeSample struct {
	Position  bezier.Point
	Normal    bezier.Point
	HalfWidth float64
	S         float64
}

// Stroke is a Catmull-Rom-style interpolating curve through an ordered
// sequence of knots. It exclusively owns its knot storage; the derived
// arclength cache is refreshed lazily, guarded by a dirty flag (design
// note §9, "Lazy derived cache").
type Stroke struct {
	positions []bezier.Point
	widths    []float64
	constant  bool
	constantW float64
	closed    bool

	dirty  bool
	length float64
}

// New constructs an interpolating stroke from parallel position/width
// slices and a closed flag. The slices are copied.
func New(positions []bezier.Point, widths []float64, closed bool) *Stroke {
	s := &Stroke{
		positions: append([]bezier.Point(nil), positions...),
		widths:    append([]float64(nil), widths...),
		closed:    closed,
		dirty:     true,
	}
	return s
}

// NewConstantWidth constructs a stroke whose every knot shares width w.
func NewConstantWidth(positions []bezier.Point, w float64, closed bool) *Stroke {
	return &Stroke{
		positions: append([]bezier.Point(nil), positions...),
		constant:  true,
		constantW: w,
		closed:    closed,
		dirty:     true,
	}
}

// NumKnots returns the number of knots.
func (s *Stroke) NumKnots() int { return len(s.positions) }

// IsClosed reports whether the stroke wraps around.
func (s *Stroke) IsClosed() bool { return s.closed }

// NumSegments returns the number of interpolated segments between knots.
func (s *Stroke) NumSegments() int {
	n := len(s.positions)
	if n < 2 {
		return 0
	}
	if s.closed {
		return n
	}
	return n - 1
}

// EndPositions returns the position of the first and last knot. Panics if
// the stroke has no knots (programmer error).
func (s *Stroke) EndPositions() (first, last bezier.Point) {
	return s.positions[0], s.positions[len(s.positions)-1]
}

// Positions returns the stroke's knot positions. Callers must not retain
// the slice across a mutating call.
func (s *Stroke) Positions() []bezier.Point { return s.positions }

// Widths returns the effective width of every knot, expanding a
// constant-width stroke into a same-valued slice.
func (s *Stroke) Widths() []float64 {
	if !s.constant {
		return s.widths
	}
	out := make([]float64, len(s.positions))
	for i := range out {
		out[i] = s.constantW
	}
	return out
}

// widthAt returns the width of knot i.
func (s *Stroke) widthAt(i int) float64 {
	if s.constant {
		return s.constantW
	}
	return s.widths[i]
}

// Knots iterates every knot in order.
func (s *Stroke) Knots() iter.Seq[Knot] {
	return func(yield func(Knot) bool) {
		for i, p := range s.positions {
			if !yield(Knot{Position: p, Width: s.widthAt(i)}) {
				return
			}
		}
	}
}

// knotIndex resolves logical stencil index i (which may be negative or
// beyond NumKnots) to an actual knot index, wrapping on closed strokes and
// clamping (duplicating the boundary knot) on open ones. Clamping makes
// the duplicated boundary knot coincide exactly with its neighbour, so the
// chord to it is naturally zero-length (spec §4.D "zero-length closure
// chord convention").
func (s *Stroke) knotIndex(i int) int {
	n := len(s.positions)
	if s.closed {
		return ((i % n) + n) % n
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (s *Stroke) positionAt(i int) bezier.Point { return s.positions[s.knotIndex(i)] }
func (s *Stroke) widthIndexed(i int) float64    { return s.widthAt(s.knotIndex(i)) }

// hermiteTangent computes a non-uniform Catmull-Rom tangent at the knot
// shared by chords (p0,p1) of length d01 and (p1,p2) of length d12.
func hermiteTangent(p0, p1, p2 bezier.Point, d01, d12 float64) bezier.Point {
	if d01+d12 == 0 {
		return bezier.Point{}
	}
	return p2.Sub(p0).Mul(d12 / (d01 + d12))
}

func hermiteTangentScalar(w0, w1, w2, d01, d12 float64) float64 {
	if d01+d12 == 0 {
		return 0
	}
	return (w2 - w0) * (d12 / (d01 + d12))
}

// segmentStencil returns the four knots and the three chord lengths
// bracketing segment i (from knot i to knot i+1).
func (s *Stroke) segmentStencil(i int) (p0, p1, p2, p3 bezier.Point, w0, w1, w2, w3, d01, d12, d23 float64) {
	p0, p1, p2, p3 = s.positionAt(i-1), s.positionAt(i), s.positionAt(i+1), s.positionAt(i+2)
	w0, w1, w2, w3 = s.widthIndexed(i-1), s.widthIndexed(i), s.widthIndexed(i+1), s.widthIndexed(i+2)
	d01 = p1.Sub(p0).Len()
	d12 = p2.Sub(p1).Len()
	d23 = p3.Sub(p2).Len()
	return
}

// Eval evaluates segment i at parameter u in [0,1], returning the
// position and the interpolated knot width.
func (s *Stroke) Eval(cp CurveParameter) (bezier.Point, float64) {
	p0, p1, p2, p3, w0, w1, w2, w3, d01, d12, d23 := s.segmentStencil(cp.Segment)
	u := cp.U

	t1 := hermiteTangent(p0, p1, p2, d01, d12)
	t2 := hermiteTangent(p1, p2, p3, d12, d23)
	tw1 := hermiteTangentScalar(w0, w1, w2, d01, d12)
	tw2 := hermiteTangentScalar(w1, w2, w3, d12, d23)

	uu := u * u
	uuu := uu * u
	h00 := 2*uuu - 3*uu + 1
	h10 := uuu - 2*uu + u
	h01 := -2*uuu + 3*uu
	h11 := uuu - uu

	pos := p1.Mul(h00).Add(t1.Mul(h10)).Add(p2.Mul(h01)).Add(t2.Mul(h11))
	width := h00*w1 + h10*tw1 + h01*w2 + h11*tw2
	return pos, width
}

// Tangent returns the (unnormalized) derivative of segment i at u.
func (s *Stroke) Tangent(cp CurveParameter) bezier.Point {
	p0, p1, p2, p3, _, _, _, _, d01, d12, d23 := s.segmentStencil(cp.Segment)
	u := cp.U
	t1 := hermiteTangent(p0, p1, p2, d01, d12)
	t2 := hermiteTangent(p1, p2, p3, d12, d23)

	uu := u * u
	dh00 := 6*uu - 6*u
	dh10 := 3*uu - 4*u + 1
	dh01 := -6*uu + 6*u
	dh11 := 3*uu - 2*u

	return p1.Mul(dh00).Add(t1.Mul(dh10)).Add(p2.Mul(dh01)).Add(t2.Mul(dh11))
}

// ensureCache recomputes the arclength cache if dirty.
func (s *Stroke) ensureCache() {
	if !s.dirty {
		return
	}
	var length float64
	for i := 0; i < s.NumSegments(); i++ {
		length += s.chordLengthApprox(i)
	}
	s.length = length
	s.dirty = false
}

// chordLengthApprox approximates a segment's arclength by sampling it at
// 16 uniform subdivisions (ample for sketch-sized strokes).
func (s *Stroke) chordLengthApprox(segIdx int) float64 {
	const steps = 16
	prev, _ := s.Eval(CurveParameter{Segment: segIdx, U: 0})
	var total float64
	for k := 1; k <= steps; k++ {
		u := float64(k) / steps
		p, _ := s.Eval(CurveParameter{Segment: segIdx, U: u})
		total += p.Sub(prev).Len()
		prev = p
	}
	return total
}

// ApproximateLength returns the cached arclength of the curve, summed over
// 16 straight steps per segment. It is not the sum of the knot-to-knot
// chord lengths.
func (s *Stroke) ApproximateLength() float64 {
	s.ensureCache()
	return s.length
}

func (s *Stroke) invalidate() { s.dirty = true }

// SampleRange generates StrokeSamples covering numSegments segments
// starting at startSegment, at the given quality (subdivisions per
// segment, minimum 1). If computeArclength is true, each sample's S field
// holds the cumulative arclength from the first sample.
func (s *Stroke) SampleRange(quality, startSegment, numSegments int, computeArclength bool) []StrokeSample {
	if quality < 1 {
		quality = 1
	}
	var out []StrokeSample
	var s0 float64
	var prev bezier.Point
	havePrev := false
	for seg := startSegment; seg < startSegment+numSegments; seg++ {
		for k := 0; k <= quality; k++ {
			if seg > startSegment && k == 0 {
				continue // shared boundary with previous segment's last sample
			}
			u := float64(k) / float64(quality)
			pos, width := s.Eval(CurveParameter{Segment: seg, U: u})
			tangent := s.Tangent(CurveParameter{Segment: seg, U: u})
			normal := bezier.Point{}
			if tangent.LenSq() > 0 {
				normal = tangent.Normalized().Rot90CCW()
			}
			if computeArclength {
				if havePrev {
					s0 += pos.Sub(prev).Len()
				}
				prev, havePrev = pos, true
			}
			out = append(out, StrokeSample{Position: pos, Normal: normal, HalfWidth: width / 2, S: s0})
		}
	}
	return out
}

// SetPositions replaces the positions of every knot; len(p) must equal
// NumKnots.
func (s *Stroke) SetPositions(p []bezier.Point) {
	if len(p) != len(s.positions) {
		panic("stroke: SetPositions length mismatch")
	}
	copy(s.positions, p)
	s.invalidate()
}

// SetWidths replaces the per-knot widths, switching off constant-width
// mode; len(w) must equal NumKnots.
func (s *Stroke) SetWidths(w []float64) {
	if len(w) != len(s.positions) {
		panic("stroke: SetWidths length mismatch")
	}
	s.constant = false
	s.widths = append(s.widths[:0], w...)
	s.invalidate()
}

// SetConstantWidth switches every knot to share width w.
func (s *Stroke) SetConstantWidth(w float64) {
	s.constant = true
	s.constantW = w
	s.widths = nil
	s.invalidate()
}

// Reverse reverses the knot order in place.
func (s *Stroke) Reverse() {
	for i, j := 0, len(s.positions)-1; i < j; i, j = i+1, j-1 {
		s.positions[i], s.positions[j] = s.positions[j], s.positions[i]
	}
	if !s.constant {
		for i, j := 0, len(s.widths)-1; i < j; i, j = i+1, j-1 {
			s.widths[i], s.widths[j] = s.widths[j], s.widths[i]
		}
	}
	s.invalidate()
}

// Close marks the stroke closed. If smoothJoin and the first and last
// knots coincide, the duplicate last knot is dropped.
func (s *Stroke) Close(smoothJoin bool) {
	n := len(s.positions)
	if smoothJoin && n > 1 && s.positions[0] == s.positions[n-1] {
		s.positions = s.positions[:n-1]
		if !s.constant {
			s.widths = s.widths[:n-1]
		}
	}
	s.closed = true
	s.invalidate()
}

// Open marks the stroke open. If keepJoin, a copy of the first knot is
// appended so the curve still passes through the former join point.
func (s *Stroke) Open(keepJoin bool) {
	if keepJoin {
		s.positions = append(s.positions, s.positions[0])
		if !s.constant {
			s.widths = append(s.widths, s.widths[0])
		}
	}
	s.closed = false
	s.invalidate()
}

// Translate adds v to every knot position.
func (s *Stroke) Translate(v bezier.Point) {
	for i := range s.positions {
		s.positions[i] = s.positions[i].Add(v)
	}
	s.invalidate()
}

// Transform applies an affine transform to every knot position.
func (s *Stroke) Transform(m affine.Aff3) {
	for i := range s.positions {
		s.positions[i] = m.Transform(s.positions[i])
	}
	s.invalidate()
}

// SubStroke extracts the sub-curve from p1 to p2, going forward and
// wrapping numWraps times on a closed stroke (spec §4.D subStroke).
func (s *Stroke) SubStroke(p1, p2 CurveParameter, numWraps int) *Stroke {
	startPos, startW := s.Eval(p1)
	endPos, endW := s.Eval(p2)

	if p1.Segment == p2.Segment && math.Abs(p1.U-p2.U) < 1e-12 && numWraps == 0 {
		return New([]bezier.Point{startPos}, []float64{startW}, false)
	}

	var positions []bezier.Point
	var widths []float64
	positions = append(positions, startPos)
	widths = append(widths, startW)

	appendRange := func(fromSeg, toSeg int) {
		for k := fromSeg; k <= toSeg; k++ {
			idx := s.knotIndex(k)
			positions = append(positions, s.positions[idx])
			widths = append(widths, s.widthAt(idx))
		}
	}

	switch {
	case p1.Segment < p2.Segment || (p1.Segment == p2.Segment && p1.U <= p2.U):
		if numWraps == 0 {
			appendRange(p1.Segment+1, p2.Segment)
		} else {
			appendRange(p1.Segment+1, s.NumSegments()-1)
			for lap := 0; lap < numWraps-1; lap++ {
				appendRange(0, s.NumSegments()-1)
			}
			appendRange(0, p2.Segment)
		}
	default:
		appendRange(p1.Segment+1, s.NumSegments()-1)
		for lap := 0; lap < numWraps; lap++ {
			appendRange(0, s.NumSegments()-1)
		}
		appendRange(0, p2.Segment)
	}

	positions = append(positions, endPos)
	widths = append(widths, endW)
	return New(positions, widths, false)
}

// AssignFromConcat concatenates a and b (each optionally reversed) into a
// new open stroke, dropping the duplicate knot at the join when smoothJoin
// is set and the end of a coincides with the start of b (spec §4.D
// assignFromConcat).
func AssignFromConcat(a *Stroke, dirA bool, b *Stroke, dirB bool, smoothJoin bool) *Stroke {
	aPos := append([]bezier.Point(nil), a.positions...)
	aW := append([]float64(nil), a.Widths()...)
	if !dirA {
		reversePoints(aPos)
		reverseFloats(aW)
	}
	bPos := append([]bezier.Point(nil), b.positions...)
	bW := append([]float64(nil), b.Widths()...)
	if !dirB {
		reversePoints(bPos)
		reverseFloats(bW)
	}

	if smoothJoin && len(aPos) > 0 && len(bPos) > 0 && aPos[len(aPos)-1] == bPos[0] {
		bPos = bPos[1:]
		bW = bW[1:]
	}

	positions := append(aPos, bPos...)
	widths := append(aW, bW...)

	if a.constant && b.constant && a.constantW == b.constantW {
		return NewConstantWidth(positions, a.constantW, false)
	}
	return New(positions, widths, false)
}

func reversePoints(p []bezier.Point) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

func reverseFloats(w []float64) {
	for i, j := 0, len(w)-1; i < j; i, j = i+1, j-1 {
		w[i], w[j] = w[j], w[i]
	}
}

// SnapMode selects how Snap redistributes the correction between the two
// endpoints.
type SnapMode int

const (
	// LinearInArclength interpolates the correction linearly in
	// arclength between the two endpoints.
	LinearInArclength SnapMode = iota
)

// Snap translates/warps the stroke so its first and last knot land on
// aStart and aEnd. Returns false (no-op) if both endpoints already match.
func (s *Stroke) Snap(aStart, aEnd bezier.Point, mode SnapMode) bool {
	n := len(s.positions)
	if n == 0 {
		return false
	}
	first, last := s.positions[0], s.positions[n-1]
	if first == aStart && last == aEnd {
		return false
	}
	d1 := aStart.Sub(first)
	d2 := aEnd.Sub(last)

	switch n {
	case 1:
		s.positions[0] = bezier.Lerp(aStart, aEnd, 0.5)
	case 2:
		s.positions[0] = aStart
		s.positions[1] = aEnd
	default:
		sAcc := make([]float64, n)
		for i := 1; i < n; i++ {
			sAcc[i] = sAcc[i-1] + s.positions[i].Sub(s.positions[i-1]).Len()
		}
		sLast := sAcc[n-1]
		for i := 0; i < n; i++ {
			var t float64
			if sLast > 0 {
				t = sAcc[i] / sLast
			}
			s.positions[i] = s.positions[i].Add(d1).Add(d2.Sub(d1).Mul(t))
		}
	}
	s.invalidate()
	return true
}
