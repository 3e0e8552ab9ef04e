package stroke

import (
	"log"
	"math"
	"sort"

	"sketchpath.dev/bezier"
)

// SculptPoint is one resampled point of a SculptSampling.
type SculptPoint struct {
	Position bezier.Point
	Width    float64
	D        float64 // signed arclength offset from the sampling center
	S        float64 // arclength along the source stroke, wrapped for closed strokes
}

// SculptSampling is a uniform (or near-uniform) arclength resampling of a
// stroke around a cursor parameter, used by grab/width/smooth (spec §4.E
// "Sculpt sampling primitive").
type SculptSampling struct {
	Points                   []SculptPoint
	IsClosed                 bool
	IsRadiusOverlappingStart bool
	IsRadiusOverlappingEnd   bool
	SMiddle                  float64
	Radius                   float64
	// CappedRadii holds, per side, the requested radius reduced to fit
	// within the available arclength: CappedRadii[0] is the before/start
	// side, CappedRadii[1] the after/end side. On an open curve these cap
	// independently at each endpoint; on a closed curve both entries are
	// equal (capped at half the arclength on a near-full-loop grab).
	CappedRadii [2]float64
	Ds0         float64
	Ds1         float64
	// ClosestSculptPointIndex is the index within Points of the sample
	// closest to the cursor (D == 0).
	ClosestSculptPointIndex int
}

// easeInOut is the centered ease-in-out kernel w(u) = 3u^2 - 2u^3 used
// throughout sculpting, for u in [0,1].
func easeInOut(u float64) float64 {
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return 3*u*u - 2*u*u*u
}

func resampleAtS(samples []StrokeSample, s, arcLength float64, closed bool) (bezier.Point, float64) {
	if len(samples) == 0 {
		return bezier.Point{}, 0
	}
	if closed {
		s = math.Mod(s, arcLength)
		if s < 0 {
			s += arcLength
		}
	} else {
		if s < 0 {
			s = 0
		}
		if s > arcLength {
			s = arcLength
		}
	}
	i := sort.Search(len(samples), func(i int) bool { return samples[i].S >= s })
	switch {
	case i <= 0:
		return samples[0].Position, 2 * samples[0].HalfWidth
	case i >= len(samples):
		last := samples[len(samples)-1]
		return last.Position, 2 * last.HalfWidth
	default:
		a, b := samples[i-1], samples[i]
		t := fraction(a.S, b.S, s)
		return bezier.Lerp(a.Position, b.Position, t), 2 * ((1-t)*a.HalfWidth + t*b.HalfWidth)
	}
}

// computeSculptSampling implements spec §4.E's open- and closed-curve
// sampling schedules.
func computeSculptSampling(samples []StrokeSample, arcLength, sMiddle, radius, maxDs float64, isClosed, uniform bool) SculptSampling {
	if isClosed {
		return computeClosedSculptSampling(samples, arcLength, sMiddle, radius, maxDs)
	}
	return computeOpenSculptSampling(samples, arcLength, sMiddle, radius, maxDs, uniform)
}

func computeOpenSculptSampling(samples []StrokeSample, arcLength, sMiddle, radius, maxDs float64, uniform bool) SculptSampling {
	numSteps := int(math.Ceil(radius / maxDs))
	if numSteps < 1 {
		numSteps = 1
	}
	ds := radius / float64(numSteps)

	before := sMiddle
	after := arcLength - sMiddle

	isCappedBefore := radius >= before
	isCappedAfter := radius >= after

	numBefore := numSteps
	if isCappedBefore {
		numBefore = int(math.Floor(before / ds))
	}
	numAfter := numSteps
	if isCappedAfter {
		numAfter = int(math.Floor(after / ds))
	}

	cappedBefore := math.Min(before, radius)
	cappedAfter := math.Min(after, radius)

	ds0 := cappedBefore / float64(max(1, numBefore))
	ds1 := cappedAfter / float64(max(1, numAfter))

	if uniform {
		total := numBefore + numAfter
		if total > 0 {
			ds0 = (cappedBefore + cappedAfter) / float64(total)
			ds1 = ds0
			sMiddle = (sMiddle - cappedBefore) + ds0*float64(numBefore)
		}
	}

	sampling := SculptSampling{
		IsClosed:                 false,
		SMiddle:                  sMiddle,
		Radius:                   radius,
		CappedRadii:              [2]float64{cappedBefore, cappedAfter},
		Ds0:                      ds0,
		Ds1:                      ds1,
		IsRadiusOverlappingStart: isCappedBefore,
		IsRadiusOverlappingEnd:   isCappedAfter,
		ClosestSculptPointIndex:  numBefore,
	}
	for k := -numBefore; k <= numAfter; k++ {
		step := ds0
		if k > 0 {
			step = ds1
		}
		s := sMiddle + float64(k)*step
		pos, width := resampleAtS(samples, s, arcLength, false)
		sampling.Points = append(sampling.Points, SculptPoint{Position: pos, Width: width, D: float64(k) * step, S: s})
	}
	if len(sampling.Points) == 0 {
		log.Printf("stroke: sculpt sampling produced no points, falling back to s=0")
		pos, width := resampleAtS(samples, 0, arcLength, false)
		sampling.Points = []SculptPoint{{Position: pos, Width: width, D: 0, S: 0}}
		sampling.ClosestSculptPointIndex = 0
	}
	return sampling
}

func computeClosedSculptSampling(samples []StrokeSample, arcLength, sMiddle, radius, maxDs float64) SculptSampling {
	const eps = 1e-9
	if 2*radius+eps >= arcLength {
		halfLen := arcLength / 2
		numBefore := int(math.Ceil(halfLen / maxDs))
		if numBefore < 1 {
			numBefore = 1
		}
		numAfter := numBefore - 1
		ds := halfLen / float64(numBefore)
		sampling := SculptSampling{
			IsClosed:                 true,
			SMiddle:                  sMiddle,
			Radius:                   radius,
			CappedRadii:              [2]float64{halfLen, halfLen},
			Ds0:                      ds,
			Ds1:                      ds,
			IsRadiusOverlappingStart: true,
			IsRadiusOverlappingEnd:   true,
			ClosestSculptPointIndex:  numBefore,
		}
		for k := -numBefore; k <= numAfter; k++ {
			s := sMiddle + float64(k)*ds
			pos, width := resampleAtS(samples, s, arcLength, true)
			sampling.Points = append(sampling.Points, SculptPoint{Position: pos, Width: width, D: float64(k) * ds, S: math.Mod(s+arcLength, arcLength)})
		}
		duplicateClosedSculptPoint(&sampling)
		return sampling
	}

	numSteps := int(math.Ceil(radius / maxDs))
	if numSteps < 1 {
		numSteps = 1
	}
	ds := radius / float64(numSteps)
	overlaps := sMiddle-radius <= 0 || sMiddle+radius >= arcLength
	sampling := SculptSampling{
		IsClosed:                 true,
		SMiddle:                  sMiddle,
		Radius:                   radius,
		CappedRadii:              [2]float64{radius, radius},
		Ds0:                      ds,
		Ds1:                      ds,
		IsRadiusOverlappingStart: overlaps,
		IsRadiusOverlappingEnd:   overlaps,
		ClosestSculptPointIndex:  numSteps,
	}
	for k := -numSteps; k <= numSteps; k++ {
		s := sMiddle + float64(k)*ds
		pos, width := resampleAtS(samples, s, arcLength, true)
		sampling.Points = append(sampling.Points, SculptPoint{Position: pos, Width: width, D: float64(k) * ds, S: math.Mod(s+arcLength, arcLength)})
	}
	duplicateClosedSculptPoint(&sampling)
	return sampling
}

func duplicateClosedSculptPoint(sampling *SculptSampling) {
	if len(sampling.Points) == 0 {
		return
	}
	first := sampling.Points[0]
	sampling.Points = append(sampling.Points, first)
}

func closestSampleS(samples []StrokeSample, target bezier.Point) float64 {
	bestS := 0.0
	bestDist := math.Inf(1)
	for _, sm := range samples {
		d := sm.Position.Sub(target).LenSq()
		if d < bestDist {
			bestDist, bestS = d, sm.S
		}
	}
	return bestS
}

// grabOpen applies delta to sampling's points for an open curve, per
// original_source/libs/vgc/geometry/interpolatingstroke.cpp's sculptGrab_:
// each side's falloff is computed against the full requested radius, then
// remapped by wMin = easeInOut(1 - cappedRadius/radius) so that weight
// reaches exactly 0 (no movement) at a capped endpoint instead of
// asymptoting toward some nonzero floor.
func grabOpen(sampling SculptSampling, radius float64, delta bezier.Point) {
	cappedRadii := sampling.CappedRadii
	var uMins [2]float64
	if radius > 0 {
		uMins = [2]float64{1 - cappedRadii[0]/radius, 1 - cappedRadii[1]/radius}
	}
	wMins := [2]float64{easeInOut(uMins[0]), easeInOut(uMins[1])}

	for i, pt := range sampling.Points {
		var u, wMin float64
		switch {
		case pt.D < 0:
			wMin = wMins[0]
			if radius > 0 {
				u = 1 - (-pt.D)/radius
			}
		case pt.D > 0:
			wMin = wMins[1]
			if radius > 0 {
				u = 1 - pt.D/radius
			}
		default:
			u = 1
		}
		w := easeInOut(u)
		t := w
		if denom := 1 - wMin; denom > 1e-9 {
			t = (w - wMin) / denom
		}
		sampling.Points[i].Position = pt.Position.Add(delta.Mul(t))
	}
}

// grabClosed applies delta to sampling's points for a closed curve. The
// falloff is measured against cappedRadii[0] (equal to radius unless the
// grab overlaps the whole loop), then affinely remapped into [wMin, 1] so
// a near-full-loop grab never drops to zero movement at the far point,
// per the same original source.
func grabClosed(sampling SculptSampling, radius float64, delta bezier.Point) {
	cappedRadius := sampling.CappedRadii[0]
	uMin := 0.0
	if radius > 0 {
		uMin = 1 - cappedRadius/radius
	}
	wMin := easeInOut(uMin)

	for i, pt := range sampling.Points {
		u := 1.0
		switch {
		case pt.D < 0 && cappedRadius > 0:
			u = 1 - (-pt.D)/cappedRadius
		case pt.D > 0 && cappedRadius > 0:
			u = 1 - pt.D/cappedRadius
		}
		w := easeInOut(u)
		w = w*(1-wMin) + wMin
		sampling.Points[i].Position = pt.Position.Add(delta.Mul(w))
	}
}

// Grab implements spec §4.E grab: blends delta into sculpt-point positions
// under an ease-in-out kernel centered on the closest sample to aStart,
// then splices the filtered result back into the knot array.
func (s *Stroke) Grab(aStart, aEnd bezier.Point, radius, tolerance float64) {
	if aStart == aEnd {
		return
	}
	arcLength := s.ApproximateLength()
	if arcLength == 0 {
		return
	}
	samples := s.SampleRange(8, 0, s.NumSegments(), true)
	sMiddle := closestSampleS(samples, aStart)
	sampling := computeSculptSampling(samples, arcLength, sMiddle, radius, 2*tolerance, s.closed, false)

	delta := aEnd.Sub(aStart)
	if s.closed {
		grabClosed(sampling, radius, delta)
	} else {
		grabOpen(sampling, radius, delta)
	}

	s.spliceSculptResult(sampling, tolerance/2)
}

// Width implements spec §4.E width: widens (or narrows) every existing
// knot within radius of position, then densifies the region so the new
// profile is adequately represented.
func (s *Stroke) Width(position bezier.Point, delta, radius float64) {
	arcLength := s.ApproximateLength()
	if arcLength == 0 {
		return
	}
	samples := s.SampleRange(8, 0, s.NumSegments(), true)
	sMiddle := closestSampleS(samples, position)

	bestDist := math.Inf(1)
	for _, sm := range samples {
		d := sm.Position.Sub(position).Len()
		if d < bestDist {
			bestDist = d
		}
	}
	if bestDist > radius {
		return
	}

	knotS := s.knotArclengths(samples, arcLength)
	for i := range s.positions {
		ds := arclengthDelta(knotS[i], sMiddle, arcLength, s.closed)
		if math.Abs(ds) >= radius {
			continue
		}
		u := math.Abs(ds) / radius
		w := s.widthAt(i) + 2*delta*(1-easeInOut(u))
		if w < 0 {
			w = 0
		}
		s.setWidthAt(i, w)
	}

	const minD = 0.2
	targets := []float64{0, 0.25 * radius, 0.75 * radius, radius, -0.25 * radius, -0.75 * radius, -radius}
	for _, dOffset := range targets {
		targetS := sMiddle + dOffset
		if s.hasKnotNear(knotS, targetS, minD*radius, arcLength, s.closed) {
			continue
		}
		pos, width := resampleAtS(samples, targetS, arcLength, s.closed)
		u := math.Abs(dOffset) / radius
		width += 2 * delta * (1 - easeInOut(u))
		if width < 0 {
			width = 0
		}
		s.insertKnotNear(targetS, knotS, arcLength, s.closed, Knot{Position: pos, Width: width})
		knotS = s.knotArclengths(samples, arcLength)
	}
	s.invalidate()
}

// Smooth implements spec §4.E smooth: replaces the knots covered by the
// sculpt sampling around the cursor with one knot per sculpt point, each
// placed at the weighted average of its neighbouring sculpt points. Knot
// arclength spacing is not relaxed, and the replacement knots are not
// simplified (the tolerance is only used to size the sampling step).
func (s *Stroke) Smooth(position bezier.Point, radius, strength, tolerance float64) bezier.Point {
	arcLength := s.ApproximateLength()
	if arcLength == 0 {
		return position
	}
	samples := s.SampleRange(8, 0, s.NumSegments(), true)
	sMiddle := closestSampleS(samples, position)
	maxDs := math.Max(radius/100, 2*tolerance)
	sampling := computeSculptSampling(samples, arcLength, sMiddle, radius, maxDs, s.closed, true)

	scp, _ := resampleAtS(samples, sMiddle, arcLength, s.closed)

	weighted := weightedAverageSculptPoints(sampling, radius, s.closed)
	wascp := scp
	if len(weighted) > 0 {
		nearest := weighted[0]
		bestDist := math.Inf(1)
		for _, wp := range weighted {
			d := wp.Position.Sub(scp).LenSq()
			if d < bestDist {
				bestDist, nearest = d, wp
			}
		}
		wascp = nearest.Position
	}

	replacement := make([]Knot, len(weighted))
	for i, wp := range weighted {
		replacement[i] = Knot{Position: wp.Position, Width: wp.Width}
	}
	s.spliceReplacementKnots(sampling, replacement, tolerance/2)

	return scp.Add(wascp.Sub(scp).Mul(strength))
}

// weightedAverageSculptPoints computes a mirrored-extension weighted
// average of each sculpt point's position/width against its neighbours,
// using a centered ease-in-out window so the average does not drift
// inward near an open curve's endpoint (spec §4.E smooth, step 4).
func weightedAverageSculptPoints(sampling SculptSampling, radius float64, closed bool) []SculptPoint {
	n := len(sampling.Points)
	if n == 0 {
		return nil
	}
	window := int(math.Round(radius / math.Max(math.Min(sampling.Ds0, sampling.Ds1), 1e-9)))
	if window < 1 {
		window = 1
	}

	period := 2 * (n - 1)
	at := func(i int) SculptPoint {
		if closed {
			m := n - 1
			if m <= 0 {
				return sampling.Points[0]
			}
			idx := ((i % m) + m) % m
			return sampling.Points[idx]
		}
		if period <= 0 {
			return sampling.Points[0]
		}
		laps := 0
		j := i
		for j < 0 {
			j += period
			laps--
		}
		for j >= period {
			j -= period
			laps++
		}
		translate := sampling.Points[n-1].Position.Sub(sampling.Points[0].Position).Mul(2 * float64(laps))
		if j < n {
			p := sampling.Points[j]
			p.Position = p.Position.Add(translate)
			return p
		}
		mirrored := sampling.Points[period-j]
		mirrored.Position = sampling.Points[n-1].Position.Mul(2).Sub(mirrored.Position).Add(translate)
		return mirrored
	}

	out := make([]SculptPoint, n)
	for i := 0; i < n; i++ {
		var sumPos bezier.Point
		var sumWidth, sumW float64
		for k := -window; k <= window; k++ {
			frac := 1 - math.Abs(float64(k))/float64(window+1)
			w := easeInOut(frac)
			pt := at(i + k)
			sumPos = sumPos.Add(pt.Position.Mul(w))
			sumWidth += pt.Width * w
			sumW += w
		}
		if sumW == 0 {
			out[i] = sampling.Points[i]
			continue
		}
		out[i] = SculptPoint{Position: sumPos.Div(sumW), Width: sumWidth / sumW, D: sampling.Points[i].D, S: sampling.Points[i].S}
	}
	return out
}

// knotArclengths returns the arclength of every knot along the stroke, by
// nearest-sample lookup.
func (s *Stroke) knotArclengths(samples []StrokeSample, arcLength float64) []float64 {
	out := make([]float64, len(s.positions))
	for i, p := range s.positions {
		out[i] = closestSampleS(samples, p)
	}
	return out
}

func arclengthDelta(knotS, sMiddle, arcLength float64, closed bool) float64 {
	d := knotS - sMiddle
	if closed {
		if d > arcLength/2 {
			d -= arcLength
		} else if d < -arcLength/2 {
			d += arcLength
		}
	}
	return d
}

func (s *Stroke) setWidthAt(i int, w float64) {
	if s.constant {
		widths := s.Widths()
		widths[i] = w
		s.widths = widths
		s.constant = false
	} else {
		s.widths[i] = w
	}
}

func (s *Stroke) hasKnotNear(knotS []float64, target, minD, arcLength float64, closed bool) bool {
	for _, ks := range knotS {
		if math.Abs(arclengthDelta(ks, target, arcLength, closed)) < minD {
			return true
		}
	}
	return false
}

func (s *Stroke) insertKnotNear(targetS float64, knotS []float64, arcLength float64, closed bool, k Knot) {
	if closed {
		targetS = math.Mod(targetS, arcLength)
		if targetS < 0 {
			targetS += arcLength
		}
	}
	insertAt := len(s.positions)
	for i, ks := range knotS {
		if ks > targetS {
			insertAt = i
			break
		}
	}
	s.positions = append(s.positions, bezier.Point{})
	copy(s.positions[insertAt+1:], s.positions[insertAt:])
	s.positions[insertAt] = k.Position

	if !s.constant {
		s.widths = append(s.widths, 0)
		copy(s.widths[insertAt+1:], s.widths[insertAt:])
		s.widths[insertAt] = k.Width
	}
}

// spliceSculptResult filters the sculpted points and replaces the knots
// they cover with the filtered result (spec §4.E grab, steps 4-6).
func (s *Stroke) spliceSculptResult(sampling SculptSampling, tolerance float64) {
	pos := make([]bezier.Point, len(sampling.Points))
	width := make([]float64, len(sampling.Points))
	for i, p := range sampling.Points {
		pos[i] = p.Position
		width[i] = p.Width
	}
	keep := filterPositionsWidths(pos, width, tolerance, 0.05)
	replacement := make([]Knot, len(keep))
	for i, idx := range keep {
		replacement[i] = Knot{Position: pos[idx], Width: width[idx]}
	}
	s.spliceReplacementKnots(sampling, replacement, tolerance)
}

// spliceReplacementKnots replaces the portion of the knot array that the
// sculpt sampling spans with replacement, handling the closed/wrapped/open
// cases of spec §4.E grab step 5.
func (s *Stroke) spliceReplacementKnots(sampling SculptSampling, replacement []Knot, tolerance float64) {
	toPositions := func(ks []Knot) ([]bezier.Point, []float64) {
		pos := make([]bezier.Point, len(ks))
		w := make([]float64, len(ks))
		for i, k := range ks {
			pos[i] = k.Position
			w[i] = k.Width
		}
		return pos, w
	}

	if sampling.IsClosed && sampling.IsRadiusOverlappingStart && sampling.IsRadiusOverlappingEnd {
		pos, w := toPositions(replacement)
		s.positions = pos
		if !s.constant {
			s.widths = w
		}
		s.invalidate()
		return
	}

	n := len(s.positions)
	if n == 0 || len(sampling.Points) == 0 {
		return
	}
	first := sampling.Points[0].S
	last := sampling.Points[len(sampling.Points)-1].S
	replacedPos, replacedW := toPositions(replacement)
	samples := s.SampleRange(8, 0, s.NumSegments(), true)

	var newPos []bezier.Point
	var newW []float64

	if first <= last {
		// Sampling covers a contiguous, non-wrapping arclength interval:
		// knots before it, then the replacement, then knots after it.
		for i, p := range s.positions {
			if arc := closestSampleS(samples, p); arc < first {
				newPos = append(newPos, p)
				newW = append(newW, s.widthAt(i))
			}
		}
		newPos = append(newPos, replacedPos...)
		newW = append(newW, replacedW...)
		for i, p := range s.positions {
			if arc := closestSampleS(samples, p); arc > last {
				newPos = append(newPos, p)
				newW = append(newW, s.widthAt(i))
			}
		}
	} else {
		// Wrapped interval on a closed curve: rotate the retained middle
		// knots (arc strictly between last and first) to the front and
		// append the sculpted replacement.
		for i, p := range s.positions {
			if arc := closestSampleS(samples, p); arc > last && arc < first {
				newPos = append(newPos, p)
				newW = append(newW, s.widthAt(i))
			}
		}
		newPos = append(newPos, replacedPos...)
		newW = append(newW, replacedW...)
	}

	s.positions = newPos
	if !s.constant {
		s.widths = newW
	}
	s.invalidate()
}
