package stroke

import (
	"math"
	"sort"

	"sketchpath.dev/bezier"
)

const averageSamplesPerStroke = 64

type strokeSampling struct {
	u     []float64 // ascending, in [0,1]
	pos   []bezier.Point
	width []float64
}

// AssignFromAverage blends n strokes of matching closed-ness into one
// stroke (spec §4.D assignFromAverage): each input is sampled uniformly
// (8 subdivisions per segment),
// optionally reversed and rotated, the samples are averaged at the union
// of their normalized-arclength parameters, and the result is simplified
// with the shared position+width filter.
func AssignFromAverage(strokes []*Stroke, directions []bool, uOffsets []float64, areClosed bool) *Stroke {
	if len(strokes) == 0 {
		panic("stroke: AssignFromAverage requires at least one stroke")
	}

	samplings := make([]strokeSampling, 0, len(strokes))
	for i, st := range strokes {
		if st.NumSegments() == 0 {
			continue
		}
		samples := st.SampleRange(8, 0, st.NumSegments(), true)
		length := samples[len(samples)-1].S
		if length == 0 {
			length = 1
		}
		pos := make([]bezier.Point, len(samples))
		width := make([]float64, len(samples))
		u := make([]float64, len(samples))
		for k, sm := range samples {
			pos[k] = sm.Position
			width[k] = 2 * sm.HalfWidth
			u[k] = sm.S / length
		}
		if i < len(directions) && !directions[i] {
			reverseSampling(u, pos, width)
		}
		if areClosed && i < len(uOffsets) && uOffsets[i] != 0 {
			rotateSampling(u, pos, width, uOffsets[i])
		}
		samplings = append(samplings, strokeSampling{u: u, pos: pos, width: width})
	}
	if len(samplings) == 0 {
		panic("stroke: AssignFromAverage requires at least one non-degenerate stroke")
	}

	uSet := make(map[float64]bool)
	for _, sm := range samplings {
		for _, u := range sm.u {
			uSet[u] = true
		}
	}
	us := make([]float64, 0, len(uSet))
	for u := range uSet {
		us = append(us, u)
	}
	sort.Float64s(us)

	avgPos := make([]bezier.Point, len(us))
	avgWidth := make([]float64, len(us))
	for k, u := range us {
		var sumPos bezier.Point
		var sumW float64
		for _, sm := range samplings {
			p, w := interpSamplingAt(sm, u)
			sumPos = sumPos.Add(p)
			sumW += w
		}
		n := float64(len(samplings))
		avgPos[k] = sumPos.Div(n)
		avgWidth[k] = sumW / n
	}

	if areClosed && len(avgPos) > 1 && avgPos[0] == avgPos[len(avgPos)-1] {
		avgPos = avgPos[:len(avgPos)-1]
		avgWidth = avgWidth[:len(avgWidth)-1]
	}

	minWidth := math.Inf(1)
	for _, w := range avgWidth {
		if w < minWidth {
			minWidth = w
		}
	}
	if math.IsInf(minWidth, 1) {
		minWidth = 0
	}
	tolerance := 0.2 * minWidth

	keep := filterPositionsWidths(avgPos, avgWidth, tolerance, 0.05)
	outPos := make([]bezier.Point, len(keep))
	outWidth := make([]float64, len(keep))
	for i, idx := range keep {
		outPos[i] = avgPos[idx]
		outWidth[i] = avgWidth[idx]
	}
	return New(outPos, outWidth, areClosed)
}

func reverseSampling(u []float64, pos []bezier.Point, width []float64) {
	reversePoints(pos)
	reverseFloats(width)
	reverseFloats(u)
	for i := range u {
		u[i] = 1 - u[i]
	}
}

// rotateSampling rotates the sampling so the first sample with u >=
// uOffset (or sample 0 if there is none) becomes the new logical start,
// renormalizing u so it stays ascending from 0.
func rotateSampling(u []float64, pos []bezier.Point, width []float64, uOffset float64) {
	n := len(u)
	if n == 0 {
		return
	}
	start := sort.SearchFloat64s(u, uOffset)
	if start >= n {
		start = 0
	}
	rotate := func(pivot int) {
		rotatedU := make([]float64, 0, n)
		rotatedPos := make([]bezier.Point, 0, n)
		rotatedWidth := make([]float64, 0, n)
		for k := 0; k < n; k++ {
			idx := (pivot + k) % n
			uu := u[idx] - u[pivot]
			if uu < 0 {
				uu += 1
			}
			rotatedU = append(rotatedU, uu)
			rotatedPos = append(rotatedPos, pos[idx])
			rotatedWidth = append(rotatedWidth, width[idx])
		}
		copy(u, rotatedU)
		copy(pos, rotatedPos)
		copy(width, rotatedWidth)
	}
	rotate(start)
}

func interpSamplingAt(sm strokeSampling, u float64) (bezier.Point, float64) {
	n := len(sm.u)
	if n == 0 {
		return bezier.Point{}, 0
	}
	if n == 1 {
		return sm.pos[0], sm.width[0]
	}
	i := sort.SearchFloat64s(sm.u, u)
	switch {
	case i <= 0:
		return sm.pos[0], sm.width[0]
	case i >= n:
		return sm.pos[n-1], sm.width[n-1]
	default:
		a, b := i-1, i
		t := fraction(sm.u[a], sm.u[b], u)
		return bezier.Lerp(sm.pos[a], sm.pos[b], t), (1-t)*sm.width[a] + t*sm.width[b]
	}
}

func fraction(a, b, u float64) float64 {
	if b == a {
		return 0
	}
	t := (u - a) / (b - a)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
