package passes

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
	"sketchpath.dev/pipeline"
	"sketchpath.dev/sketchbuf"
)

// splineSegment is one accepted Bézier of a QuadraticSplinePass fit, along
// with the input range it covers and the output index range it produced.
type splineSegment struct {
	curve                        bezier.Quadratic
	firstInputIndex, lastInputIndex int
	outputStart, outputEnd       int // [outputStart, outputEnd) into the output buffer
}

// QuadraticSplinePass recursively fits quadratic Béziers over the input,
// splitting wherever a single Bézier can't meet the distance/flatness
// gate, and preserving G¹ continuity between adjacent Béziers (spec §4.C
// QuadraticSplinePass).
type QuadraticSplinePass struct {
	Settings SplineFitSettings

	buf      bezier.FitBuffer
	segments []splineSegment
}

func NewQuadraticSplinePass(settings SplineFitSettings) *QuadraticSplinePass {
	return &QuadraticSplinePass{Settings: settings}
}

func (p *QuadraticSplinePass) Reset() { p.segments = nil }

func (p *QuadraticSplinePass) TransformMatrix() affine.Aff3 { return affine.Identity }

func (p *QuadraticSplinePass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	if n == 0 {
		output.Resize(0)
		output.SetNumStablePoints(0)
		p.segments = nil
		return
	}
	if n == 1 {
		output.Resize(1)
		output.Set(0, input.First())
		output.UpdateChordLengths()
		output.SetNumStablePoints(0)
		return
	}

	positions := make([]bezier.Point, n)
	s := make([]float64, n)
	samples := make([]sketchbuf.SketchPoint, n)
	for i := 0; i < n; i++ {
		sp := input.At(i)
		samples[i] = sp
		positions[i] = sp.Position
		s[i] = sp.S
	}

	settings := p.Settings
	if settings.NumOutputPointsPerBezier < 2 {
		settings.NumOutputPointsPerBezier = 9
	}

	var segs []splineSegment
	p.fit(positions, s, settings, 0, n-1, settings.SplitLastGoodFitOnce, nil, &segs)

	m := settings.NumOutputPointsPerBezier
	total := 0
	for i := range segs {
		if i == 0 {
			total += m
		} else {
			total += m - 1
		}
	}
	output.Resize(total)

	outIdx := 0
	for i := range segs {
		startK := 0
		if i > 0 {
			startK = 1
		}
		segs[i].outputStart = outIdx
		for k := startK; k < m; k++ {
			u := float64(k) / float64(m-1)
			attrs := sketchbuf.Lerp(samples[segs[i].firstInputIndex], samples[segs[i].lastInputIndex], u)
			attrs.Position = segs[i].curve.Eval(u)
			output.Set(outIdx, attrs)
			outIdx++
		}
		segs[i].outputEnd = outIdx
	}
	output.UpdateChordLengths()
	p.segments = segs

	startIdx := len(segs) - 2
	if settings.SplitLastGoodFitOnce {
		startIdx--
	}
	stable := 0
	for i := startIdx; i >= 0; i-- {
		if segs[i].lastInputIndex < input.NumStablePoints() {
			stable = segs[i].outputEnd
			break
		}
	}
	output.SetNumStablePoints(stable)
}

func (p *QuadraticSplinePass) fit(positions []bezier.Point, s []float64, settings SplineFitSettings, first, last int, splitOnce bool, startTangent *bezier.Point, out *[]splineSegment) {
	q, params := bezier.QuadraticFit(&p.buf, positions, s, first, last, startTangent)

	maxDistSq, maxLocalIdx := maxDeviationSq(q, positions[first:last+1], params)
	n := last - first + 1

	isGoodFit := maxDistSq <= settings.DistanceThreshold*settings.DistanceThreshold
	if n > settings.FlatnessThresholdMinPoints {
		flatness := q.Flatness()
		isGoodFit = isGoodFit && flatness*flatness >= settings.FlatnessThreshold*settings.FlatnessThreshold
	}

	canSplit := n > 2
	if !canSplit || (isGoodFit && !splitOnce) {
		*out = append(*out, splineSegment{curve: q, firstInputIndex: first, lastInputIndex: last})
		return
	}

	splitIdx := chooseSplitIndex(settings.SplitStrategy, first, last, maxLocalIdx, settings.IndexRatio)
	if splitIdx <= first {
		splitIdx = first + 1
	}
	if splitIdx >= last {
		splitIdx = last - 1
	}

	p.fit(positions, s, settings, first, splitIdx, false, startTangent, out)
	leftEnd := (*out)[len(*out)-1]
	tangent := leftEnd.curve.B2.Sub(leftEnd.curve.B1)

	rightSplitOnce := splitOnce && !isGoodFit
	p.fit(positions, s, settings, splitIdx, last, rightSplitOnce, &tangent, out)
}

// maxDeviationSq returns the largest squared distance between q evaluated
// at each param and its corresponding position, and the local index (into
// positions) at which it occurs.
func maxDeviationSq(q bezier.Quadratic, positions []bezier.Point, params []float64) (float64, int) {
	maxDistSq := -1.0
	maxIdx := 0
	for i, p := range positions {
		d := q.Eval(params[i]).Sub(p).LenSq()
		if d > maxDistSq {
			maxDistSq, maxIdx = d, i
		}
	}
	return maxDistSq, maxIdx
}

// chooseSplitIndex maps a local max-deviation index (relative to first)
// back to a global index per the requested SplitStrategy.
func chooseSplitIndex(strategy SplitStrategy, first, last, localMaxIdx int, indexRatio float64) int {
	switch strategy {
	case SecondLast:
		return last - 1
	case ThirdLast:
		return last - 2
	case IndexRatio:
		return first + int(float64(last-first)*indexRatio+0.5)
	default: // Furthest
		return first + localMaxIdx
	}
}
