package passes

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
	"sketchpath.dev/pipeline"
	"sketchpath.dev/sketchbuf"
)

// blendFit is one retained overlapping fixed-endpoint fit.
type blendFit struct {
	curve                  bezier.Quadratic
	i1, i2                 int // input index range [i1,i2]
	maxDeviationLocalIdx   int // index of max deviation, relative to i1
	outputStart, outputEnd int
}

// QuadraticBlendPass maintains a list of overlapping fixed-endpoint
// quadratic fits across a sliding window, growing each window until the
// fit quality degrades or the maximum window size is reached (spec §4.C
// QuadraticBlendPass).
type QuadraticBlendPass struct {
	Settings BlendFitSettings

	buf  bezier.FitBuffer
	fits []blendFit
}

func NewQuadraticBlendPass(settings BlendFitSettings) *QuadraticBlendPass {
	return &QuadraticBlendPass{Settings: settings}
}

func (p *QuadraticBlendPass) Reset() { p.fits = nil }

func (p *QuadraticBlendPass) TransformMatrix() affine.Aff3 { return affine.Identity }

func (p *QuadraticBlendPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	if n == 0 {
		output.Resize(0)
		output.SetNumStablePoints(0)
		p.fits = nil
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
	if settings.MinFitPoints < 2 {
		settings.MinFitPoints = 2
	}
	if settings.MaxFitPoints < settings.MinFitPoints {
		settings.MaxFitPoints = settings.MinFitPoints
	}

	var fits []blendFit
	length := n
	for {
		var i1 int
		if len(fits) == 0 {
			i1 = 0
		} else {
			prev := fits[len(fits)-1]
			i1 = chooseSplitIndex(settings.SplitStrategy, prev.i1, prev.i2, prev.maxDeviationLocalIdx, settings.IndexRatio)
			if i1 <= prev.i1 {
				i1 = prev.i1 + 1
			}
		}

		i2min := i1 + settings.MinFitPoints - 1
		if len(fits) > 0 && i2min <= fits[len(fits)-1].i2 {
			i2min = fits[len(fits)-1].i2 + 1
		}
		i2max := i1 + settings.MaxFitPoints - 1
		if i2max > length-1 {
			i2max = length - 1
		}
		if i2min > i2max {
			i2min = i2max
		}

		var best blendFit
		haveBest := false
		for i2 := i2min; i2 <= i2max; i2++ {
			curve, maxDistSq, maxLocalIdx := fitFixedEndpointsRange(positions, s, i1, i2)
			goodFit := maxDistSq <= settings.DistanceThreshold*settings.DistanceThreshold
			if i2-i1+1 > settings.FlatnessThresholdMinPoints {
				flatness := curve.Flatness()
				goodFit = goodFit && flatness*flatness >= settings.FlatnessThreshold*settings.FlatnessThreshold
			}
			candidate := blendFit{curve: curve, i1: i1, i2: i2, maxDeviationLocalIdx: maxLocalIdx}
			if !haveBest {
				best, haveBest = candidate, true
			}
			if goodFit {
				best = candidate
			}
		}
		fits = append(fits, best)
		if best.i2 >= length-1 {
			break
		}
	}

	const m = 9
	total := 0
	for i := range fits {
		if i == 0 {
			total += m
		} else {
			total += m - 1
		}
	}
	output.Resize(total)

	outIdx := 0
	for i := range fits {
		startK := 0
		if i > 0 {
			startK = 1
		}
		fits[i].outputStart = outIdx
		for k := startK; k < m; k++ {
			u := float64(k) / float64(m-1)
			attrs := sketchbuf.Lerp(samples[fits[i].i1], samples[fits[i].i2], u)
			attrs.Position = fits[i].curve.Eval(u)
			output.Set(outIdx, attrs)
			outIdx++
		}
		fits[i].outputEnd = outIdx
	}
	output.UpdateChordLengths()
	p.fits = fits

	stable := 0
	if len(fits) >= 2 {
		prev := fits[len(fits)-2]
		if prev.i2 < input.NumStablePoints() {
			stable = prev.outputEnd
		}
	}
	output.SetNumStablePoints(stable)
}

// fitFixedEndpointsRange fits a fixed-endpoint quadratic across
// positions[i1..i2] using normalized chord-length parameters, and returns
// the max squared deviation and the local index (relative to i1) at which
// it occurs.
func fitFixedEndpointsRange(positions []bezier.Point, s []float64, i1, i2 int) (bezier.Quadratic, float64, int) {
	n := i2 - i1 + 1
	if n <= 1 {
		return bezier.PointBezier(positions[i1]), 0, 0
	}
	u := make([]float64, n)
	span := s[i2] - s[i1]
	for i := 0; i < n; i++ {
		if span > 0 {
			u[i] = (s[i1+i] - s[i1]) / span
		}
	}
	u[0] = 0
	u[n-1] = 1
	curve := bezier.FitFixedEndpoints(positions[i1:i2+1], u, positions[i1], positions[i2])
	bezier.RefineParams(curve, positions[i1:i2+1], u)
	maxDistSq, maxIdx := maxDeviationSq(curve, positions[i1:i2+1], u)
	return curve, maxDistSq, maxIdx
}
