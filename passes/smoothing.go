package passes

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/pipeline"
	"sketchpath.dev/sketchbuf"
)

// binomialLevel2 and binomialLevel1 are the discrete smoothing kernels of
// spec §4.C SmoothingPass, normalized to sum to 1.
var binomialLevel2 = [5]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}
var binomialLevel1 = [3]float64{1.0 / 4, 2.0 / 4, 1.0 / 4}

// widthRoughnessLimit is k in |dw/ds| <= k.
const widthRoughnessLimit = 0.8

// SmoothingPass convolves positions and widths with a binomial kernel and
// then enforces a bound on width roughness (spec §4.C SmoothingPass).
type SmoothingPass struct{}

func (p *SmoothingPass) Reset() {}

func (p *SmoothingPass) TransformMatrix() affine.Aff3 { return affine.Identity }

func (p *SmoothingPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	output.Resize(n)
	if n == 0 {
		output.SetNumStablePoints(0)
		return
	}

	pts := make([]sketchbuf.SketchPoint, n)
	for i := 0; i < n; i++ {
		pts[i] = input.At(i)
	}

	smoothed := make([]sketchbuf.SketchPoint, n)
	for i := 0; i < n; i++ {
		smoothed[i] = pts[i]
	}

	// Position smoothing: endpoints pass through untouched; interior
	// points use the level-2 kernel when both radius-2 neighbours exist,
	// otherwise fall back to the level-1 kernel.
	for i := 1; i < n-1; i++ {
		if i-2 >= 0 && i+2 <= n-1 {
			var x, y float64
			for k := -2; k <= 2; k++ {
				w := binomialLevel2[k+2]
				x += w * pts[i+k].Position.X
				y += w * pts[i+k].Position.Y
			}
			smoothed[i].Position.X = x
			smoothed[i].Position.Y = y
		} else {
			var x, y float64
			for k := -1; k <= 1; k++ {
				w := binomialLevel1[k+1]
				x += w * pts[i+k].Position.X
				y += w * pts[i+k].Position.Y
			}
			smoothed[i].Position.X = x
			smoothed[i].Position.Y = y
		}
	}

	// Width smoothing: level-2 kernel applied everywhere, normalized by
	// the sum of taps that actually fall inside [0,n).
	widths := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum, wsum float64
		for k := -2; k <= 2; k++ {
			j := i + k
			if j < 0 || j >= n {
				continue
			}
			tap := binomialLevel2[k+2]
			sum += tap * pts[j].Width
			wsum += tap
		}
		if wsum == 0 {
			widths[i] = pts[i].Width
		} else {
			widths[i] = sum / wsum
		}
	}
	for i := range smoothed {
		smoothed[i].Width = widths[i]
	}

	for i, sp := range smoothed {
		output.Set(i, sp)
	}
	output.UpdateChordLengths()

	s := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		p := output.At(i)
		s[i] = p.S
		w[i] = p.Width
	}
	applyWidthRoughnessLimiter(s, w, widthRoughnessLimit)
	for i := 0; i < n; i++ {
		p := output.At(i)
		p.Width = w[i]
		output.Set(i, p)
	}

	stable := input.NumStablePoints() - 5
	if stable < 0 {
		stable = 0
	}
	if stable > n {
		stable = n
	}
	output.SetNumStablePoints(stable)
}

// applyWidthRoughnessLimiter enforces |dw/ds| <= k with a two-sided clamp:
// each point is widened to at least the previous point's width minus
// k*ds and narrowed to at most the width of the point 3 samples back plus
// k*ds. A widening is propagated backwards over the previous 3 samples
// (only ever widening them) until an already-wide-enough point is found.
func applyWidthRoughnessLimiter(s, w []float64, k float64) {
	n := len(w)
	for i := 1; i < n; i++ {
		dsPrev := s[i] - s[i-1]
		minW := w[i-1] - k*dsPrev
		widened := w[i] < minW
		if widened {
			w[i] = minW
		}

		maxIdx := i - 3
		if maxIdx < 0 {
			maxIdx = 0
		}
		maxW := w[maxIdx] + k*(s[i]-s[maxIdx])
		if w[i] > maxW {
			w[i] = maxW
		}

		if widened {
			for j := i - 1; j >= 0 && j >= i-3; j-- {
				minWj := w[j+1] - k*(s[j+1]-s[j])
				if w[j] >= minWj {
					break
				}
				w[j] = minWj
			}
		}
	}
}
