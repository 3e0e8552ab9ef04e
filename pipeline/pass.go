// Package pipeline implements the sketch-pass framework (spec component D):
// an ordered list of stateful passes, each exposing a "stable prefix +
// unstable suffix" incremental contract, chained into a pipeline that
// turns raw input samples into the final knots handed to a stroke.
package pipeline

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/sketchbuf"
)

// Buffer is the sketch-point buffer type every pass reads from and writes
// to; re-exported from sketchbuf so pass implementations only need to
// import this package.
type Buffer = sketchbuf.Buffer

// Sink receives debug-draw calls from passes that need to visualize their
// intermediate state in stroke-local space. The default Sink is a no-op;
// callers that want to see pass internals (e.g. a development overlay)
// supply their own implementation (design note §9, "Debug drawing").
type Sink interface {
	Line(a, b [2]float64)
	Point(p [2]float64, label string)
}

// NopSink is the default Sink: every call is discarded.
type NopSink struct{}

func (NopSink) Line([2]float64, [2]float64) {}
func (NopSink) Point([2]float64, string)     {}

// Pass is a stateful transformer from one SketchPointBuffer to another.
type Pass interface {
	// Reset drops all internal state; the next UpdateFrom call recomputes
	// its output from scratch.
	Reset()

	// UpdateFrom brings output into sync with input, taking advantage of
	// input's stable prefix to preserve already-computed bytes in output.
	//
	// Contract (spec §3 Sketch Pass):
	//   - if input.Len() == 0, output.Len() == 0 after return.
	//   - if input.NumStablePoints() grows monotonically over successive
	//     calls, so does output.NumStablePoints() (never fewer than a
	//     previous call returned).
	//   - output satisfies the chord-length invariant after return.
	UpdateFrom(input, output *Buffer)

	// TransformMatrix is a read-only 2D affine transform used by passes
	// that must debug-draw in stroke-local space. Passes with no such
	// need return affine.Identity.
	TransformMatrix() affine.Aff3
}
