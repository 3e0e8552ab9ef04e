// Package sketchbuf implements the stable/unstable sample buffer (spec
// component A, "Sample & Point Buffer") that every sketch pass reads from
// and writes to.
package sketchbuf

import "sketchpath.dev/bezier"

// SketchPoint is a single sample along the input, or along an intermediate
// pipeline buffer.
type SketchPoint struct {
	Position  bezier.Point
	Width     float64
	Pressure  float64
	Timestamp float64
	// S is the arclength from the first point of the buffer along the
	// polyline joining the buffer's points. Derived by the buffer, not
	// authoritative.
	S float64
}

// Lerp linearly interpolates every attribute of p and q component-wise by
// t. The result's S is left at the zero value: S is recomputed by the
// buffer (UpdateChordLengths), never by Lerp.
func Lerp(p, q SketchPoint, t float64) SketchPoint {
	return SketchPoint{
		Position:  bezier.Lerp(p.Position, q.Position, t),
		Width:     (1-t)*p.Width + t*q.Width,
		Pressure:  (1-t)*p.Pressure + t*q.Pressure,
		Timestamp: (1-t)*p.Timestamp + t*q.Timestamp,
	}
}
