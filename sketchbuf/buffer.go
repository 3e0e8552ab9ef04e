package sketchbuf

import "slices"

// Buffer is an ordered, append-oriented sequence of SketchPoints with two
// logical regions: a stable prefix of length NumStablePoints, guaranteed
// never to change again for the lifetime of the buffer, and an unstable
// suffix that may be rewritten from scratch on any update (spec §3/§4.A).
//
// Buffer owns its storage exclusively; callers never hold a slice that
// straddles the stable/unstable boundary across a mutating call.
type Buffer struct {
	points    []SketchPoint
	numStable int
}

// Len returns the number of points in the buffer.
func (b *Buffer) Len() int { return len(b.points) }

// IsEmpty reports whether the buffer has no points.
func (b *Buffer) IsEmpty() bool { return len(b.points) == 0 }

// At returns the point at index i. Panics if i is out of range
// (programmer error, spec §7.1).
func (b *Buffer) At(i int) SketchPoint {
	return b.points[i]
}

// Set overwrites the point at index i. Panics if i is out of range.
func (b *Buffer) Set(i int, p SketchPoint) {
	b.points[i] = p
}

// First returns the first point. Panics if the buffer is empty.
func (b *Buffer) First() SketchPoint { return b.points[0] }

// Last returns the last point. Panics if the buffer is empty.
func (b *Buffer) Last() SketchPoint { return b.points[len(b.points)-1] }

// Data returns the full backing slice. Callers must not retain it across a
// call that resizes or clears the buffer.
func (b *Buffer) Data() []SketchPoint { return b.points }

// Append appends p to the buffer.
func (b *Buffer) Append(p SketchPoint) {
	b.points = append(b.points, p)
}

// Extend appends every point of ps to the buffer.
func (b *Buffer) Extend(ps []SketchPoint) {
	b.points = append(b.points, ps...)
}

// Resize grows or shrinks the buffer to exactly n points, preserving
// existing bytes (new points are the zero SketchPoint). Shrinking below
// NumStablePoints is a programmer error.
func (b *Buffer) Resize(n int) {
	if n < b.numStable {
		panic("sketchbuf: resize below stable prefix")
	}
	switch {
	case n <= len(b.points):
		b.points = b.points[:n]
	default:
		b.points = slices.Grow(b.points, n-len(b.points))
		b.points = b.points[:n]
	}
}

// Clear empties the buffer and resets NumStablePoints to 0.
func (b *Buffer) Clear() {
	b.points = b.points[:0]
	b.numStable = 0
}

// NumStablePoints returns the length of the stable prefix.
func (b *Buffer) NumStablePoints() int { return b.numStable }

// SetNumStablePoints sets the length of the stable prefix. A pass may
// declare fewer stable points than a previous call (it decided it must
// reconsider previously stable output); it is not required to be
// monotonically increasing within a single buffer's lifetime, only across
// the pipeline's overall progress (spec §3 Sketch Pass contract).
func (b *Buffer) SetNumStablePoints(n int) {
	if n < 0 || n > len(b.points) {
		panic("sketchbuf: numStablePoints out of range")
	}
	b.numStable = n
}

// Unstable returns a mutable slice over [NumStablePoints, Len).
func (b *Buffer) Unstable() []SketchPoint {
	return b.points[b.numStable:]
}

// UpdateChordLengths recomputes S for every point from its position:
// S[0] = 0, S[i] = S[i-1] + ‖position[i]-position[i-1]‖ for i >= 1.
func (b *Buffer) UpdateChordLengths() {
	if len(b.points) == 0 {
		return
	}
	b.points[0].S = 0
	for i := 1; i < len(b.points); i++ {
		d := b.points[i].Position.Sub(b.points[i-1].Position).Len()
		b.points[i].S = b.points[i-1].S + d
	}
}

// CopyFrom replaces the buffer's contents with a copy of src.
// NumStablePoints is kept, lowered to len(src) if it exceeds it.
func (b *Buffer) CopyFrom(src []SketchPoint) {
	b.points = append(b.points[:0], src...)
	if b.numStable > len(b.points) {
		b.numStable = len(b.points)
	}
}
