package pipeline

import "sketchpath.dev/sketchbuf"

// SketchPoint is re-exported from sketchbuf so callers pushing points into
// a Pipeline don't need a separate import.
type SketchPoint = sketchbuf.SketchPoint

// Pipeline is an ordered list of Passes P1..Pk and k+1 buffers B0..Bk. B0
// is the raw input; Bi is the output of Pi. The pipeline invariant after
// any update is: for every i, Bi equals what a from-scratch run of Pi on
// Bi-1 would produce (spec §3 Sketch Pipeline).
//
// Scheduling is single-threaded and cooperative (spec §5): Push runs every
// pass to completion in order, never preempted, and the pipeline is
// quiescent between calls.
type Pipeline struct {
	passes  []Pass
	buffers []Buffer // len(buffers) == len(passes)+1
	sink    Sink
}

// New constructs a pipeline running the given passes in order, each
// reading the previous pass's output buffer (buffer 0 is the raw input
// buffer, fed by Push).
func New(passes ...Pass) *Pipeline {
	p := &Pipeline{
		passes:  passes,
		buffers: make([]Buffer, len(passes)+1),
		sink:    NopSink{},
	}
	return p
}

// SetSink installs the debug-draw sink shared by all passes. The default
// is NopSink.
func (p *Pipeline) SetSink(sink Sink) {
	if sink == nil {
		sink = NopSink{}
	}
	p.sink = sink
}

// Sink returns the pipeline's current debug-draw sink.
func (p *Pipeline) Sink() Sink { return p.sink }

// Push appends one SketchPoint to the raw input buffer and runs every pass
// in order, returning a reference to the final buffer.
func (p *Pipeline) Push(point SketchPoint) *Buffer {
	p.buffers[0].Append(point)
	p.buffers[0].UpdateChordLengths()
	p.buffers[0].SetNumStablePoints(p.buffers[0].Len())
	return p.run()
}

// run executes every pass in order against the current buffer chain and
// returns the last buffer.
func (p *Pipeline) run() *Buffer {
	for i, pass := range p.passes {
		pass.UpdateFrom(&p.buffers[i], &p.buffers[i+1])
	}
	return &p.buffers[len(p.buffers)-1]
}

// Final returns the pipeline's final output buffer without pushing a new
// point.
func (p *Pipeline) Final() *Buffer {
	return &p.buffers[len(p.buffers)-1]
}

// Buffer returns the intermediate buffer at index i (0 is raw input, len
// equal to the number of passes is the final output).
func (p *Pipeline) Buffer(i int) *Buffer {
	return &p.buffers[i]
}

// Reset drops every pass's internal state and clears every buffer; the
// next Push recomputes everything from scratch.
func (p *Pipeline) Reset() {
	for i := range p.buffers {
		p.buffers[i].Clear()
	}
	for _, pass := range p.passes {
		pass.Reset()
	}
}
