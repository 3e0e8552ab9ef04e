package pipeline

import (
	"testing"

	"sketchpath.dev/affine"
	"sketchpath.dev/bezier"
)

// identityPass copies input straight to output, tracking its own reset
// count so tests can observe the Reset contract.
type identityPass struct {
	resets int
}

func (p *identityPass) Reset() { p.resets++ }

func (p *identityPass) UpdateFrom(input, output *Buffer) {
	output.CopyFrom(input.Data())
	output.SetNumStablePoints(input.NumStablePoints())
}

func (p *identityPass) TransformMatrix() affine.Aff3 { return affine.Identity }

func TestPipelinePushGrowsFinalBuffer(t *testing.T) {
	pass := &identityPass{}
	p := New(pass)
	for i := 0; i < 3; i++ {
		p.Push(SketchPoint{Position: bezier.Pt(float64(i), 0)})
	}
	final := p.Final()
	if final.Len() != 3 {
		t.Fatalf("final.Len() = %d, want 3", final.Len())
	}
	if final.NumStablePoints() != 3 {
		t.Fatalf("final.NumStablePoints() = %d, want 3", final.NumStablePoints())
	}
}

func TestPipelineResetClearsBuffersAndCallsPasses(t *testing.T) {
	pass := &identityPass{}
	p := New(pass)
	p.Push(SketchPoint{Position: bezier.Pt(0, 0)})
	p.Push(SketchPoint{Position: bezier.Pt(1, 0)})

	p.Reset()

	if p.Final().Len() != 0 {
		t.Errorf("Final().Len() after Reset = %d, want 0", p.Final().Len())
	}
	if p.Buffer(0).Len() != 0 {
		t.Errorf("Buffer(0).Len() after Reset = %d, want 0", p.Buffer(0).Len())
	}
	if pass.resets != 1 {
		t.Errorf("pass.resets = %d, want 1", pass.resets)
	}
}

func TestPipelineChainsMultiplePasses(t *testing.T) {
	p := New(&identityPass{}, &identityPass{})
	p.Push(SketchPoint{Position: bezier.Pt(2, 3)})
	if got := p.Final().First().Position; got != bezier.Pt(2, 3) {
		t.Errorf("Final().First().Position = %v, want (2,3)", got)
	}
	if p.Buffer(1).Len() != 1 {
		t.Errorf("intermediate buffer 1 Len() = %d, want 1", p.Buffer(1).Len())
	}
}

func TestNopSinkDiscardsCalls(t *testing.T) {
	var s NopSink
	s.Line([2]float64{0, 0}, [2]float64{1, 1})
	s.Point([2]float64{0, 0}, "p")
}
