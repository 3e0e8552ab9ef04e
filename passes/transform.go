package passes

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/pipeline"
)

// TransformPass applies a fixed 2D affine transform to every position; all
// other sample attributes pass through unchanged.
type TransformPass struct {
	Matrix affine.Aff3
}

func NewTransformPass(m affine.Aff3) *TransformPass {
	return &TransformPass{Matrix: m}
}

func (p *TransformPass) Reset() {}

func (p *TransformPass) UpdateFrom(input, output *pipeline.Buffer) {
	n := input.Len()
	output.Resize(n)
	for i := 0; i < n; i++ {
		sp := input.At(i)
		sp.Position = p.Matrix.Transform(sp.Position)
		output.Set(i, sp)
	}
	output.UpdateChordLengths()
	output.SetNumStablePoints(input.NumStablePoints())
}

func (p *TransformPass) TransformMatrix() affine.Aff3 { return p.Matrix }
