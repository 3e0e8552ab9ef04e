package passes

import (
	"sketchpath.dev/affine"
	"sketchpath.dev/pipeline"
)

// EmptyPass copies input to output unchanged; a neutral element for
// pipelines under construction or testing.
type EmptyPass struct{}

func (EmptyPass) Reset() {}

func (EmptyPass) UpdateFrom(input, output *pipeline.Buffer) {
	output.CopyFrom(input.Data())
	output.SetNumStablePoints(input.NumStablePoints())
}

func (EmptyPass) TransformMatrix() affine.Aff3 { return affine.Identity }
