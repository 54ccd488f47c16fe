package render

import "github.com/gogpu/gputypes"

// Floats per vertex.
const (
	ShapeStride = 6
	TextStride  = 8
)

// ShapeVertexLayout describes the shape buffer: position at location 0,
// color at location 1.
func ShapeVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: ShapeStride * 4,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
		},
	}
}

// TextVertexLayout describes the text buffer: position at location 0, atlas
// coordinates at location 1, color at location 2.
func TextVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: TextStride * 4,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
		},
	}
}

// Primitive is the primitive state both buffers are built for.
func Primitive() gputypes.PrimitiveState {
	return gputypes.PrimitiveState{Topology: gputypes.PrimitiveTopologyTriangleList}
}
