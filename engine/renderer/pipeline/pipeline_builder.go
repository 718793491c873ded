package pipeline

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Descriptor during construction.
type PipelineBuilderOption func(*Descriptor)

// NewDescriptor creates a Descriptor with the given label and all specified options applied.
// Defaults are a triangle list with counter-clockwise front faces, no culling, a single
// sample with every sample bit enabled and no depth/stencil state.
//
// Parameters:
//   - label: the debug label of the pipeline
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Descriptor: the configured descriptor
func NewDescriptor(label string, opts ...PipelineBuilderOption) Descriptor {
	d := Descriptor{
		Label: label,
		Vertex: VertexDescriptor{
			EntryPoint: shader.DefaultVertexEntryPoint,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// AlphaBlending returns the standard alpha blend state: color is blended by source alpha
// and alpha accumulates over the destination.
//
// Returns:
//   - *wgpu.BlendState: a new alpha blend state
func AlphaBlending() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// WithVertex sets the vertex stage.
//
// Parameters:
//   - h: the shader handle containing the vertex entry point
//   - entryPoint: the vertex entry point name
//   - buffers: the vertex buffer layouts consumed by the stage
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex stage
func WithVertex(h shader.Handle, entryPoint string, buffers ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Vertex = VertexDescriptor{Shader: h, EntryPoint: entryPoint, Buffers: buffers}
	}
}

// WithFragment sets the fragment stage.
//
// Parameters:
//   - h: the shader handle containing the fragment entry point
//   - entryPoint: the fragment entry point name
//   - targets: the color targets written by the stage
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment stage
func WithFragment(h shader.Handle, entryPoint string, targets ...wgpu.ColorTargetState) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Fragment = &FragmentDescriptor{Shader: h, EntryPoint: entryPoint, Targets: targets}
	}
}

// WithLayouts sets the bind group layouts, in group index order.
//
// Parameters:
//   - layouts: the bind group layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the pipeline layout
func WithLayouts(layouts ...device.BindGroupLayout) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Layouts = layouts
	}
}

// WithCullMode sets the cull mode.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Primitive.CullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Primitive.Topology = topology
	}
}

// WithFrontFace sets the front face winding order.
//
// Parameters:
//   - frontFace: the front face (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Primitive.FrontFace = frontFace
	}
}

// WithSampleCount sets the multisample count. A count of zero is treated as one.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - PipelineBuilderOption: a function that sets the multisample count
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.Multisample.Count = max(count, 1)
	}
}

// WithDepthStencil sets the depth/stencil state. Passing nil disables depth testing.
//
// Parameters:
//   - state: the depth/stencil state, or nil
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth/stencil state
func WithDepthStencil(state *wgpu.DepthStencilState) PipelineBuilderOption {
	return func(d *Descriptor) {
		d.DepthStencil = state
	}
}
