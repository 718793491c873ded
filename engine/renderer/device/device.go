// Package device declares the GPU surface the render core is written against.
// The wgpu backend in package renderer implements it on top of cogentcore/webgpu;
// package devicetest implements it with recording fakes.
package device

import "github.com/cogentcore/webgpu/wgpu"

// Buffer is a GPU-resident buffer.
type Buffer interface {
	// Label returns the debug label the buffer was created with.
	Label() string

	// Size returns the allocated size of the buffer in bytes.
	Size() uint64

	// Release frees the GPU allocation.
	Release()
}

// BindGroupLayout is a GPU-side binding layout object.
type BindGroupLayout interface {
	Label() string
	Release()
}

// BindGroup binds buffer regions to shader-visible slots.
type BindGroup interface {
	Label() string
	Release()
}

// ShaderModule is a compiled shader program.
type ShaderModule interface {
	Label() string
	Release()
}

// RenderPipeline is a GPU-validated render pipeline object.
type RenderPipeline interface {
	Label() string
	Release()
}

// BindGroupEntry binds one buffer region to a binding slot.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Offset  uint64
	Size    uint64
}

// BindGroupDescriptor describes a bind group to create against a layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexState is the vertex stage of a render pipeline.
type VertexState struct {
	Module     ShaderModule
	EntryPoint string
	Buffers    []wgpu.VertexBufferLayout
}

// FragmentState is the fragment stage of a render pipeline.
type FragmentState struct {
	Module     ShaderModule
	EntryPoint string
	Targets    []wgpu.ColorTargetState
}

// RenderPipelineDescriptor is the fully resolved description of a render pipeline.
// Shader references are compiled modules and bind group layouts are GPU objects.
type RenderPipelineDescriptor struct {
	Label        string
	Layouts      []BindGroupLayout
	Vertex       VertexState
	Fragment     *FragmentState
	Primitive    wgpu.PrimitiveState
	DepthStencil *wgpu.DepthStencilState
	Multisample  wgpu.MultisampleState
}

// Device creates GPU resources and uploads data to them.
// Implementations must be safe for concurrent use.
type Device interface {
	// CreateBuffer allocates a GPU buffer.
	//
	// Parameters:
	//   - desc: the buffer label, size and usage
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if allocation fails
	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)

	// WriteBuffer queues a write of data into buf at the given byte offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the destination byte offset
	//   - data: the bytes to write
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	// CreateBindGroupLayout creates a bind group layout object.
	//
	// Parameters:
	//   - desc: the layout entries
	//
	// Returns:
	//   - BindGroupLayout: the created layout
	//   - error: an error if creation fails
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreateBindGroup creates a bind group conforming to desc.Layout.
	//
	// Parameters:
	//   - desc: the layout and buffer entries
	//
	// Returns:
	//   - BindGroup: the created bind group
	//   - error: an error if creation fails
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)

	// CreateShaderModule compiles WGSL source into a shader module.
	//
	// Parameters:
	//   - label: a debug label
	//   - source: the WGSL source code
	//
	// Returns:
	//   - ShaderModule: the compiled module
	//   - error: an error if compilation fails
	CreateShaderModule(label, source string) (ShaderModule, error)

	// CreateRenderPipeline builds a render pipeline.
	//
	// Parameters:
	//   - desc: the resolved pipeline description
	//
	// Returns:
	//   - RenderPipeline: the created pipeline
	//   - error: an error if validation or compilation fails
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
}

// RenderPass records draw commands into the current frame.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, bg BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format wgpu.IndexFormat)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}
