package triangle

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderHandle is the handle the triangle shader is registered under in the renderer's store.
const ShaderHandle shader.Handle = 0xc648c90f09f1fe7d

// PipelineLabel is the debug label of every triangle pipeline variant.
const PipelineLabel = "triangle pipeline"

//go:embed triangle.wgsl
var shaderSource string

// vertexStride is the size of one interleaved vertex: color, position, uv.
const vertexStride = 16 + 12 + 8

// vertexAttributes is the fixed vertex layout. Offsets follow the name-sorted interleaving
// produced by mesh.Mesh, so color comes first.
var vertexAttributes = []wgpu.VertexAttribute{
	// position
	{Format: wgpu.VertexFormatFloat32x3, Offset: 16, ShaderLocation: 0},
	// color
	{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
	// uv
	{Format: wgpu.VertexFormatFloat32x2, Offset: 16 + 12, ShaderLocation: 2},
}

// NewShader parses the embedded triangle shader.
//
// Returns:
//   - shader.Shader: the triangle shader
//   - error: an error if the source has no vertex entry point
func NewShader() (shader.Shader, error) {
	return shader.NewShader("triangle.wgsl", shaderSource)
}

// TrianglePipeline describes the triangle pipeline variants. It implements
// pipeline.Specializer for PipelineKey.
type TrianglePipeline struct {
	layouts *Layouts
	shader  shader.Handle
	format  wgpu.TextureFormat
}

var _ pipeline.Specializer[PipelineKey] = &TrianglePipeline{}

// NewTrianglePipeline creates the specializer for pipelines drawing into targets of the given format.
//
// Parameters:
//   - layouts: the view and mesh bind group layouts
//   - format: the color target format
//
// Returns:
//   - *TrianglePipeline: the specializer
func NewTrianglePipeline(layouts *Layouts, format wgpu.TextureFormat) *TrianglePipeline {
	return &TrianglePipeline{
		layouts: layouts,
		shader:  ShaderHandle,
		format:  format,
	}
}

// Specialize describes the variant selected by key: alpha blended, back-face culled triangle
// lists with counter-clockwise front faces, no depth testing and the key's sample count.
func (p *TrianglePipeline) Specialize(key PipelineKey) pipeline.Descriptor {
	return pipeline.NewDescriptor(PipelineLabel,
		pipeline.WithLayouts(p.layouts.View, p.layouts.Mesh),
		pipeline.WithVertex(p.shader, shader.DefaultVertexEntryPoint, wgpu.VertexBufferLayout{
			ArrayStride: vertexStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  vertexAttributes,
		}),
		pipeline.WithFragment(p.shader, shader.DefaultFragmentEntryPoint, wgpu.ColorTargetState{
			Format:    p.format,
			Blend:     pipeline.AlphaBlending(),
			WriteMask: wgpu.ColorWriteMaskAll,
		}),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithDepthStencil(nil),
		pipeline.WithSampleCount(key.SampleCount()),
	)
}
