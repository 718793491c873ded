package pipeline

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrBuildFailed marks a pipeline that could not be built. Cache failures are sticky and
	// every later request for the same key returns an error wrapping it.
	ErrBuildFailed = errors.New("pipeline: build failed")

	// ErrShaderNotFound is returned when a descriptor references a shader handle the store does not hold.
	ErrShaderNotFound = errors.New("pipeline: shader not found")
)

// ID uniquely identifies a built pipeline for the lifetime of the process.
type ID uint64

var nextID atomic.Uint64

// VertexDescriptor is the vertex stage of a Descriptor, referencing its shader by handle.
type VertexDescriptor struct {
	Shader     shader.Handle
	EntryPoint string
	Buffers    []wgpu.VertexBufferLayout
}

// FragmentDescriptor is the fragment stage of a Descriptor.
type FragmentDescriptor struct {
	Shader     shader.Handle
	EntryPoint string
	Targets    []wgpu.ColorTargetState
}

// Descriptor is the CPU-side description of a render pipeline. Shader stages reference
// handles in a shader.Store and are resolved to modules when the pipeline is built.
type Descriptor struct {
	Label        string
	Layouts      []device.BindGroupLayout
	Vertex       VertexDescriptor
	Fragment     *FragmentDescriptor
	Primitive    wgpu.PrimitiveState
	DepthStencil *wgpu.DepthStencilState
	Multisample  wgpu.MultisampleState
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	id             ID
	key            string
	descriptor     Descriptor
	renderPipeline device.RenderPipeline
}

// Pipeline is an immutable, GPU-validated render pipeline together with the descriptor
// it was built from.
type Pipeline interface {
	// ID returns the process-unique identifier of this pipeline.
	//
	// Returns:
	//   - ID: the pipeline id
	ID() ID

	// Key returns the printed specialization key this pipeline was built for.
	//
	// Returns:
	//   - string: the specialization key
	Key() string

	// Label returns the descriptor label.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Descriptor returns a copy of the descriptor this pipeline was built from.
	//
	// Returns:
	//   - Descriptor: the source descriptor
	Descriptor() Descriptor

	// RenderPipeline returns the GPU pipeline object.
	//
	// Returns:
	//   - device.RenderPipeline: the GPU pipeline
	RenderPipeline() device.RenderPipeline

	// SampleCount returns the multisample count the pipeline renders with.
	//
	// Returns:
	//   - uint32: the sample count
	SampleCount() uint32

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// FrontFace returns the winding order treated as front facing.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding
	FrontFace() wgpu.FrontFace

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology
	Topology() wgpu.PrimitiveTopology

	// BlendState returns the blend state of the first color target, or nil when there is
	// no fragment stage or blending is disabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// Release frees the GPU pipeline object.
	Release()
}

var _ Pipeline = &pipeline{}

// Build resolves the descriptor's shader handles through the store and creates the GPU pipeline.
//
// Parameters:
//   - dev: the device to build on
//   - shaders: the store holding the referenced shaders
//   - key: the printed specialization key, kept for diagnostics
//   - desc: the pipeline description
//
// Returns:
//   - Pipeline: the built pipeline
//   - error: an error wrapping ErrBuildFailed, and ErrShaderNotFound for an unknown handle
func Build(dev device.Device, shaders shader.Store, key string, desc Descriptor) (Pipeline, error) {
	vertexModule, err := resolveModule(dev, shaders, desc.Vertex.Shader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s vertex stage: %w", ErrBuildFailed, desc.Label, err)
	}
	resolved := &device.RenderPipelineDescriptor{
		Label:   desc.Label,
		Layouts: desc.Layouts,
		Vertex: device.VertexState{
			Module:     vertexModule,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    desc.Vertex.Buffers,
		},
		Primitive:    desc.Primitive,
		DepthStencil: desc.DepthStencil,
		Multisample:  desc.Multisample,
	}
	if desc.Fragment != nil {
		fragmentModule, err := resolveModule(dev, shaders, desc.Fragment.Shader)
		if err != nil {
			return nil, fmt.Errorf("%w: %s fragment stage: %w", ErrBuildFailed, desc.Label, err)
		}
		resolved.Fragment = &device.FragmentState{
			Module:     fragmentModule,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    desc.Fragment.Targets,
		}
	}

	rp, err := dev.CreateRenderPipeline(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBuildFailed, desc.Label, err)
	}
	return &pipeline{
		id:             ID(nextID.Add(1)),
		key:            key,
		descriptor:     desc,
		renderPipeline: rp,
	}, nil
}

func resolveModule(dev device.Device, shaders shader.Store, h shader.Handle) (device.ShaderModule, error) {
	m, err := shaders.Module(dev, h)
	if errors.Is(err, shader.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrShaderNotFound, err)
	}
	return m, err
}

func (p *pipeline) ID() ID {
	return p.id
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Label() string {
	return p.descriptor.Label
}

func (p *pipeline) Descriptor() Descriptor {
	return p.descriptor
}

func (p *pipeline) RenderPipeline() device.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SampleCount() uint32 {
	return p.descriptor.Multisample.Count
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.descriptor.Primitive.CullMode
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.descriptor.Primitive.FrontFace
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.descriptor.Primitive.Topology
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if p.descriptor.Fragment == nil || len(p.descriptor.Fragment.Targets) == 0 {
		return nil
	}
	return p.descriptor.Fragment.Targets[0].Blend
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
	}
}
