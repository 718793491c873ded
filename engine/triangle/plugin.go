// Package triangle renders scene entities carrying a triangle shape. The Plugin wires the
// triangle pipeline into a renderer.Renderer; MeshSystem generates the geometry on the app
// side.
package triangle

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/render_phase"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
)

// PluginName is the name the plugin reports to the renderer.
const PluginName = "triangle"

const instanceUniformsLabel = "triangle instance uniforms"

// instance is where an entity's data landed in this frame's GPU buffers.
type instance struct {
	offset uint32
	mesh   mesh.ID
}

// Plugin draws every visible entity with a triangle mesh. All of its state is touched only
// from the renderer's frame phases, which run one at a time.
type Plugin struct {
	assets mesh.Assets
	meshes mesh.RenderAssets

	flags    PipelineKey
	maxViews int

	layouts          *Layouts
	pipelines        pipeline.Cache[PipelineKey]
	drawFunction     render_phase.DrawFunctionID
	instanceUniforms uniform.DynamicUniformBuffer
	instanceGroup    bind_group_provider.BindGroupProvider
	viewGroups       *ViewBindGroups

	records   []InstanceRecord
	instances map[scene.EntityID]instance
}

var _ renderer.Plugin = &Plugin{}

// NewPlugin creates the triangle plugin reading geometry from assets.
//
// Parameters:
//   - assets: the mesh store MeshSystem writes to
//   - options: variadic list of PluginBuilderOption functions
//
// Returns:
//   - *Plugin: the plugin, ready for Renderer.AddPlugin
func NewPlugin(assets mesh.Assets, options ...PluginBuilderOption) *Plugin {
	p := &Plugin{
		assets:    assets,
		meshes:    mesh.NewRenderAssets(),
		flags:     KeyColored,
		maxViews:  DefaultMaxViews,
		instances: make(map[scene.EntityID]instance),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string {
	return PluginName
}

// Build registers the triangle shader, creates the bind group layouts and registers the
// DrawTriangle draw function.
func (p *Plugin) Build(r renderer.Renderer) error {
	sh, err := NewShader()
	if err != nil {
		return fmt.Errorf("triangle: %w", err)
	}
	r.Shaders().Add(ShaderHandle, sh)

	layouts, err := NewLayouts(r.Device())
	if err != nil {
		return err
	}
	viewGroups, err := NewViewBindGroups(layouts.View, p.maxViews)
	if err != nil {
		layouts.Release()
		return err
	}

	p.layouts = layouts
	p.viewGroups = viewGroups
	p.pipelines = pipeline.NewCache[PipelineKey](r.Device(), r.Shaders(), NewTrianglePipeline(layouts, r.SurfaceFormat()))
	p.instanceUniforms = uniform.NewDynamicUniformBuffer(instanceUniformsLabel, uint64(GPUTriangleUniform{}.Size()))
	p.instanceGroup = newInstanceBindGroup(layouts.Mesh)
	p.drawFunction = r.DrawFunctions().Add(DrawFunctionName, p.drawTriangle())
	return nil
}

// Extract replaces the previous frame's instance records.
func (p *Plugin) Extract(f *renderer.Frame) error {
	p.records = Extract(f.World, f.Parallel)
	return nil
}

// Prepare uploads the meshes and instance uniforms of this frame's records and makes sure
// the view and instance bind groups reference the current buffers. A mesh that fails to
// upload only affects the items drawing it.
func (p *Plugin) Prepare(f *renderer.Frame) error {
	dev := f.Device()

	for _, id := range p.assets.Unreferenced() {
		p.meshes.Remove(id)
		p.assets.Remove(id)
	}

	ids := make([]mesh.ID, 0, len(p.records))
	seen := make(map[mesh.ID]struct{}, len(p.records))
	for _, r := range p.records {
		if _, ok := seen[r.Mesh.ID()]; ok {
			continue
		}
		seen[r.Mesh.ID()] = struct{}{}
		ids = append(ids, r.Mesh.ID())
	}
	if err := p.meshes.Prepare(dev, p.assets, ids); err != nil {
		common.Logger().Warn("triangle mesh upload failed", "frame", f.Number, "error", err)
	}

	p.instanceUniforms.Clear()
	clear(p.instances)
	for _, r := range p.records {
		p.instances[r.Entity] = instance{
			offset: p.instanceUniforms.Push(r.Uniform.Marshal()),
			mesh:   r.Mesh.ID(),
		}
	}
	if err := p.instanceUniforms.Write(dev); err != nil {
		return err
	}
	binding, ok := p.instanceUniforms.Binding()
	if _, err := p.instanceGroup.Build(dev, binding, ok); err != nil {
		return err
	}

	viewBinding, ok := f.ViewBinding()
	for _, v := range f.Views {
		if _, err := p.viewGroups.Build(dev, v.ID, viewBinding, ok); err != nil {
			return err
		}
	}
	return nil
}

// Queue specializes the pipeline for the frame's sample count and queues one item per
// visible record into every view. A pipeline that failed to build fails every frame.
func (p *Plugin) Queue(f *renderer.Frame) error {
	key := KeyFromSampleCount(f.SampleCount()) | p.flags
	pl, err := p.pipelines.Specialize(key)
	if err != nil {
		return fmt.Errorf("triangle: pipeline %s: %w", key, err)
	}

	queued := make([]int, len(f.Views))
	f.Parallel(len(f.Views), func(i int) {
		queued[i] = QueueView(f.Views[i], p.records, pl, p.drawFunction)
	})
	total := 0
	for _, n := range queued {
		total += n
	}
	common.Logger().Debug("triangles queued", "frame", f.Number, "views", len(f.Views), "items", total)
	return nil
}

// Records returns the instance records of the last extracted frame.
func (p *Plugin) Records() []InstanceRecord {
	return p.records
}

// RenderAssets returns the GPU-side mesh store.
func (p *Plugin) RenderAssets() mesh.RenderAssets {
	return p.meshes
}

// Release frees every GPU resource the plugin created.
func (p *Plugin) Release() {
	if p.layouts == nil {
		return
	}
	p.pipelines.Release()
	p.viewGroups.Release()
	p.instanceGroup.Release()
	p.instanceUniforms.Release()
	p.meshes.Release()
	p.layouts.Release()
	p.layouts = nil
}
