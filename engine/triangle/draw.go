package triangle

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/render_phase"
)

// DrawFunctionName is the name the triangle draw function is registered under.
const DrawFunctionName = "DrawTriangle"

var (
	// ErrViewBindGroupMissing is returned when a view's uniforms were never bound.
	ErrViewBindGroupMissing = errors.New("triangle: view bind group missing")
	// ErrInstanceMissing is returned for an item whose entity has no instance uniform this frame.
	ErrInstanceMissing = errors.New("triangle: instance uniform missing")
)

// drawTriangle is the draw function of triangle items: bind the pipeline, the view uniforms
// at group 0, the instance uniforms at group 1, then draw the mesh.
func (p *Plugin) drawTriangle() render_phase.DrawFunction {
	return render_phase.Commands(
		render_phase.SetItemPipeline,
		p.setViewBindGroup(0),
		p.setMeshBindGroup(1),
		render_phase.RenderCommandFunc(p.drawTriangleMesh),
	)
}

func (p *Plugin) setViewBindGroup(index uint32) render_phase.RenderCommand {
	return render_phase.RenderCommandFunc(func(pass *render_phase.TrackedRenderPass, view render_phase.View, _ render_phase.DrawItem) error {
		bg := p.viewGroups.BindGroup(view.ID)
		if bg == nil {
			return fmt.Errorf("%w: view %d", ErrViewBindGroupMissing, view.ID)
		}
		pass.SetBindGroup(index, bg, []uint32{view.UniformOffset})
		return nil
	})
}

func (p *Plugin) setMeshBindGroup(index uint32) render_phase.RenderCommand {
	return render_phase.RenderCommandFunc(func(pass *render_phase.TrackedRenderPass, _ render_phase.View, item render_phase.DrawItem) error {
		inst, ok := p.instances[item.Entity]
		bg := p.instanceGroup.BindGroup()
		if !ok || bg == nil {
			return fmt.Errorf("%w: entity %s", ErrInstanceMissing, item.Entity)
		}
		pass.SetBindGroup(index, bg, []uint32{inst.offset})
		return nil
	})
}

func (p *Plugin) drawTriangleMesh(pass *render_phase.TrackedRenderPass, _ render_phase.View, item render_phase.DrawItem) error {
	inst, ok := p.instances[item.Entity]
	if !ok {
		return fmt.Errorf("%w: entity %s", ErrInstanceMissing, item.Entity)
	}
	gm, err := p.meshes.Get(inst.mesh)
	if err != nil {
		return fmt.Errorf("mesh %d: %w", inst.mesh, err)
	}

	pass.SetVertexBuffer(0, gm.VertexBuffer)
	if gm.Indexed() {
		pass.SetIndexBuffer(gm.IndexBuffer, gm.IndexFormat)
		pass.DrawIndexed(gm.IndexCount, 1, 0, 0, 0)
	} else {
		pass.Draw(gm.VertexCount, 1, 0, 0)
	}
	return nil
}
