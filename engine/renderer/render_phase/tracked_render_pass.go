package render_phase

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

type boundGroup struct {
	group   device.BindGroup
	offsets []uint32
}

type boundIndexBuffer struct {
	buffer device.Buffer
	format wgpu.IndexFormat
}

// TrackedRenderPass wraps a render pass and drops state changes that would rebind what is
// already bound.
type TrackedRenderPass struct {
	pass          device.RenderPass
	pipeline      device.RenderPipeline
	bindGroups    map[uint32]boundGroup
	vertexBuffers map[uint32]device.Buffer
	indexBuffer   boundIndexBuffer
	drawCalls     int
}

// NewTrackedRenderPass wraps pass.
func NewTrackedRenderPass(pass device.RenderPass) *TrackedRenderPass {
	return &TrackedRenderPass{
		pass:          pass,
		bindGroups:    make(map[uint32]boundGroup),
		vertexBuffers: make(map[uint32]device.Buffer),
	}
}

func (t *TrackedRenderPass) SetPipeline(p device.RenderPipeline) {
	if t.pipeline == p {
		return
	}
	t.pass.SetPipeline(p)
	t.pipeline = p
}

func (t *TrackedRenderPass) SetBindGroup(index uint32, bg device.BindGroup, dynamicOffsets []uint32) {
	if cur, ok := t.bindGroups[index]; ok && cur.group == bg && slices.Equal(cur.offsets, dynamicOffsets) {
		return
	}
	t.pass.SetBindGroup(index, bg, dynamicOffsets)
	t.bindGroups[index] = boundGroup{group: bg, offsets: slices.Clone(dynamicOffsets)}
}

func (t *TrackedRenderPass) SetVertexBuffer(slot uint32, buf device.Buffer) {
	if t.vertexBuffers[slot] == buf {
		return
	}
	t.pass.SetVertexBuffer(slot, buf)
	t.vertexBuffers[slot] = buf
}

func (t *TrackedRenderPass) SetIndexBuffer(buf device.Buffer, format wgpu.IndexFormat) {
	if t.indexBuffer.buffer == buf && t.indexBuffer.format == format {
		return
	}
	t.pass.SetIndexBuffer(buf, format)
	t.indexBuffer = boundIndexBuffer{buffer: buf, format: format}
}

func (t *TrackedRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	t.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	t.drawCalls++
}

func (t *TrackedRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	t.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	t.drawCalls++
}

// DrawCalls returns the number of draw calls issued through this pass.
func (t *TrackedRenderPass) DrawCalls() int {
	return t.drawCalls
}

// RenderStats summarizes one Render call.
type RenderStats struct {
	Drawn   int
	Skipped int
}

// Add accumulates o into s.
func (s *RenderStats) Add(o RenderStats) {
	s.Drawn += o.Drawn
	s.Skipped += o.Skipped
}

// Render replays a phase in order. An item whose draw function is unknown or fails is
// logged and skipped; the remaining items are still drawn.
//
// Parameters:
//   - pass: the pass to record into
//   - view: the view the phase belongs to
//   - phase: the sorted phase
//   - fns: the draw function registry
//
// Returns:
//   - RenderStats: how many items were drawn and skipped
func Render(pass *TrackedRenderPass, view View, phase Phase, fns DrawFunctions) RenderStats {
	var stats RenderStats
	for _, item := range phase.Items() {
		fn, err := fns.Get(item.DrawFunction)
		if err == nil {
			err = fn.Draw(pass, view, item)
		}
		if err != nil {
			common.Logger().Warn("draw item skipped", "view", view.ID, "entity", item.Entity.String(), "error", err)
			stats.Skipped++
			continue
		}
		stats.Drawn++
	}
	return stats
}
