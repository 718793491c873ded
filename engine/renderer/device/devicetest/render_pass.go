package devicetest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// Op names a recorded render pass call.
type Op string

const (
	OpSetPipeline     Op = "SetPipeline"
	OpSetBindGroup    Op = "SetBindGroup"
	OpSetVertexBuffer Op = "SetVertexBuffer"
	OpSetIndexBuffer  Op = "SetIndexBuffer"
	OpDraw            Op = "Draw"
	OpDrawIndexed     Op = "DrawIndexed"
)

// Call is one recorded render pass call. Only the fields relevant to Op are set.
type Call struct {
	Op             Op
	Pipeline       device.RenderPipeline
	Index          uint32
	BindGroup      device.BindGroup
	DynamicOffsets []uint32
	Buffer         device.Buffer
	IndexFormat    wgpu.IndexFormat
	Count          uint32
	Instances      uint32
	FirstInstance  uint32
}

func (c Call) String() string {
	switch c.Op {
	case OpSetBindGroup:
		return fmt.Sprintf("%s(%d, %v)", c.Op, c.Index, c.DynamicOffsets)
	case OpDraw, OpDrawIndexed:
		return fmt.Sprintf("%s(%d x%d)", c.Op, c.Count, c.Instances)
	default:
		return string(c.Op)
	}
}

// RenderPass records every call made on it.
type RenderPass struct {
	Calls []Call
}

var _ device.RenderPass = &RenderPass{}

func (p *RenderPass) SetPipeline(rp device.RenderPipeline) {
	p.Calls = append(p.Calls, Call{Op: OpSetPipeline, Pipeline: rp})
}

func (p *RenderPass) SetBindGroup(index uint32, bg device.BindGroup, dynamicOffsets []uint32) {
	offsets := append([]uint32(nil), dynamicOffsets...)
	p.Calls = append(p.Calls, Call{Op: OpSetBindGroup, Index: index, BindGroup: bg, DynamicOffsets: offsets})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buf device.Buffer) {
	p.Calls = append(p.Calls, Call{Op: OpSetVertexBuffer, Index: slot, Buffer: buf})
}

func (p *RenderPass) SetIndexBuffer(buf device.Buffer, format wgpu.IndexFormat) {
	p.Calls = append(p.Calls, Call{Op: OpSetIndexBuffer, Buffer: buf, IndexFormat: format})
}

func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.Calls = append(p.Calls, Call{Op: OpDraw, Count: vertexCount, Instances: instanceCount, FirstInstance: firstInstance})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Calls = append(p.Calls, Call{Op: OpDrawIndexed, Count: indexCount, Instances: instanceCount, FirstInstance: firstInstance})
}

// Filter returns the recorded calls with the given op, in order.
func (p *RenderPass) Filter(op Op) []Call {
	var out []Call
	for _, c := range p.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// DrawCalls returns every Draw and DrawIndexed call, in order.
func (p *RenderPass) DrawCalls() []Call {
	var out []Call
	for _, c := range p.Calls {
		if c.Op == OpDraw || c.Op == OpDrawIndexed {
			out = append(out, c)
		}
	}
	return out
}
