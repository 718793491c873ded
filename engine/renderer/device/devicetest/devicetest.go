// Package devicetest provides recording fakes of the device interfaces so the
// render core can be exercised without a GPU.
package devicetest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is a fake GPU buffer backed by a byte slice.
type Buffer struct {
	label    string
	Usage    wgpu.BufferUsage
	Data     []byte
	Released bool
}

func (b *Buffer) Label() string { return b.label }
func (b *Buffer) Size() uint64  { return uint64(len(b.Data)) }
func (b *Buffer) Release()      { b.Released = true }

// BindGroupLayout is a fake layout that keeps its descriptor.
type BindGroupLayout struct {
	Descriptor wgpu.BindGroupLayoutDescriptor
	Released   bool
}

func (l *BindGroupLayout) Label() string { return l.Descriptor.Label }
func (l *BindGroupLayout) Release()      { l.Released = true }

// BindGroup is a fake bind group that keeps its descriptor.
type BindGroup struct {
	Descriptor device.BindGroupDescriptor
	Released   bool
}

func (g *BindGroup) Label() string { return g.Descriptor.Label }
func (g *BindGroup) Release()      { g.Released = true }

// ShaderModule is a fake compiled shader.
type ShaderModule struct {
	label    string
	Source   string
	Released bool
}

func (m *ShaderModule) Label() string { return m.label }
func (m *ShaderModule) Release()      { m.Released = true }

// RenderPipeline is a fake pipeline that keeps its resolved descriptor.
type RenderPipeline struct {
	Descriptor device.RenderPipelineDescriptor
	Released   bool
}

func (p *RenderPipeline) Label() string { return p.Descriptor.Label }
func (p *RenderPipeline) Release()      { p.Released = true }

// Device records every resource it creates. Failure hooks let tests inject errors.
type Device struct {
	mu sync.Mutex

	Buffers    []*Buffer
	Layouts    []*BindGroupLayout
	BindGroups []*BindGroup
	Modules    []*ShaderModule
	Pipelines  []*RenderPipeline

	// PipelineBuilds counts CreateRenderPipeline calls, including failed ones.
	PipelineBuilds atomic.Int64

	// OnCreateRenderPipeline, when set, runs before a pipeline is created. A non-nil
	// error fails the build.
	OnCreateRenderPipeline func(desc *device.RenderPipelineDescriptor) error

	// FailBindGroupLayout fails every CreateBindGroupLayout call when set.
	FailBindGroupLayout error

	// FailShaderModule fails every CreateShaderModule call when set.
	FailShaderModule error
}

var _ device.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{}
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if desc.Size == 0 {
		return nil, fmt.Errorf("devicetest: buffer %q has zero size", desc.Label)
	}
	b := &Buffer{label: desc.Label, Usage: desc.Usage, Data: make([]byte, desc.Size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) WriteBuffer(buf device.Buffer, offset uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := buf.(*Buffer)
	copy(b.Data[offset:], data)
}

func (d *Device) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (device.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBindGroupLayout != nil {
		return nil, d.FailBindGroupLayout
	}
	l := &BindGroupLayout{Descriptor: *desc}
	d.Layouts = append(d.Layouts, l)
	return l, nil
}

func (d *Device) CreateBindGroup(desc *device.BindGroupDescriptor) (device.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if desc.Layout == nil {
		return nil, fmt.Errorf("devicetest: bind group %q has no layout", desc.Label)
	}
	g := &BindGroup{Descriptor: *desc}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

func (d *Device) CreateShaderModule(label, source string) (device.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailShaderModule != nil {
		return nil, d.FailShaderModule
	}
	m := &ShaderModule{label: label, Source: source}
	d.Modules = append(d.Modules, m)
	return m, nil
}

func (d *Device) CreateRenderPipeline(desc *device.RenderPipelineDescriptor) (device.RenderPipeline, error) {
	d.PipelineBuilds.Add(1)
	if d.OnCreateRenderPipeline != nil {
		if err := d.OnCreateRenderPipeline(desc); err != nil {
			return nil, err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &RenderPipeline{Descriptor: *desc}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

// BindGroupCount returns the number of bind groups created so far.
func (d *Device) BindGroupCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.BindGroups)
}
