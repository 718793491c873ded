package triangle

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestKeySampleCountRoundTrip(t *testing.T) {
	for s := uint32(MinSampleCount); s <= MaxSampleCount; s++ {
		k := KeyFromSampleCount(s)
		if got := k.SampleCount(); got != s {
			t.Fatalf("KeyFromSampleCount(%d).SampleCount() = %d", s, got)
		}
		if k.Flags() != KeyNone {
			t.Fatalf("sample count %d leaked into flag bits: %#x", s, uint32(k))
		}
	}
}

func TestKeyFlagsAndSampleCountCombine(t *testing.T) {
	k := KeyFromSampleCount(4) | KeyColored
	if k.SampleCount() != 4 {
		t.Errorf("sample count = %d, want 4", k.SampleCount())
	}
	if !k.Contains(KeyColored) || k.Flags() != KeyColored {
		t.Errorf("flags = %#x, want colored", uint32(k.Flags()))
	}
	if got := k.String(); got != "msaa=4|colored" {
		t.Errorf("String() = %q", got)
	}
	if KeyFromSampleCount(4) == KeyFromSampleCount(1) {
		t.Error("different sample counts produced the same key")
	}
}

func TestKeyClampsSampleCount(t *testing.T) {
	if got := KeyFromSampleCount(0).SampleCount(); got != MinSampleCount {
		t.Errorf("0 samples decoded as %d, want %d", got, MinSampleCount)
	}
	if got := KeyFromSampleCount(MaxSampleCount + 1).SampleCount(); got != MaxSampleCount {
		t.Errorf("%d samples decoded as %d, want %d", MaxSampleCount+1, got, MaxSampleCount)
	}
}

func TestSpecializeDescriptor(t *testing.T) {
	dev := devicetest.NewDevice()
	layouts, err := NewLayouts(dev)
	if err != nil {
		t.Fatalf("NewLayouts: %v", err)
	}
	d := NewTrianglePipeline(layouts, wgpu.TextureFormatBGRA8Unorm).Specialize(KeyFromSampleCount(4) | KeyColored)

	if d.Label != PipelineLabel {
		t.Errorf("label = %q", d.Label)
	}
	if len(d.Layouts) != 2 || d.Layouts[0] != layouts.View || d.Layouts[1] != layouts.Mesh {
		t.Errorf("layouts = %v, want view then mesh", d.Layouts)
	}
	if d.Primitive.Topology != wgpu.PrimitiveTopologyTriangleList ||
		d.Primitive.FrontFace != wgpu.FrontFaceCCW ||
		d.Primitive.CullMode != wgpu.CullModeBack {
		t.Errorf("unexpected primitive state %+v", d.Primitive)
	}
	if d.DepthStencil != nil {
		t.Error("expected no depth/stencil state")
	}
	if d.Multisample.Count != 4 {
		t.Errorf("sample count = %d, want 4", d.Multisample.Count)
	}
	if d.Vertex.Shader != ShaderHandle || d.Vertex.EntryPoint != shader.DefaultVertexEntryPoint {
		t.Errorf("unexpected vertex stage %+v", d.Vertex)
	}
	if len(d.Vertex.Buffers) != 1 || d.Vertex.Buffers[0].ArrayStride != vertexStride || len(d.Vertex.Buffers[0].Attributes) != 3 {
		t.Fatalf("unexpected vertex buffers %+v", d.Vertex.Buffers)
	}
	if d.Fragment == nil || len(d.Fragment.Targets) != 1 {
		t.Fatal("expected one color target")
	}
	target := d.Fragment.Targets[0]
	if target.Format != wgpu.TextureFormatBGRA8Unorm || target.Blend == nil || target.WriteMask != wgpu.ColorWriteMaskAll {
		t.Errorf("unexpected color target %+v", target)
	}

	if got := NewTrianglePipeline(layouts, wgpu.TextureFormatBGRA8Unorm).Specialize(KeyFromSampleCount(1)).Multisample.Count; got != 1 {
		t.Errorf("sample count = %d, want 1", got)
	}
}

func TestVertexLayoutMatchesGeneratedMesh(t *testing.T) {
	m := DefaultMeshGenerator.Generate(testShape())
	attrs, stride := m.Layout()
	if stride != vertexStride {
		t.Fatalf("mesh stride = %d, pipeline stride = %d", stride, vertexStride)
	}
	byLocation := map[uint32]uint64{}
	for _, a := range vertexAttributes {
		byLocation[a.ShaderLocation] = a.Offset
	}
	for _, a := range attrs {
		var loc uint32
		switch a.Name {
		case "Vertex_Position":
			loc = 0
		case "Vertex_Color":
			loc = 1
		case "Vertex_Uv":
			loc = 2
		}
		if byLocation[loc] != a.Offset {
			t.Errorf("%s at offset %d, pipeline expects %d", a.Name, a.Offset, byLocation[loc])
		}
	}
}

func TestLayouts(t *testing.T) {
	dev := devicetest.NewDevice()
	layouts, err := NewLayouts(dev)
	if err != nil {
		t.Fatalf("NewLayouts: %v", err)
	}
	if len(dev.Layouts) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(dev.Layouts))
	}
	for i, want := range []uint64{144, 64} {
		e := dev.Layouts[i].Descriptor.Entries
		if len(e) != 1 || e[0].Binding != 0 || !e[0].Buffer.HasDynamicOffset ||
			e[0].Buffer.Type != wgpu.BufferBindingTypeUniform || e[0].Buffer.MinBindingSize != want {
			t.Errorf("layout %d: unexpected entries %+v", i, e)
		}
	}
	layouts.Release()
	if !dev.Layouts[0].Released || !dev.Layouts[1].Released {
		t.Error("Release did not free both layouts")
	}
}

func TestLayoutsFailure(t *testing.T) {
	dev := devicetest.NewDevice()
	dev.FailBindGroupLayout = errTest
	if _, err := NewLayouts(dev); err == nil {
		t.Fatal("expected an error")
	}
}
