package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

func newProvider(t *testing.T, dev *devicetest.Device) BindGroupProvider {
	t.Helper()
	layout, err := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{Label: "layout"})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout: %v", err)
	}
	return NewBindGroupProvider("test bind group", layout)
}

func TestBuildSkipsWithoutStorage(t *testing.T) {
	dev := devicetest.NewDevice()
	p := newProvider(t, dev)

	built, err := p.Build(dev, uniform.Binding{}, false)
	if err != nil || built {
		t.Fatalf("expected a silent skip, got built=%v err=%v", built, err)
	}
	if p.BindGroup() != nil || dev.BindGroupCount() != 0 {
		t.Error("no bind group should exist after a skipped build")
	}
}

func TestBuildRebuildsOnlyOnRelocation(t *testing.T) {
	dev := devicetest.NewDevice()
	p := newProvider(t, dev)
	ub := uniform.NewDynamicUniformBuffer("instances", 64)

	ub.Push(make([]byte, 64))
	if err := ub.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	binding, ok := ub.Binding()
	built, err := p.Build(dev, binding, ok)
	if err != nil || !built {
		t.Fatalf("first build: built=%v err=%v", built, err)
	}
	first := p.BindGroup()

	// contents change, allocation does not
	ub.Clear()
	ub.Push(make([]byte, 64))
	if err := ub.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	binding, ok = ub.Binding()
	if built, _ := p.Build(dev, binding, ok); built {
		t.Error("rebuilt without a relocation")
	}
	if p.BindGroup() != first {
		t.Error("bind group changed without a relocation")
	}

	for range 4 {
		ub.Push(make([]byte, 64))
	}
	if err := ub.Write(dev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	binding, ok = ub.Binding()
	built, err = p.Build(dev, binding, ok)
	if err != nil || !built {
		t.Fatalf("expected a rebuild after relocation: built=%v err=%v", built, err)
	}
	if p.Generation() != binding.Generation || p.Builds() != 2 {
		t.Errorf("generation=%d builds=%d", p.Generation(), p.Builds())
	}
	if !first.(*devicetest.BindGroup).Released {
		t.Error("the superseded bind group must be released")
	}

	entry := p.BindGroup().(*devicetest.BindGroup).Descriptor.Entries[0]
	if entry.Buffer != binding.Buffer || entry.Size != 64 || entry.Binding != 0 {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestWithBindingSlot(t *testing.T) {
	dev := devicetest.NewDevice()
	layout, _ := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{})
	p := NewBindGroupProvider("slot", layout, WithBindingSlot(3))
	buf, _ := dev.CreateBuffer(&wgpu.BufferDescriptor{Size: 256})

	if _, err := p.Build(dev, uniform.Binding{Buffer: buf, Size: 64, Generation: 1}, true); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := p.BindGroup().(*devicetest.BindGroup).Descriptor.Entries[0].Binding; got != 3 {
		t.Errorf("binding slot = %d, want 3", got)
	}

	p.Release()
	if p.BindGroup() != nil {
		t.Error("Release must drop the bind group")
	}
}
