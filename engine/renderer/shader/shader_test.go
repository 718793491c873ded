package shader

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/device/devicetest"
)

const testSource = `
struct View { view_proj: mat4x4<f32> };
@group(1) @binding(0) var<uniform> mesh: Mesh;
@group(0) @binding(0) var<uniform> view: View;

/* @vertex fn commented_out() {} */
@vertex
fn vertex(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
    return view.view_proj * vec4<f32>(pos, 1.0);
}

@fragment
fn fragment() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func TestNewShaderParsesEntryPointsAndBindings(t *testing.T) {
	s, err := NewShader("test", testSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.VertexEntryPoint() != "vertex" {
		t.Errorf("vertex entry point = %q, want vertex", s.VertexEntryPoint())
	}
	if s.FragmentEntryPoint() != "fragment" {
		t.Errorf("fragment entry point = %q, want fragment", s.FragmentEntryPoint())
	}

	b := s.Bindings()
	if len(b) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(b))
	}
	if b[0].Group != 0 || b[0].Name != "view" || b[0].AddressSpace != "uniform" {
		t.Errorf("unexpected first binding %+v", b[0])
	}
	if b[1].Group != 1 || b[1].Name != "mesh" || b[1].Type != "Mesh" {
		t.Errorf("unexpected second binding %+v", b[1])
	}
}

func TestNewShaderRequiresVertexEntryPoint(t *testing.T) {
	_, err := NewShader("frag-only", "@fragment fn fragment() {}")
	if !errors.Is(err, ErrMissingEntryPoint) {
		t.Fatalf("expected ErrMissingEntryPoint, got %v", err)
	}
}

func TestStoreModuleCompilesOnce(t *testing.T) {
	dev := devicetest.NewDevice()
	st := NewStore()
	s, err := NewShader("test", testSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	st.Add(7, s)

	m1, err := st.Module(dev, 7)
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	m2, err := st.Module(dev, 7)
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	if m1 != m2 {
		t.Error("expected the memoized module on the second call")
	}
	if len(dev.Modules) != 1 {
		t.Errorf("expected 1 compiled module, got %d", len(dev.Modules))
	}

	st.Add(7, s)
	if !dev.Modules[0].Released {
		t.Error("replacing a shader should release its compiled module")
	}
}

func TestStoreModuleUnknownHandle(t *testing.T) {
	_, err := NewStore().Module(devicetest.NewDevice(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreModuleCompileError(t *testing.T) {
	dev := devicetest.NewDevice()
	dev.FailShaderModule = errors.New("bad wgsl")
	st := NewStore()
	s, _ := NewShader("test", testSource)
	st.Add(1, s)

	if _, err := st.Module(dev, 1); err == nil {
		t.Fatal("expected compile error")
	}
}
