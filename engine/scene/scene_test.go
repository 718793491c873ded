package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

func TestTriangleSide(t *testing.T) {
	tri := TriangleSide(500)
	height := float32(math.Sqrt(500*500 - 250*250))

	if !tri.A.ApproxEqual(mgl32.Vec2{0, height / 2}) {
		t.Errorf("A = %v", tri.A)
	}
	if !tri.B.ApproxEqual(mgl32.Vec2{-250, -height / 2}) || !tri.C.ApproxEqual(mgl32.Vec2{250, -height / 2}) {
		t.Errorf("B = %v, C = %v", tri.B, tri.C)
	}
	if tri.Color != [4]float32{0.5, 0.5, 0.5, 0.5} {
		t.Errorf("default color = %v", tri.Color)
	}

	red := tri.WithRGBA(1, 0, 0, 0.9)
	if red.Color != [4]float32{1, 0, 0, 0.9} || tri.Color[0] != 0.5 {
		t.Error("WithRGBA must return a modified copy")
	}
}

func TestTransformMatrixTranslationZ(t *testing.T) {
	tr := TransformFromTranslation(1, 2, 3)
	tr.Scale = mgl32.Vec3{2, 2, 2}
	m := tr.Matrix()
	if m[12] != 1 || m[13] != 2 || m[14] != 3 {
		t.Errorf("translation column = %v %v %v", m[12], m[13], m[14])
	}
	if m[0] != 2 {
		t.Errorf("scale not applied: %v", m[0])
	}
	if IdentityTransform().Matrix() != mgl32.Ident4() {
		t.Error("identity transform must produce the identity matrix")
	}
}

func TestSpawnDefaultsAndGet(t *testing.T) {
	s := NewScene("test", WithCapacity(4))
	id := s.Spawn(EntityName("tri"), EntityShape(TriangleSide(10)))

	e, ok := s.Get(id)
	if !ok {
		t.Fatal("spawned entity not found")
	}
	if !e.Visible || e.Name != "tri" || e.Shape == nil || e.Mesh != nil {
		t.Errorf("unexpected entity %+v", e)
	}
	if e.Transform.Matrix() != mgl32.Ident4() {
		t.Error("default transform must be identity")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestDespawnInvalidatesIDAcrossSlotReuse(t *testing.T) {
	s := NewScene("test")
	a := s.Spawn()
	if !s.Despawn(a) {
		t.Fatal("Despawn failed")
	}
	if s.Despawn(a) {
		t.Error("double despawn must fail")
	}

	b := s.Spawn()
	if b.Index() != a.Index() {
		t.Fatalf("expected slot reuse, got %v and %v", a, b)
	}
	if _, ok := s.Get(a); ok {
		t.Error("stale id resolved after slot reuse")
	}
	if s.SetVisible(a, false) {
		t.Error("stale id accepted by SetVisible")
	}
	if _, ok := s.Get(b); !ok {
		t.Error("new id does not resolve")
	}
	if _, ok := s.Get(EntityID{}); ok {
		t.Error("zero id must never resolve")
	}
}

func TestMeshHandleOwnership(t *testing.T) {
	assets := mesh.NewAssets()
	h := assets.Add(mesh.New(wgpu.PrimitiveTopologyTriangleList))
	s := NewScene("test")
	id := s.Spawn()

	if !s.SetMeshHandle(id, h) {
		t.Fatal("SetMeshHandle failed")
	}
	if h.RefCount() != 1 {
		t.Fatalf("RefCount = %d, want 1", h.RefCount())
	}
	s.Despawn(id)
	if h.RefCount() != 0 {
		t.Errorf("despawn must drop the mesh handle, RefCount = %d", h.RefCount())
	}
}

func TestEachVisitsInSlotOrder(t *testing.T) {
	s := NewScene("test")
	ids := []EntityID{s.Spawn(), s.Spawn(), s.Spawn()}
	s.Despawn(ids[1])
	s.SetTransform(ids[2], TransformFromTranslation(0, 0, 5))

	var seen []EntityID
	s.Each(func(e Entity) bool {
		seen = append(seen, e.ID)
		return true
	})
	if len(seen) != 2 || seen[0] != ids[0] || seen[1] != ids[2] {
		t.Errorf("Each visited %v", seen)
	}

	count := 0
	s.Each(func(Entity) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("Each must stop when fn returns false, visited %d", count)
	}
}
