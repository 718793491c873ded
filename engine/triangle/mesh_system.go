package triangle

import (
	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// MeshGenerator turns a triangle shape into geometry laid out for the triangle pipeline.
type MeshGenerator interface {
	// Generate builds the mesh for a shape.
	//
	// Parameters:
	//   - t: the shape descriptor
	//
	// Returns:
	//   - *mesh.Mesh: a triangle-list mesh with position, color and uv attributes
	Generate(t scene.Triangle) *mesh.Mesh
}

// MeshGeneratorFunc adapts a plain function to the MeshGenerator interface.
type MeshGeneratorFunc func(t scene.Triangle) *mesh.Mesh

func (f MeshGeneratorFunc) Generate(t scene.Triangle) *mesh.Mesh {
	return f(t)
}

// DefaultMeshGenerator emits the three points at z=0, the shape color on every vertex and
// a constant uv of (0, 1). The mesh is not indexed.
var DefaultMeshGenerator MeshGenerator = MeshGeneratorFunc(func(t scene.Triangle) *mesh.Mesh {
	m := mesh.New(wgpu.PrimitiveTopologyTriangleList)
	positions := make([]float32, 0, 9)
	colors := make([]float32, 0, 12)
	uvs := make([]float32, 0, 6)
	for _, p := range t.Points() {
		positions = append(positions, p.X(), p.Y(), 0)
		colors = append(colors, t.Color[:]...)
		uvs = append(uvs, 0, 1)
	}
	m.SetAttribute(mesh.AttributePosition, 3, positions)
	m.SetAttribute(mesh.AttributeColor, 4, colors)
	m.SetAttribute(mesh.AttributeUV, 2, uvs)
	return m
})

// MeshSystem attaches geometry to every entity that has a triangle shape but no mesh handle.
// Geometry is generated once per entity and never regenerated.
type MeshSystem struct {
	generator MeshGenerator
	assets    mesh.Assets
}

// NewMeshSystem creates a mesh system storing generated meshes in assets. A nil generator
// selects DefaultMeshGenerator.
//
// Parameters:
//   - assets: the mesh store
//   - generator: the geometry generator, or nil
//
// Returns:
//   - *MeshSystem: the new system
func NewMeshSystem(assets mesh.Assets, generator MeshGenerator) *MeshSystem {
	if generator == nil {
		generator = DefaultMeshGenerator
	}
	return &MeshSystem{generator: generator, assets: assets}
}

// Run generates meshes for the entities of world that lack one.
//
// Parameters:
//   - world: the scene to update
//
// Returns:
//   - int: the number of meshes generated
func (s *MeshSystem) Run(world scene.Scene) int {
	type pending struct {
		id    scene.EntityID
		shape scene.Triangle
	}
	var todo []pending
	world.Each(func(e scene.Entity) bool {
		if e.Shape != nil && e.Mesh == nil {
			todo = append(todo, pending{id: e.ID, shape: *e.Shape})
		}
		return true
	})

	generated := 0
	for _, p := range todo {
		h := s.assets.Add(s.generator.Generate(p.shape))
		if !world.SetMeshHandle(p.id, h) {
			// despawned since the scan
			h.Drop()
			s.assets.Remove(h.ID())
			continue
		}
		generated++
		common.Logger().Debug("triangle mesh generated", "entity", p.id.String(), "mesh", h.ID())
	}
	return generated
}
