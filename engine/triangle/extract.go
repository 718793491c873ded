package triangle

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
)

// extractChunk is the number of entities one extraction task transforms.
const extractChunk = 256

// InstanceRecord is the render-side copy of one visible triangle for one frame.
// Mesh is a weak handle: the record never keeps geometry alive.
type InstanceRecord struct {
	Entity  scene.EntityID
	Mesh    *mesh.Handle
	Uniform GPUTriangleUniform
}

// ParallelFunc runs fn for every index in [0, n) and returns when all calls are done.
type ParallelFunc func(n int, fn func(i int))

// Extract builds the instance records of the current frame: one record for every visible
// entity that has a mesh handle, in entity slot order. Hidden entities and entities without
// geometry produce nothing. The result depends only on the current state of world.
//
// Parameters:
//   - world: the scene to read
//   - parallel: fans out the transform computation, or nil to run on the caller
//
// Returns:
//   - []InstanceRecord: the records of this frame
func Extract(world scene.Scene, parallel ParallelFunc) []InstanceRecord {
	type source struct {
		id        scene.EntityID
		mesh      *mesh.Handle
		transform scene.Transform
	}
	var sources []source
	world.Each(func(e scene.Entity) bool {
		if e.Visible && e.Mesh != nil {
			sources = append(sources, source{id: e.ID, mesh: e.Mesh.CloneWeak(), transform: e.Transform})
		}
		return true
	})

	records := make([]InstanceRecord, len(sources))
	chunks := (len(sources) + extractChunk - 1) / extractChunk
	transform := func(c int) {
		end := min((c+1)*extractChunk, len(sources))
		for i := c * extractChunk; i < end; i++ {
			s := sources[i]
			records[i] = InstanceRecord{
				Entity:  s.id,
				Mesh:    s.mesh,
				Uniform: GPUTriangleUniform{Transform: s.transform.Matrix()},
			}
		}
	}
	if parallel == nil {
		for c := range chunks {
			transform(c)
		}
	} else {
		parallel(chunks, transform)
	}
	return records
}
