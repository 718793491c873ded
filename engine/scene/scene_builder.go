package scene

import "github.com/Carmen-Shannon/oxy-triangle/engine/mesh"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCapacity preallocates slots for n entities.
//
// Parameters:
//   - n: the expected number of entities
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.slots = make([]slot, 0, n)
		}
	}
}

// EntityOption is a functional option for configuring an entity at spawn time.
type EntityOption func(e *Entity)

// EntityName sets the debug name of the entity.
func EntityName(name string) EntityOption {
	return func(e *Entity) {
		e.Name = name
	}
}

// EntityShape attaches a triangle shape descriptor. The scene keeps its own copy.
func EntityShape(t Triangle) EntityOption {
	return func(e *Entity) {
		e.Shape = &t
	}
}

// EntityTransform sets the initial transform.
func EntityTransform(t Transform) EntityOption {
	return func(e *Entity) {
		e.Transform = t
	}
}

// EntityVisible sets the initial visibility. Entities are visible by default.
func EntityVisible(visible bool) EntityOption {
	return func(e *Entity) {
		e.Visible = visible
	}
}

// EntityMesh attaches a mesh handle, which the scene takes ownership of.
func EntityMesh(h *mesh.Handle) EntityOption {
	return func(e *Entity) {
		e.Mesh = h
	}
}
