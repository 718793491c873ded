package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/engine/mesh"
)

// Scene is the simulation-side world: a fixed record of fields per entity stored in an arena
// of generation-checked slots. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the name of the scene.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Spawn creates an entity. Unless overridden by options it has an identity transform,
	// is visible, and has no shape or mesh.
	//
	// Parameters:
	//   - opts: a variadic list of EntityOption functions
	//
	// Returns:
	//   - EntityID: the id of the new entity
	Spawn(opts ...EntityOption) EntityID

	// Despawn removes an entity and drops its mesh handle.
	//
	// Parameters:
	//   - id: the entity to remove
	//
	// Returns:
	//   - bool: false if id does not refer to a live entity
	Despawn(id EntityID) bool

	// Get returns a snapshot of an entity.
	//
	// Parameters:
	//   - id: the entity id
	//
	// Returns:
	//   - Entity: the entity snapshot
	//   - bool: false if id does not refer to a live entity
	Get(id EntityID) (Entity, bool)

	// SetVisible sets an entity's visibility flag.
	//
	// Parameters:
	//   - id: the entity id
	//   - visible: the new visibility
	//
	// Returns:
	//   - bool: false if id does not refer to a live entity
	SetVisible(id EntityID, visible bool) bool

	// SetTransform replaces an entity's transform.
	//
	// Parameters:
	//   - id: the entity id
	//   - t: the new transform
	//
	// Returns:
	//   - bool: false if id does not refer to a live entity
	SetTransform(id EntityID, t Transform) bool

	// SetMeshHandle attaches a mesh handle to an entity, taking ownership of it. The
	// previous handle, if any, is dropped.
	//
	// Parameters:
	//   - id: the entity id
	//   - h: the mesh handle, or nil to detach
	//
	// Returns:
	//   - bool: false if id does not refer to a live entity
	SetMeshHandle(id EntityID, h *mesh.Handle) bool

	// Each calls fn with a snapshot of every live entity in slot order until fn returns false.
	// The scene is read-locked for the duration, so fn must not modify the scene.
	//
	// Parameters:
	//   - fn: the visitor
	Each(fn func(e Entity) bool)

	// Len returns the number of live entities.
	//
	// Returns:
	//   - int: the entity count
	Len() int
}

// slot is one arena cell. generation is bumped on every despawn.
type slot struct {
	generation uint32
	alive      bool
	entity     Entity
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name  string
	slots []slot
	free  []uint32
	count int
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:   &sync.RWMutex{},
		name: name,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Spawn(opts ...EntityOption) EntityID {
	e := Entity{
		Transform: IdentityTransform(),
		Visible:   true,
	}
	for _, opt := range opts {
		opt(&e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, slot{generation: 1})
	}
	sl := &s.slots[index]
	e.ID = EntityID{index: index, generation: sl.generation}
	sl.entity = e
	sl.alive = true
	s.count++
	return e.ID
}

// lookup returns the live slot for id. The caller must hold the lock.
func (s *scene) lookup(id EntityID) (*slot, bool) {
	if id.IsZero() || int(id.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[id.index]
	if !sl.alive || sl.generation != id.generation {
		return nil, false
	}
	return sl, true
}

func (s *scene) Despawn(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.lookup(id)
	if !ok {
		return false
	}
	if sl.entity.Mesh != nil {
		sl.entity.Mesh.Drop()
	}
	sl.entity = Entity{}
	sl.alive = false
	sl.generation++
	s.free = append(s.free, id.index)
	s.count--
	return true
}

func (s *scene) Get(id EntityID) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.lookup(id)
	if !ok {
		return Entity{}, false
	}
	return sl.entity, true
}

func (s *scene) SetVisible(id EntityID, visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.lookup(id)
	if ok {
		sl.entity.Visible = visible
	}
	return ok
}

func (s *scene) SetTransform(id EntityID, t Transform) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.lookup(id)
	if ok {
		sl.entity.Transform = t
	}
	return ok
}

func (s *scene) SetMeshHandle(id EntityID, h *mesh.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.lookup(id)
	if !ok {
		return false
	}
	if old := sl.entity.Mesh; old != nil && old != h {
		old.Drop()
	}
	sl.entity.Mesh = h
	return true
}

func (s *scene) Each(fn func(e Entity) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.slots {
		if !s.slots[i].alive {
			continue
		}
		if !fn(s.slots[i].entity) {
			return
		}
	}
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
