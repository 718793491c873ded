package mesh

import (
	"sync"
	"sync/atomic"
)

type assetEntry struct {
	mesh *Mesh
	refs *atomic.Int64
}

// assets is the implementation of the Assets interface.
type assets struct {
	mu      *sync.RWMutex
	entries map[ID]assetEntry
	nextID  ID
}

// Assets is the CPU-side mesh store. Meshes are added once and referenced through handles.
type Assets interface {
	// Add stores a mesh and returns the first strong handle to it.
	//
	// Parameters:
	//   - m: the mesh to store
	//
	// Returns:
	//   - *Handle: a strong handle to the stored mesh
	Add(m *Mesh) *Handle

	// Get looks up a mesh by id.
	//
	// Parameters:
	//   - id: the mesh id
	//
	// Returns:
	//   - *Mesh: the mesh, or nil
	//   - bool: whether the id is stored
	Get(id ID) (*Mesh, bool)

	// Remove deletes a mesh regardless of outstanding handles.
	//
	// Parameters:
	//   - id: the mesh id
	Remove(id ID)

	// Unreferenced returns the ids of stored meshes with no live strong handle.
	//
	// Returns:
	//   - []ID: the unreferenced mesh ids
	Unreferenced() []ID

	// Len returns the number of stored meshes.
	Len() int
}

var _ Assets = &assets{}

// NewAssets creates an empty mesh store.
func NewAssets() Assets {
	return &assets{
		mu:      &sync.RWMutex{},
		entries: make(map[ID]assetEntry),
		nextID:  1,
	}
}

func (a *assets) Add(m *Mesh) *Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	refs := &atomic.Int64{}
	a.entries[id] = assetEntry{mesh: m, refs: refs}
	return newHandle(id, refs)
}

func (a *assets) Get(id ID) (*Mesh, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.entries[id]
	return e.mesh, ok
}

func (a *assets) Remove(id ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, id)
}

func (a *assets) Unreferenced() []ID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []ID
	for id, e := range a.entries {
		if e.refs.Load() <= 0 {
			out = append(out, id)
		}
	}
	return out
}

func (a *assets) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
