package mesh

import "sync/atomic"

// ID identifies a mesh in Assets and RenderAssets.
type ID uint64

// Handle is a reference to a mesh. Strong handles keep the mesh alive; weak handles share
// the id without owning it. Copies are made with Clone and CloneWeak, never by value.
type Handle struct {
	id     ID
	refs   *atomic.Int64
	strong atomic.Bool
}

func newHandle(id ID, refs *atomic.Int64) *Handle {
	refs.Add(1)
	h := &Handle{id: id, refs: refs}
	h.strong.Store(true)
	return h
}

func (h *Handle) ID() ID {
	return h.id
}

// Strong reports whether this handle holds a reference.
func (h *Handle) Strong() bool {
	return h.strong.Load()
}

// RefCount returns the number of live strong handles to the mesh.
func (h *Handle) RefCount() int64 {
	return h.refs.Load()
}

// Clone returns a new strong handle to the same mesh.
func (h *Handle) Clone() *Handle {
	return newHandle(h.id, h.refs)
}

// CloneWeak returns a handle to the same mesh that does not keep it alive.
func (h *Handle) CloneWeak() *Handle {
	return &Handle{id: h.id, refs: h.refs}
}

// Drop releases the reference held by a strong handle. Dropping twice, or dropping a weak
// handle, does nothing. Safe for concurrent use; only the first Drop releases.
func (h *Handle) Drop() {
	if h.strong.CompareAndSwap(true, false) {
		h.refs.Add(-1)
	}
}
